// Package cli implements the clam-browse command line: a terminal front end for a browsing
// session against a remote catalog API.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clam-browse/internal/logger"
	"clam-browse/internal/prefs"
	"clam-browse/internal/source"
	"clam-browse/internal/widget"
)

type rootOptions struct {
	apiURL    string
	prefsPath string
	pageSize  int
	verbose   bool
}

func defaultPrefsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".clam-browse.yaml"
	}
	return filepath.Join(dir, "clam-browse", "prefs.yaml")
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "clam-browse",
		Short:         "Browse a product catalog from the terminal",
		Long:          `Search, filter, sort and page through the products served by a catalog API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logger.Configure(cmd.ErrOrStderr(), "text", "warn")
			if opts.verbose {
				logger.SetLevel("debug")
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api", envOr("CLAM_API_URL", "http://localhost:8080"), "catalog API base URL")
	flags.StringVar(&opts.prefsPath, "prefs", defaultPrefsPath(), "file that keeps saved filters and sort mode")
	flags.IntVar(&opts.pageSize, "page-size", widget.DefaultPageSize, "products per page")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	cmd.AddCommand(newListCmd(opts), newFacetsCmd(opts), newClearCmd(opts))
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *rootOptions) fetcher() source.Fetcher {
	return source.NewClient(o.apiURL, nil)
}

func (o *rootOptions) store() prefs.Store {
	return prefs.NewFileStore(o.prefsPath)
}

// Execute runs the CLI against os.Args and returns the process exit code
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if source.IsNetwork(err) || source.IsServer(err) {
			return 2
		}
		return 1
	}
	return 0
}
