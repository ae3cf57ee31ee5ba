package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"clam-browse/internal/prefs"
	"clam-browse/internal/widget"
)

func newFacetsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "facets",
		Short: "List the categories and brands of the whole catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := widget.New(root.fetcher(), widget.Options{})
			if err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			v := s.View()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "categories: %s\n", strings.Join(v.Facets.Categories, ", "))
			fmt.Fprintf(out, "brands:     %s\n", strings.Join(v.Facets.Brands, ", "))
			return nil
		},
	}
}

func newClearCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved filters and sort mode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := root.store()
			s := widget.New(root.fetcher(), widget.Options{Store: store})
			if err := s.ClearFilters(cmd.Context()); err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), prefs.KeySort); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Saved filters cleared.")
			return nil
		},
	}
}
