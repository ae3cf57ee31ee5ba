// Package featureflags holds the runtime switches served by Rollout.
// Flags keep their defaults until Init has fetched a configuration, and after a failed Init.
package featureflags

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rollout/rox-go/v5/server"
)

const namespace = "catalog"

// Flags is the Rollout container registered under the catalog namespace
type Flags struct {
	// Offline rejects every request except health checks
	Offline server.RoxFlag
	// LogLevel is applied to the process logger while running
	LogLevel server.RoxString
	// SearchPushdown sends browse search text to the database instead of matching in memory
	SearchPushdown server.RoxFlag
}

var (
	mu  sync.Mutex
	rox *server.Rox

	values = &Flags{
		Offline:        server.NewRoxFlag(false),
		LogLevel:       server.NewRoxString("info", []string{"debug", "info", "warn", "error"}),
		SearchPushdown: server.NewRoxFlag(true),
	}
)

// Init registers the flags and waits for the first configuration fetch or ctx to expire.
// An empty apiKey falls back to ROLLOUT_KEY.
func Init(ctx context.Context, apiKey string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ROLLOUT_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("featureflags: no rollout key, using defaults")
	}

	mu.Lock()
	defer mu.Unlock()
	if rox != nil {
		return nil
	}

	r := server.NewRox()
	r.Register(namespace, values)
	options := server.NewRoxOptions(server.RoxOptionsBuilder{})

	select {
	case <-r.Setup(apiKey, options):
	case <-ctx.Done():
		return fmt.Errorf("featureflags setup: %w", ctx.Err())
	}
	rox = r
	return nil
}

// Values returns the live flag container
func Values() *Flags {
	return values
}

// Shutdown stops the Rollout client if Init succeeded
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	if rox != nil {
		rox.Shutdown()
		rox = nil
	}
}
