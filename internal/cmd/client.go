package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/mealwise/mealwise/internal/config"
	"github.com/mealwise/mealwise/internal/event"
	"github.com/mealwise/mealwise/internal/service"
	"github.com/mealwise/mealwise/internal/store"
	"github.com/mealwise/mealwise/internal/taskqueue"
)

// client bundles what a one-shot CLI command needs to talk to the pipeline
// state. Client commands share the SQLite database with the serve daemon;
// the queue here is process-local and the daemon's recovery scan picks up
// records submitted while it holds the real queue.
type client struct {
	cfg   *config.Config
	store *store.SQLiteStore
	svc   *service.Service
}

// newClient loads the configuration and opens the store.
func newClient() (*client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := cfg.Paths.ResolveDataDir()
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.Paths.StorePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	queue := taskqueue.NewEventQueue(taskqueue.New(), event.NewBus())
	return &client{
		cfg:   cfg,
		store: st,
		svc:   service.New(st, queue, nil),
	}, nil
}

// Close releases the store.
func (c *client) Close() error {
	return c.store.Close()
}

// resolveOwner returns the owner identity from the --owner flag or the
// MEALWISE_OWNER environment variable.
func resolveOwner(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if owner := viper.GetString("owner"); owner != "" {
		return owner, nil
	}
	return "", fmt.Errorf("owner is required: pass --owner or set MEALWISE_OWNER")
}
