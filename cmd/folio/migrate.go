package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Long:      "Apply all pending migrations (up) or roll back the most recent one (down).",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE:      migrateCommand,
	}
}

// openStore connects to the configured database without starting the app.
func openStore() (*folio.Store, folio.SiteConfig, error) {
	cfg, err := folio.LoadConfig()
	if err != nil {
		return nil, cfg, err
	}
	log := logger.New(logger.Options{Debug: cfg.Debug, Environment: cfg.Environment})
	store, err := folio.NewStore(cfg.DatabaseDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, cfg, err
	}
	return store, cfg, nil
}

func migrateCommand(cmd *cobra.Command, args []string) error {
	store, _, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	switch args[0] {
	case "up":
		err = store.Migrate(ctx)
	case "down":
		err = store.MigrateDown(ctx)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
	return nil
}
