package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"routinetracker/internal/config"
	"routinetracker/internal/repository/sqlite"
	"routinetracker/pkg/db"
	"routinetracker/pkg/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the datastore schema",
	Long: `Create the routines and user_profiles tables.

postgres applies the embedded schema; sqlite applies its pending migrations.
The memory and rest drivers have nothing to migrate.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.NewLogger(cfg.Log.Development)
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch cfg.Datastore.Driver {
	case config.DriverPostgres:
		pool, err := db.NewConnection(ctx, cfg.DB, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := db.Migrate(ctx, pool, log); err != nil {
			return err
		}

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.Datastore.SQLitePath, log)
		if err != nil {
			return err
		}
		if err := store.Close(); err != nil {
			return err
		}

	default:
		fmt.Fprintf(cmd.OutOrStdout(), "driver %s has no schema to migrate\n", cfg.Datastore.Driver)
		return nil
	}

	log.Info("Migration complete", zap.String("driver", cfg.Datastore.Driver))
	return nil
}
