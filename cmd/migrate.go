package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmehdipour/user-send/internal/bus"
	"github.com/jmehdipour/user-send/internal/config"
	"github.com/jmehdipour/user-send/internal/db"
	"github.com/spf13/cobra"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the outbox table used by mysql:// bus connections",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(baseDir, cfgName)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		kind, dsn, err := bus.ParseConnection(cfg.EventBusConnection)
		if err != nil {
			return fmt.Errorf("parse EventBusConnection: %w", err)
		}
		if kind != bus.KindOutbox {
			return fmt.Errorf("migrate needs a mysql:// EventBusConnection, got %s", kind)
		}

		sqlPath := filepath.Join(migrationsDir, "001_outbox.sql")
		sqlBytes, err := os.ReadFile(sqlPath)
		if err != nil {
			return fmt.Errorf("read migration file %s: %w", sqlPath, err)
		}

		sqlDB, err := db.NewMySQLConnection(cmd.Context(), dsn, busOptions(cfg.Bus, nil).MySQLOpts())
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer sqlDB.Close()

		if _, err := sqlDB.ExecContext(cmd.Context(), string(sqlBytes)); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ">> Migration complete ✅")
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "migrations", "migrations", "directory holding the SQL migrations")
}
