package main

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply or inspect database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE:      runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := openDB(cmd, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	switch direction {
	case "down":
		return goose.DownContext(cmd.Context(), db, cfg.MigrationsDir)
	case "status":
		return goose.StatusContext(cmd.Context(), db, cfg.MigrationsDir)
	default:
		return goose.UpContext(cmd.Context(), db, cfg.MigrationsDir)
	}
}
