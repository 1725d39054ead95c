package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voicecast/voicecast/internal/config"
	"github.com/voicecast/voicecast/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			conn, err := db.Connect(cfg.SQLite)
			if err != nil {
				return err
			}
			if err := db.AutoMigrate(conn); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrated %s\n", cfg.SQLite)
			return nil
		},
	}
}
