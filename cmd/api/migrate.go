package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"agendaapi/internal/database"
	"agendaapi/internal/database/migration"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "applies the database schema and exits",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		db, err := database.NewPostgres(ctx, globalCfg.Database)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}

		err = migration.EnsureMigrated(ctx, db, logger, globalCfg.Database.Host)
		return multierr.Append(err, db.Close())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
