package main

import (
	"context"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables and install the profile database functions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := config.ConnectPostgres()
			if err != nil {
				return fmt.Errorf("connect relational database: %w", err)
			}
			repo := repository.New(db)

			if err := repo.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate tables: %w", err)
			}
			if err := repo.InstallProfileFunctions(ctx); err != nil {
				return fmt.Errorf("install profile functions: %w", err)
			}
			log.Info("migration complete")
			return nil
		},
	}
}
