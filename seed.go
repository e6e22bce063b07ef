package main

import (
	"context"
	"fmt"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/ariebrainware/ml-pipeline-api/docstore"
	"github.com/ariebrainware/ml-pipeline-api/repository"
	"github.com/ariebrainware/ml-pipeline-api/seed"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample patients with all related records",
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, _ := cmd.Flags().GetInt("patients")
			seedValue, _ := cmd.Flags().GetUint64("seed")
			target, _ := cmd.Flags().GetString("target")
			logs, _ := cmd.Flags().GetInt("validation-logs")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if patients < 1 {
				return fmt.Errorf("--patients must be at least 1")
			}
			if target != "all" && target != "postgres" && target != "mongodb" {
				return fmt.Errorf("unknown --target %q", target)
			}

			gen := seed.NewGenerator(seedValue)
			records := gen.Records(patients)

			if target == "all" || target == "postgres" {
				db, err := config.ConnectPostgres()
				if err != nil {
					return fmt.Errorf("connect relational database: %w", err)
				}
				repo := repository.New(db)
				if err := repo.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate tables: %w", err)
				}
				ids, err := seed.Relational(ctx, repo, records)
				if err != nil {
					return fmt.Errorf("seed relational database: %w", err)
				}
				if err := gen.ValidationLogs(ctx, repo, ids, logs, 60); err != nil {
					return fmt.Errorf("seed validation logs: %w", err)
				}
			}

			if target == "all" || target == "mongodb" {
				store, err := docstore.Connect(ctx)
				if err != nil {
					return fmt.Errorf("connect document store: %w", err)
				}
				if _, err := seed.Documents(ctx, store, records); err != nil {
					return fmt.Errorf("seed document store: %w", err)
				}
			}

			log.WithFields(log.Fields{"patients": patients, "target": target}).Info("seed complete")
			return nil
		},
	}
	cmd.Flags().Int("patients", 50, "Number of patients to generate")
	cmd.Flags().Uint64("seed", 1, "Random seed; equal seeds generate equal data")
	cmd.Flags().String("target", "all", "Backend to seed: all, postgres or mongodb")
	cmd.Flags().Int("validation-logs", 20, "Number of sample validation failures")
	return cmd
}
