// main.go
package main

import (
	"os"

	"github.com/ariebrainware/ml-pipeline-api/config"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ml-pipeline-api",
		Short: "Patient health records API with diabetes risk prediction",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetupLogging(config.LoadConfig())
		},
		// Running without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
