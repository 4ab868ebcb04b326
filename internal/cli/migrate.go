package cli

import (
	"github.com/spf13/cobra"

	"freight-rate-hub/internal/app"
)

var migrateOpts app.MigrateOptions

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy commission records from another ledger backend into the configured one",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Migrate(cmd.Context(), migrateOpts)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateOpts.SourceBackend, "from-backend", "", "Source backend: file, postgres or redis")
	migrateCmd.Flags().StringVar(&migrateOpts.SourcePath, "from-path", "", "Source file for the file backend")
	migrateCmd.Flags().BoolVar(&migrateOpts.DryRun, "dry-run", false, "Report what would be copied without writing")
	_ = migrateCmd.MarkFlagRequired("from-backend")
}
