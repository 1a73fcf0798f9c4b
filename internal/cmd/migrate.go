package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/observability"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the deals database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		observability.CLILogger.Info("Database schema is up to date",
			zap.String("driver", st.Driver()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
