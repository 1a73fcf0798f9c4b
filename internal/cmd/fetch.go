package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/observability"
)

var fetchKeywords []string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Sweep the catalog and save new deals",
	Long: `Sweep the configured keywords against the product catalog and save
newly discovered deals to the local database.

Keywords are swept sequentially through a shared request throttler that
backs off and raises its pacing floor when the catalog rate-limits us.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := observability.CLILogger

		sweeper, err := buildSweeper(fetchKeywords)
		if err != nil {
			return err
		}

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		result, err := sweeper.Run(ctx)
		if err != nil {
			return err
		}

		saved, err := saveDeals(ctx, st, result.Deals)
		if err != nil {
			return err
		}
		recordSweep(ctx, st, result, sweeper.Keywords, saved)

		logger.Info("Sweep complete",
			zap.String("run_id", result.RunID),
			zap.Int("keywords_swept", result.KeywordsSwept),
			zap.Int("deals_found", len(result.Deals)),
			zap.Int("deals_saved", saved),
			zap.Strings("failed_keywords", result.FailedKeywords))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringSliceVarP(&fetchKeywords, "keywords", "k", nil,
		"keywords to sweep (default is the configured list)")
}
