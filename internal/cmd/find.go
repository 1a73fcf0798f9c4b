package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/core"
	"github.com/goinupdeals/snackdeals/internal/observability"
	"github.com/goinupdeals/snackdeals/internal/output"
)

var (
	findKeywords []string
	findTop      int
	findFormat   string
	findSave     bool
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Sweep the catalog and show the best deals",
	Long: `Sweep the configured keywords and print the top deals ranked by
discount percentage. Use --save to also persist the finds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(findFormat)
		if err != nil {
			return err
		}

		sweeper, err := buildSweeper(findKeywords)
		if err != nil {
			return err
		}

		result, err := sweeper.Run(ctx)
		if err != nil {
			return err
		}

		top := findTop
		if top <= 0 {
			top = cfg.Sweep.TopDeals
		}
		best := core.TopDeals(result.Deals, top)

		if findSave {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() // nolint:errcheck // best-effort cleanup

			saved, err := saveDeals(ctx, st, result.Deals)
			if err != nil {
				return err
			}
			recordSweep(ctx, st, result, sweeper.Keywords, saved)
			observability.CLILogger.Info("Saved sweep results",
				zap.Int("deals_saved", saved))
		}

		rendered, err := output.NewFormatter(format).FormatDeals(best)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringSliceVarP(&findKeywords, "keywords", "k", nil,
		"keywords to sweep (default is the configured list)")
	findCmd.Flags().IntVarP(&findTop, "top", "n", 0,
		"number of deals to show (default is sweep.top_deals)")
	findCmd.Flags().StringVarP(&findFormat, "output", "o", "table",
		"output format: table, json, or markdown")
	findCmd.Flags().BoolVar(&findSave, "save", false,
		"also save discovered deals to the database")
}
