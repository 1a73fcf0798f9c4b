package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/bluesky"
	"github.com/goinupdeals/snackdeals/internal/observability"
)

var postDryRun bool

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post the best unposted deal to Bluesky",
	Long: `Pick the highest-discount deal that has not been posted yet and
announce it on Bluesky. The deal is marked posted only after the post
succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := observability.CLILogger

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() // nolint:errcheck // best-effort cleanup

		deal, err := st.BestUnposted(ctx)
		if err != nil {
			return err
		}
		if deal == nil {
			logger.Info("No unposted deals available")
			return nil
		}

		if postDryRun {
			text, _ := bluesky.FormatPost(*deal)
			fmt.Println(text)
			return nil
		}

		poster, err := buildPoster()
		if err != nil {
			return err
		}

		uri, err := poster.PostDeal(ctx, *deal)
		if err != nil {
			return err
		}
		if err := st.MarkPosted(ctx, deal.ASIN); err != nil {
			return err
		}

		logger.Info("Deal posted",
			zap.String("asin", deal.ASIN),
			zap.String("uri", uri))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(postCmd)

	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false,
		"print the post text instead of publishing it")
}
