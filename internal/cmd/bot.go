package cmd

import (
	"context"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/observability"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the deal bot loop",
	Long: `Run the full bot cycle on a schedule: sweep the catalog, save new
deals, and post the best unposted deal to Bluesky. A cycle runs
immediately on startup and then every bluesky.post_interval.

Ctrl+C (SIGINT) or SIGTERM stops the bot between cycles.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := observability.CLILogger

		// Fail fast on missing credentials before entering the loop.
		if _, err := buildSweeper(nil); err != nil {
			return err
		}
		if _, err := buildPoster(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		signals.OnShutdown(func(context.Context) error {
			logger.Info("Shutdown requested, stopping bot")
			cancel()
			return nil
		})
		go func() {
			if err := signals.Listen(ctx); err != nil {
				logger.Warn("Signal handler error", zap.Error(err))
			}
		}()

		interval := cfg.Bluesky.PostInterval
		if interval <= 0 {
			interval = 6 * time.Hour
		}
		logger.Info("Bot started", zap.Duration("post_interval", interval))

		for {
			if err := runBotCycle(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Error("Bot cycle failed", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(interval):
			}
		}
	},
}

// runBotCycle performs one sweep-save-post cycle.
func runBotCycle(ctx context.Context) error {
	logger := observability.CLILogger

	sweeper, err := buildSweeper(nil)
	if err != nil {
		return err
	}
	poster, err := buildPoster()
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
		zap.Int("deals_found", len(result.Deals)),
		zap.Int("deals_saved", saved))

	deal, err := st.BestUnposted(ctx)
	if err != nil {
		return err
	}
	if deal == nil {
		logger.Info("No unposted deals to announce")
		return nil
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
}

func init() {
	rootCmd.AddCommand(botCmd)
}
