package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/bluesky"
	"github.com/goinupdeals/snackdeals/internal/catalog"
	"github.com/goinupdeals/snackdeals/internal/core"
	"github.com/goinupdeals/snackdeals/internal/core/engine"
	"github.com/goinupdeals/snackdeals/internal/core/store"
	"github.com/goinupdeals/snackdeals/internal/observability"
)

// openStore opens the deals database and applies migrations.
func openStore(ctx context.Context) (*store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate store: %w", err)
	}
	return st, nil
}

// buildSweeper assembles the catalog client, throttler, and extractor from
// configuration. Keywords override the configured list when non-empty.
func buildSweeper(keywords []string) (*engine.Sweeper, error) {
	if err := cfg.ValidateCatalog(); err != nil {
		return nil, err
	}

	minPrice, err := core.ParseCents(cfg.Sweep.MinPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep.min_price: %w", err)
	}

	if len(keywords) == 0 {
		keywords = cfg.Sweep.Keywords
	}

	client := catalog.NewClient(cfg.Catalog.Endpoint,
		cfg.Catalog.AccessKey, cfg.Catalog.SecretKey, cfg.Catalog.PartnerTag)

	throttler := &engine.Throttler{
		MinInterval:    cfg.Throttle.MinInterval,
		MaxRetries:     cfg.Throttle.MaxRetries,
		BaseBackoff:    cfg.Throttle.BaseBackoff,
		FloorIncrement: cfg.Throttle.FloorIncrement,
		Logger:         observability.CLILogger,
	}

	extractor := &catalog.Extractor{
		MarketplaceURL: cfg.Catalog.Marketplace,
		ReferralTag:    cfg.Catalog.PartnerTag,
		MinDiscount:    cfg.Sweep.MinDiscount,
		Logger:         observability.CLILogger,
	}

	return &engine.Sweeper{
		Searcher:        client,
		Throttler:       throttler,
		Extractor:       extractor,
		Keywords:        keywords,
		ItemCount:       cfg.Sweep.ItemCount,
		MinPriceCents:   int(minPrice),
		MinDiscount:     cfg.Sweep.MinDiscount,
		KeywordCooldown: cfg.Sweep.KeywordCooldown,
		ErrorCooldown:   cfg.Sweep.ErrorCooldown,
		Logger:          observability.CLILogger,
	}, nil
}

// buildPoster assembles the Bluesky poster from configuration.
func buildPoster() (*bluesky.Poster, error) {
	if err := cfg.ValidateBluesky(); err != nil {
		return nil, err
	}

	client := bluesky.NewClient(cfg.Bluesky.Host, cfg.Bluesky.Handle, cfg.Bluesky.AppPassword)
	return bluesky.NewPoster(client, observability.CLILogger), nil
}

// saveDeals persists sweep results, skipping ASINs already on record.
func saveDeals(ctx context.Context, st *store.Store, deals []core.Deal) (int, error) {
	saved := 0
	for _, deal := range deals {
		inserted, err := st.SaveDeal(ctx, deal)
		if err != nil {
			return saved, err
		}
		if inserted {
			saved++
		} else {
			observability.CLILogger.Debug("Deal already on record",
				zap.String("asin", deal.ASIN))
		}
	}
	return saved, nil
}

// recordSweep persists the sweep run summary. Failures are logged, not fatal.
func recordSweep(ctx context.Context, st *store.Store, result *engine.SweepResult, keywords []string, saved int) {
	err := st.SaveSweepRun(ctx, store.SweepRun{
		ID:         result.RunID,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Keywords:   keywords,
		DealsFound: len(result.Deals),
		DealsSaved: saved,
	})
	if err != nil {
		observability.CLILogger.Warn("Failed to record sweep run",
			zap.String("run_id", result.RunID),
			zap.Error(err))
	}
}
