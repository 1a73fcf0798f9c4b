package engine

import (
	"context"
	"errors"
	"time"

	"github.com/fulmenhq/gofulmen/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goinupdeals/snackdeals/internal/catalog"
	"github.com/goinupdeals/snackdeals/internal/core"
)

// Sweep cooldown defaults. The error cooldown is deliberately much longer:
// after evidence of trouble the sweep spreads load further before resuming.
const (
	DefaultKeywordCooldown = 45 * time.Second
	DefaultErrorCooldown   = 3 * time.Minute
	DefaultItemCount       = 10
)

// Searcher executes one catalog search call.
type Searcher interface {
	Search(ctx context.Context, req catalog.SearchRequest) (*catalog.SearchResponse, error)
}

// Sweeper drives one full pass over a fixed keyword list.
//
// Keywords run strictly sequentially through the shared Throttler; the
// single throttle state is the reason nothing here is ever parallel. A
// keyword that fails is logged and skipped, never aborting the sweep.
type Sweeper struct {
	Searcher        Searcher
	Throttler       *Throttler
	Extractor       *catalog.Extractor
	Keywords        []string
	ItemCount       int
	MinPriceCents   int
	MinDiscount     int
	KeywordCooldown time.Duration
	ErrorCooldown   time.Duration
	Sleep           func(time.Duration)
	Logger          *logging.Logger
	Clock           func() time.Time
}

// SweepResult aggregates everything one sweep found.
type SweepResult struct {
	RunID          string
	Deals          []core.Deal
	KeywordsSwept  int
	FailedKeywords []string
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Run executes the sweep and returns the accumulated deals. The only
// sweep-level failures are configuration problems and context
// cancellation; per-keyword errors are absorbed.
func (s *Sweeper) Run(ctx context.Context) (*SweepResult, error) {
	if s == nil || s.Searcher == nil || s.Throttler == nil || s.Extractor == nil {
		return nil, errors.New("sweeper requires a searcher, throttler, and extractor")
	}
	if len(s.Keywords) == 0 {
		return nil, errors.New("at least one keyword is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	result := &SweepResult{
		RunID:     uuid.New().String(),
		StartedAt: s.now(),
	}

	for i, keyword := range s.Keywords {
		if err := ctx.Err(); err != nil {
			result.FinishedAt = s.now()
			return result, err
		}

		s.info("Searching keyword",
			zap.String("run_id", result.RunID),
			zap.String("keyword", keyword))

		deals, err := s.sweepKeyword(ctx, keyword)
		result.KeywordsSwept++

		last := i == len(s.Keywords)-1
		if err != nil {
			result.FailedKeywords = append(result.FailedKeywords, keyword)
			if s.Logger != nil {
				s.Logger.Error("Keyword search failed",
					zap.String("run_id", result.RunID),
					zap.String("keyword", keyword),
					zap.Error(err))
			}
			if !last {
				s.info("Cooling down after error",
					zap.Duration("cooldown", s.errorCooldown()))
				s.sleep(s.errorCooldown())
			}
			continue
		}

		result.Deals = append(result.Deals, deals...)
		s.info("Keyword swept",
			zap.String("run_id", result.RunID),
			zap.String("keyword", keyword),
			zap.Int("deals", len(deals)))

		if !last {
			s.sleep(s.keywordCooldown())
		}
	}

	result.FinishedAt = s.now()
	return result, nil
}

// sweepKeyword performs one throttled search and extracts its deals.
func (s *Sweeper) sweepKeyword(ctx context.Context, keyword string) ([]core.Deal, error) {
	var resp *catalog.SearchResponse

	err := s.Throttler.Do(ctx, func(ctx context.Context) error {
		var callErr error
		resp, callErr = s.Searcher.Search(ctx, catalog.SearchRequest{
			Keywords:         keyword,
			ItemCount:        s.itemCount(),
			MinPriceCents:    s.MinPriceCents,
			Condition:        catalog.ConditionNew,
			MinSavingPercent: s.MinDiscount,
		})
		return callErr
	})
	if err != nil {
		return nil, err
	}

	return s.Extractor.Deals(resp), nil
}

func (s *Sweeper) itemCount() int {
	if s.ItemCount > 0 {
		return s.ItemCount
	}
	return DefaultItemCount
}

func (s *Sweeper) keywordCooldown() time.Duration {
	if s.KeywordCooldown > 0 {
		return s.KeywordCooldown
	}
	return DefaultKeywordCooldown
}

func (s *Sweeper) errorCooldown() time.Duration {
	if s.ErrorCooldown > 0 {
		return s.ErrorCooldown
	}
	return DefaultErrorCooldown
}

func (s *Sweeper) info(msg string, fields ...zap.Field) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields...)
	}
}

func (s *Sweeper) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (s *Sweeper) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
