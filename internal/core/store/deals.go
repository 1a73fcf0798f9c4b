package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goinupdeals/snackdeals/internal/core"
)

// SweepRun records one completed keyword sweep for auditing.
type SweepRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Keywords   []string
	DealsFound int
	DealsSaved int
}

// SaveDeal inserts a deal if its ASIN has not been seen before. It reports
// whether the deal was newly saved; an existing ASIN is left untouched so a
// deal already posted is never reset.
func (s *Store) SaveDeal(ctx context.Context, deal core.Deal) (bool, error) {
	if s == nil || s.DB == nil {
		return false, errors.New("store is not open")
	}
	if strings.TrimSpace(deal.ASIN) == "" {
		return false, errors.New("deal ASIN is required")
	}

	createdAt := deal.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	result, err := s.DB.ExecContext(ctx, `
		INSERT INTO deals (asin, title, price_cents, original_price_cents, discount_percent, url, image_url, posted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
		ON CONFLICT(asin) DO NOTHING`,
		deal.ASIN, deal.Title, int64(deal.Price), int64(deal.OriginalPrice),
		deal.DiscountPercent, deal.URL, deal.ImageURL, createdAt.Unix())
	if err != nil {
		return false, fmt.Errorf("save deal %s: %w", deal.ASIN, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save deal %s: %w", deal.ASIN, err)
	}
	return affected > 0, nil
}

// MarkPosted flags a deal as posted and stamps the posting time.
func (s *Store) MarkPosted(ctx context.Context, asin string) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not open")
	}

	result, err := s.DB.ExecContext(ctx,
		"UPDATE deals SET posted = 1, posted_at = ? WHERE asin = ?",
		s.now().Unix(), asin)
	if err != nil {
		return fmt.Errorf("mark deal %s posted: %w", asin, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark deal %s posted: %w", asin, err)
	}
	if affected == 0 {
		return fmt.Errorf("deal %s not found", asin)
	}
	return nil
}

// BestUnposted returns the highest-discount deal that has not been posted,
// oldest first on ties. It returns nil without error when no unposted deal
// exists.
func (s *Store) BestUnposted(ctx context.Context) (*core.Deal, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not open")
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT asin, title, price_cents, original_price_cents, discount_percent, url, image_url, posted, created_at, posted_at
		FROM deals
		WHERE posted = 0
		ORDER BY discount_percent DESC, created_at ASC
		LIMIT 1`)

	deal, err := scanDeal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query best unposted deal: %w", err)
	}
	return deal, nil
}

// PostedSince returns the ASINs of deals posted within the last N days.
func (s *Store) PostedSince(ctx context.Context, days int) ([]string, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not open")
	}

	cutoff := s.now().AddDate(0, 0, -days).Unix()
	rows, err := s.DB.QueryContext(ctx,
		"SELECT asin FROM deals WHERE posted = 1 AND posted_at >= ?", cutoff)
	if err != nil {
		return nil, fmt.Errorf("query posted deals: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	var asins []string
	for rows.Next() {
		var asin string
		if err := rows.Scan(&asin); err != nil {
			return nil, fmt.Errorf("scan posted deal: %w", err)
		}
		asins = append(asins, asin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posted deals: %w", err)
	}
	return asins, nil
}

// ListRecent returns the most recently saved deals, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]core.Deal, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not open")
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT asin, title, price_cents, original_price_cents, discount_percent, url, image_url, posted, created_at, posted_at
		FROM deals
		ORDER BY created_at DESC, asin ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent deals: %w", err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup

	var deals []core.Deal
	for rows.Next() {
		deal, err := scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recent deal: %w", err)
		}
		deals = append(deals, *deal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent deals: %w", err)
	}
	return deals, nil
}

// SaveSweepRun records a completed sweep.
func (s *Store) SaveSweepRun(ctx context.Context, run SweepRun) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not open")
	}
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("sweep run ID is required")
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO sweep_runs (id, started_at, finished_at, keywords, deals_found, deals_saved)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Unix(), run.FinishedAt.Unix(),
		strings.Join(run.Keywords, ","), run.DealsFound, run.DealsSaved)
	if err != nil {
		return fmt.Errorf("save sweep run %s: %w", run.ID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeal(row rowScanner) (*core.Deal, error) {
	var (
		deal      core.Deal
		price     int64
		original  int64
		posted    int
		createdAt int64
		postedAt  sql.NullInt64
	)
	err := row.Scan(&deal.ASIN, &deal.Title, &price, &original,
		&deal.DiscountPercent, &deal.URL, &deal.ImageURL, &posted, &createdAt, &postedAt)
	if err != nil {
		return nil, err
	}

	deal.Price = core.Cents(price)
	deal.OriginalPrice = core.Cents(original)
	deal.Posted = posted != 0
	deal.CreatedAt = time.Unix(createdAt, 0).UTC()
	if postedAt.Valid {
		ts := time.Unix(postedAt.Int64, 0).UTC()
		deal.PostedAt = &ts
	}
	return &deal, nil
}
