//go:build cgo

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goinupdeals/snackdeals/internal/config"
	"github.com/goinupdeals/snackdeals/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), config.StoreConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testDeal(asin string, discount int) core.Deal {
	return core.Deal{
		ASIN:            asin,
		Title:           "Crunchy Snack Mix",
		Price:           800,
		OriginalPrice:   1000,
		DiscountPercent: discount,
		URL:             "https://www.amazon.com/dp/" + asin + "?tag=goinup-20",
		ImageURL:        "https://img.example.com/" + asin + ".jpg",
	}
}

func TestSaveDeal(t *testing.T) {
	t.Run("InsertsNewDeal", func(t *testing.T) {
		s := openTestStore(t)

		saved, err := s.SaveDeal(context.Background(), testDeal("B000AAAA01", 20))
		require.NoError(t, err)
		require.True(t, saved)

		deals, err := s.ListRecent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, deals, 1)
		require.Equal(t, "B000AAAA01", deals[0].ASIN)
		require.Equal(t, core.Cents(800), deals[0].Price)
		require.False(t, deals[0].Posted)
		require.False(t, deals[0].CreatedAt.IsZero())
	})

	t.Run("DuplicateASINIsIgnored", func(t *testing.T) {
		s := openTestStore(t)

		saved, err := s.SaveDeal(context.Background(), testDeal("B000AAAA01", 20))
		require.NoError(t, err)
		require.True(t, saved)

		require.NoError(t, s.MarkPosted(context.Background(), "B000AAAA01"))

		again := testDeal("B000AAAA01", 40)
		saved, err = s.SaveDeal(context.Background(), again)
		require.NoError(t, err)
		require.False(t, saved)

		deals, err := s.ListRecent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, deals, 1)
		require.Equal(t, 20, deals[0].DiscountPercent)
		require.True(t, deals[0].Posted)
	})

	t.Run("RequiresASIN", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.SaveDeal(context.Background(), core.Deal{Title: "no asin"})
		require.Error(t, err)
	})
}

func TestMarkPosted(t *testing.T) {
	t.Run("StampsPostingTime", func(t *testing.T) {
		s := openTestStore(t)
		now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		s.Clock = func() time.Time { return now }

		_, err := s.SaveDeal(context.Background(), testDeal("B000AAAA01", 20))
		require.NoError(t, err)

		require.NoError(t, s.MarkPosted(context.Background(), "B000AAAA01"))

		deals, err := s.ListRecent(context.Background(), 10)
		require.NoError(t, err)
		require.Len(t, deals, 1)
		require.True(t, deals[0].Posted)
		require.NotNil(t, deals[0].PostedAt)
		require.Equal(t, now.Unix(), deals[0].PostedAt.Unix())
	})

	t.Run("UnknownASIN", func(t *testing.T) {
		s := openTestStore(t)
		require.Error(t, s.MarkPosted(context.Background(), "B000MISSING"))
	})
}

func TestBestUnposted(t *testing.T) {
	t.Run("PicksHighestDiscount", func(t *testing.T) {
		s := openTestStore(t)

		for asin, discount := range map[string]int{
			"B000AAAA01": 20,
			"B000AAAA02": 45,
			"B000AAAA03": 30,
		} {
			_, err := s.SaveDeal(context.Background(), testDeal(asin, discount))
			require.NoError(t, err)
		}

		best, err := s.BestUnposted(context.Background())
		require.NoError(t, err)
		require.NotNil(t, best)
		require.Equal(t, "B000AAAA02", best.ASIN)
	})

	t.Run("SkipsPostedDeals", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.SaveDeal(context.Background(), testDeal("B000AAAA01", 45))
		require.NoError(t, err)
		_, err = s.SaveDeal(context.Background(), testDeal("B000AAAA02", 20))
		require.NoError(t, err)

		require.NoError(t, s.MarkPosted(context.Background(), "B000AAAA01"))

		best, err := s.BestUnposted(context.Background())
		require.NoError(t, err)
		require.NotNil(t, best)
		require.Equal(t, "B000AAAA02", best.ASIN)
	})

	t.Run("NoUnpostedDeals", func(t *testing.T) {
		s := openTestStore(t)

		best, err := s.BestUnposted(context.Background())
		require.NoError(t, err)
		require.Nil(t, best)
	})

	t.Run("TieBreaksOnOldest", func(t *testing.T) {
		s := openTestStore(t)

		older := testDeal("B000AAAA01", 30)
		older.CreatedAt = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
		newer := testDeal("B000AAAA02", 30)
		newer.CreatedAt = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

		_, err := s.SaveDeal(context.Background(), newer)
		require.NoError(t, err)
		_, err = s.SaveDeal(context.Background(), older)
		require.NoError(t, err)

		best, err := s.BestUnposted(context.Background())
		require.NoError(t, err)
		require.NotNil(t, best)
		require.Equal(t, "B000AAAA01", best.ASIN)
	})
}

func TestPostedSince(t *testing.T) {
	s := openTestStore(t)
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := s.SaveDeal(context.Background(), testDeal("B000AAAA01", 20))
	require.NoError(t, err)
	_, err = s.SaveDeal(context.Background(), testDeal("B000AAAA02", 25))
	require.NoError(t, err)
	_, err = s.SaveDeal(context.Background(), testDeal("B000AAAA03", 30))
	require.NoError(t, err)

	s.Clock = func() time.Time { return now.AddDate(0, 0, -10) }
	require.NoError(t, s.MarkPosted(context.Background(), "B000AAAA01"))

	s.Clock = func() time.Time { return now.AddDate(0, 0, -2) }
	require.NoError(t, s.MarkPosted(context.Background(), "B000AAAA02"))

	s.Clock = func() time.Time { return now }
	asins, err := s.PostedSince(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []string{"B000AAAA02"}, asins)
}

func TestSaveSweepRun(t *testing.T) {
	s := openTestStore(t)

	run := SweepRun{
		ID:         "a3c50f1e-6f4e-4b36-9f15-0f0f9b6a1c11",
		StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		Keywords:   []string{"snack box", "trail mix"},
		DealsFound: 7,
		DealsSaved: 4,
	}
	require.NoError(t, s.SaveSweepRun(context.Background(), run))

	var (
		keywords string
		found    int
	)
	err := s.DB.QueryRow("SELECT keywords, deals_found FROM sweep_runs WHERE id = ?", run.ID).
		Scan(&keywords, &found)
	require.NoError(t, err)
	require.Equal(t, "snack box,trail mix", keywords)
	require.Equal(t, 7, found)

	t.Run("RequiresID", func(t *testing.T) {
		require.Error(t, s.SaveSweepRun(context.Background(), SweepRun{}))
	})
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "postgres", Path: ":memory:"})
	require.Error(t, err)
}
