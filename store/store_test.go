package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSaveAndLatest(t *testing.T) {
	db := newTestDB(t)
	writer := NewScrapeWriteRepository(db)
	reader := NewScrapeReadRepository(db)
	ctx := context.Background()

	t.Run("latest on an unseen target is nil", func(t *testing.T) {
		scrape, err := reader.Latest(ctx, "http://missing/metrics")
		require.NoError(t, err)
		assert.Nil(t, scrape)
	})

	t.Run("latest returns the newest scrape", func(t *testing.T) {
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, writer.Save(ctx, &Scrape{
			Target:    "http://app/metrics",
			Format:    "openmetrics",
			Body:      "a 1\n# EOF\n",
			ScrapedAt: base,
		}))
		require.NoError(t, writer.Save(ctx, &Scrape{
			Target:    "http://app/metrics",
			Format:    "openmetrics",
			Body:      "a 2\n# EOF\n",
			ScrapedAt: base.Add(time.Minute),
		}))

		scrape, err := reader.Latest(ctx, "http://app/metrics")
		require.NoError(t, err)
		require.NotNil(t, scrape)
		assert.Equal(t, "a 2\n# EOF\n", scrape.Body)
	})
}

func TestListAndTargets(t *testing.T) {
	db := newTestDB(t)
	writer := NewScrapeWriteRepository(db)
	reader := NewScrapeReadRepository(db)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, target := range []string{"http://a/metrics", "http://b/metrics", "http://a/metrics"} {
		require.NoError(t, writer.Save(ctx, &Scrape{
			Target:    target,
			Format:    "prometheus",
			Body:      "x 1\n",
			ScrapedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	t.Run("list returns a target's scrapes oldest first", func(t *testing.T) {
		scrapes, err := reader.List(ctx, "http://a/metrics")
		require.NoError(t, err)
		require.Len(t, scrapes, 2)
		assert.True(t, scrapes[0].ScrapedAt.Before(scrapes[1].ScrapedAt))
	})

	t.Run("targets are distinct and sorted", func(t *testing.T) {
		targets, err := reader.Targets(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"http://a/metrics", "http://b/metrics"}, targets)
	})
}
