package database

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/folio-service/internal/models"
)

func testPrice(symbol string, date time.Time, close float64) *models.PricePoint {
	return &models.PricePoint{
		Symbol: symbol,
		Date:   date,
		Close:  decimal.NewFromFloat(close),
	}
}

func TestPriceData(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	d := func(day int) time.Time {
		return time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC)
	}

	t.Run("upsert is idempotent on symbol and date", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertPrice(ctx, testPrice("AAPL", d(1), 100)))
		require.NoError(t, testDB.UpsertPrice(ctx, testPrice("AAPL", d(1), 101)))

		latest, err := testDB.LatestCloses(ctx, []string{"AAPL"})
		require.NoError(t, err)
		require.Contains(t, latest, "AAPL")
		assert.True(t, latest["AAPL"].Close.Equal(decimal.NewFromInt(101)))
	})

	t.Run("batch upsert", func(t *testing.T) {
		testDB.TruncateAll(t)

		prices := []*models.PricePoint{
			testPrice("AAPL", d(1), 100),
			testPrice("AAPL", d(2), 102),
			testPrice("MSFT", d(1), 200),
		}
		require.NoError(t, testDB.UpsertPriceBatch(ctx, prices))

		points, err := testDB.ListDailyCloses(ctx, []string{"AAPL", "MSFT"}, d(1), d(3))
		require.NoError(t, err)
		assert.Len(t, points, 3)
	})

	t.Run("list honours the half-open window", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertPriceBatch(ctx, []*models.PricePoint{
			testPrice("AAPL", d(1), 100),
			testPrice("AAPL", d(5), 105),
			testPrice("AAPL", d(10), 110),
		}))

		points, err := testDB.ListDailyCloses(ctx, []string{"AAPL"}, d(1), d(10))
		require.NoError(t, err)
		require.Len(t, points, 2, "stop date is exclusive")
		assert.True(t, points[0].Date.Before(points[1].Date), "ordered by date ascending")
	})

	t.Run("list filters by symbol set", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertPriceBatch(ctx, []*models.PricePoint{
			testPrice("AAPL", d(1), 100),
			testPrice("MSFT", d(1), 200),
			testPrice("VWRL", d(1), 90),
		}))

		points, err := testDB.ListDailyCloses(ctx, []string{"AAPL", "VWRL"}, d(1), d(2))
		require.NoError(t, err)
		assert.Len(t, points, 2)
		for _, p := range points {
			assert.NotEqual(t, "MSFT", p.Symbol)
		}
	})

	t.Run("latest closes picks the newest per symbol", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertPriceBatch(ctx, []*models.PricePoint{
			testPrice("AAPL", d(1), 100),
			testPrice("AAPL", d(7), 107),
			testPrice("MSFT", d(3), 203),
		}))

		latest, err := testDB.LatestCloses(ctx, []string{"AAPL", "MSFT", "NOPE"})
		require.NoError(t, err)
		require.Len(t, latest, 2)
		assert.True(t, latest["AAPL"].Close.Equal(decimal.NewFromInt(107)))
		assert.True(t, latest["MSFT"].Close.Equal(decimal.NewFromInt(203)))
	})

	t.Run("delete older than", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertPriceBatch(ctx, []*models.PricePoint{
			testPrice("AAPL", d(1), 100),
			testPrice("AAPL", d(5), 105),
		}))

		deleted, err := testDB.DeletePricesOlderThan(ctx, d(5))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}
