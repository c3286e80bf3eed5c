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

func TestFxRates(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("upsert and list", func(t *testing.T) {
		testDB.TruncateAll(t)

		rate := &models.FxRate{
			BaseCurrency:  "USD",
			QuoteCurrency: "EUR",
			Rate:          decimal.NewFromFloat(0.9123456789),
		}
		require.NoError(t, testDB.UpsertFxRate(ctx, rate))
		assert.False(t, rate.FetchedAt.IsZero())

		rates, err := testDB.ListFxRates(ctx)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.Equal(t, "USD", rates[0].BaseCurrency)
		assert.Equal(t, "EUR", rates[0].QuoteCurrency)
		assert.True(t, rates[0].Rate.Equal(decimal.NewFromFloat(0.9123456789)))
	})

	t.Run("upsert replaces the existing pair", func(t *testing.T) {
		testDB.TruncateAll(t)

		first := &models.FxRate{
			BaseCurrency:  "USD",
			QuoteCurrency: "EUR",
			Rate:          decimal.NewFromFloat(0.90),
			FetchedAt:     time.Now().Add(-time.Hour),
		}
		require.NoError(t, testDB.UpsertFxRate(ctx, first))

		second := &models.FxRate{
			BaseCurrency:  "USD",
			QuoteCurrency: "EUR",
			Rate:          decimal.NewFromFloat(0.92),
		}
		require.NoError(t, testDB.UpsertFxRate(ctx, second))

		rates, err := testDB.ListFxRates(ctx)
		require.NoError(t, err)
		require.Len(t, rates, 1)
		assert.True(t, rates[0].Rate.Equal(decimal.NewFromFloat(0.92)))
	})

	t.Run("directed pairs are distinct rows", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertFxRate(ctx, &models.FxRate{
			BaseCurrency: "USD", QuoteCurrency: "EUR", Rate: decimal.NewFromFloat(0.9),
		}))
		require.NoError(t, testDB.UpsertFxRate(ctx, &models.FxRate{
			BaseCurrency: "EUR", QuoteCurrency: "USD", Rate: decimal.NewFromFloat(1.12),
		}))

		rates, err := testDB.ListFxRates(ctx)
		require.NoError(t, err)
		assert.Len(t, rates, 2)
	})
}
