package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliotrack/folio-service/internal/models"
)

func TestSecurities(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)
	ctx := context.Background()

	t.Run("upsert and get", func(t *testing.T) {
		testDB.TruncateAll(t)

		sec := &models.Security{
			Symbol:          "VWRL",
			Name:            "Vanguard FTSE All-World",
			Exchange:        "AMS",
			TradingCurrency: "EUR",
			Watchlisted:     true,
		}
		require.NoError(t, testDB.UpsertSecurity(ctx, sec))
		assert.False(t, sec.AddedAt.IsZero())

		got, err := testDB.GetSecurity(ctx, "VWRL")
		require.NoError(t, err)
		assert.Equal(t, "Vanguard FTSE All-World", got.Name)
		assert.Equal(t, "EUR", got.TradingCurrency)
		assert.True(t, got.Watchlisted)
	})

	t.Run("upsert updates the existing row", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "AAPL", TradingCurrency: "USD", Watchlisted: true,
		}))
		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "AAPL", Name: "Apple Inc.", TradingCurrency: "USD", Watchlisted: false,
		}))

		got, err := testDB.GetSecurity(ctx, "AAPL")
		require.NoError(t, err)
		assert.Equal(t, "Apple Inc.", got.Name)
		assert.False(t, got.Watchlisted)
	})

	t.Run("list returns only watchlisted symbols", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "AAPL", Watchlisted: true,
		}))
		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "MSFT", Watchlisted: false,
		}))

		securities, err := testDB.ListSecurities(ctx)
		require.NoError(t, err)
		require.Len(t, securities, 1)
		assert.Equal(t, "AAPL", securities[0].Symbol)
	})

	t.Run("trading currency falls back to empty", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "VWRL", TradingCurrency: "EUR", Watchlisted: true,
		}))
		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "MYSTERY", Watchlisted: true,
		}))

		currency, err := testDB.TradingCurrency(ctx, "VWRL")
		require.NoError(t, err)
		assert.Equal(t, "EUR", currency)

		currency, err = testDB.TradingCurrency(ctx, "MYSTERY")
		require.NoError(t, err)
		assert.Empty(t, currency, "null trading_currency maps to empty string")

		currency, err = testDB.TradingCurrency(ctx, "UNKNOWN")
		require.NoError(t, err)
		assert.Empty(t, currency, "unknown symbol is not an error")
	})

	t.Run("delete", func(t *testing.T) {
		testDB.TruncateAll(t)

		require.NoError(t, testDB.UpsertSecurity(ctx, &models.Security{
			Symbol: "AAPL", Watchlisted: true,
		}))
		require.NoError(t, testDB.DeleteSecurity(ctx, "AAPL"))

		err := testDB.DeleteSecurity(ctx, "AAPL")
		assert.Error(t, err, "deleting twice should report not found")
	})
}
