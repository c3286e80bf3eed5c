package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("all tables exist", func(t *testing.T) {
		expectedTables := []string{
			"transactions",
			"fx_rates",
			"price_data_daily",
			"securities",
		}

		for _, tableName := range expectedTables {
			var exists bool
			err := testDB.GetRawConn().QueryRow(`
				SELECT EXISTS (
					SELECT FROM information_schema.tables
					WHERE table_schema = 'public'
					AND table_name = $1
				)
			`, tableName).Scan(&exists)

			require.NoError(t, err, "failed to check table existence for %s", tableName)
			assert.True(t, exists, "table %s should exist", tableName)
		}
	})

	t.Run("transactions table enforces positive quantity and price", func(t *testing.T) {
		_, err := testDB.GetRawConn().Exec(`
			INSERT INTO transactions (user_id, symbol, side, quantity, price, price_currency, trade_date)
			VALUES ('u1', 'AAPL', 'BUY', 0, 100, 'USD', '2025-03-01')
		`)
		assert.Error(t, err, "zero quantity should violate the check constraint")

		_, err = testDB.GetRawConn().Exec(`
			INSERT INTO transactions (user_id, symbol, side, quantity, price, price_currency, trade_date)
			VALUES ('u1', 'AAPL', 'BUY', 10, -1, 'USD', '2025-03-01')
		`)
		assert.Error(t, err, "negative price should violate the check constraint")
	})

	t.Run("transactions table rejects unknown side", func(t *testing.T) {
		_, err := testDB.GetRawConn().Exec(`
			INSERT INTO transactions (user_id, symbol, side, quantity, price, price_currency, trade_date)
			VALUES ('u1', 'AAPL', 'HOLD', 10, 100, 'USD', '2025-03-01')
		`)
		assert.Error(t, err)
	})

	t.Run("fx_rates table enforces positive rate", func(t *testing.T) {
		_, err := testDB.GetRawConn().Exec(`
			INSERT INTO fx_rates (base_currency, quote_currency, rate)
			VALUES ('USD', 'EUR', 0)
		`)
		assert.Error(t, err)
	})

	t.Run("price_data_daily is keyed by symbol and date", func(t *testing.T) {
		_, err := testDB.GetRawConn().Exec(`
			INSERT INTO price_data_daily (symbol, date, close)
			VALUES ('AAPL', '2025-03-01', 100)
		`)
		require.NoError(t, err)

		_, err = testDB.GetRawConn().Exec(`
			INSERT INTO price_data_daily (symbol, date, close)
			VALUES ('AAPL', '2025-03-01', 101)
		`)
		assert.Error(t, err, "duplicate (symbol, date) should violate the primary key")
	})
}
