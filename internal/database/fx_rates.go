package database

import (
	"context"
	"fmt"
	"time"

	"github.com/foliotrack/folio-service/internal/models"
)

// UpsertFxRate stores a directed currency pair, replacing any existing rate
func (db *DB) UpsertFxRate(ctx context.Context, r *models.FxRate) error {
	query := `
		INSERT INTO fx_rates (base_currency, quote_currency, rate, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (base_currency, quote_currency) DO UPDATE SET
			rate = EXCLUDED.rate,
			fetched_at = EXCLUDED.fetched_at
	`
	fetchedAt := r.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx, query, r.BaseCurrency, r.QuoteCurrency, r.Rate, fetchedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert fx rate: %w", err)
	}
	r.FetchedAt = fetchedAt
	return nil
}

// ListFxRates retrieves every stored rate, unfiltered. The valuation engine
// builds the full conversion matrix from this set.
func (db *DB) ListFxRates(ctx context.Context) ([]models.FxRate, error) {
	query := `
		SELECT base_currency, quote_currency, rate, fetched_at
		FROM fx_rates
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fx rates: %w", err)
	}
	defer rows.Close()

	var rates []models.FxRate
	for rows.Next() {
		var r models.FxRate
		if err := rows.Scan(&r.BaseCurrency, &r.QuoteCurrency, &r.Rate, &r.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fx rate: %w", err)
		}
		rates = append(rates, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fx rates: %w", err)
	}
	return rates, nil
}
