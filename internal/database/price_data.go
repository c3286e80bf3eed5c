package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/foliotrack/folio-service/internal/models"
)

// UpsertPrice inserts or replaces one daily close
func (db *DB) UpsertPrice(ctx context.Context, p *models.PricePoint) error {
	query := `
		INSERT INTO price_data_daily (symbol, date, close, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date) DO UPDATE SET
			close = EXCLUDED.close
	`
	_, err := db.conn.ExecContext(ctx, query, p.Symbol, p.Date, p.Close, time.Now())
	if err != nil {
		return fmt.Errorf("failed to upsert price: %w", err)
	}
	return nil
}

// UpsertPriceBatch inserts multiple daily closes efficiently
func (db *DB) UpsertPriceBatch(ctx context.Context, prices []*models.PricePoint) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO price_data_daily (symbol, date, close, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol, date) DO UPDATE SET
			close = EXCLUDED.close
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, p := range prices {
		if _, err := stmt.ExecContext(ctx, p.Symbol, p.Date, p.Close, now); err != nil {
			return fmt.Errorf("failed to insert price for %s: %w", p.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListDailyCloses retrieves raw closes for a symbol set within
// [startInclusive, stopExclusive), ordered by symbol and date
func (db *DB) ListDailyCloses(ctx context.Context, symbols []string, startInclusive, stopExclusive time.Time) ([]models.PricePoint, error) {
	query := `
		SELECT symbol, date, close, created_at
		FROM price_data_daily
		WHERE symbol = ANY($1) AND date >= $2 AND date < $3
		ORDER BY symbol, date ASC
	`
	rows, err := db.conn.QueryContext(ctx, query, pq.Array(symbols), startInclusive, stopExclusive)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily closes: %w", err)
	}
	defer rows.Close()

	var points []models.PricePoint
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price points: %w", err)
	}
	return points, nil
}

// LatestCloses retrieves the most recent close per symbol
func (db *DB) LatestCloses(ctx context.Context, symbols []string) (map[string]models.PricePoint, error) {
	query := `
		SELECT DISTINCT ON (symbol) symbol, date, close, created_at
		FROM price_data_daily
		WHERE symbol = ANY($1)
		ORDER BY symbol, date DESC
	`
	rows, err := db.conn.QueryContext(ctx, query, pq.Array(symbols))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest closes: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]models.PricePoint, len(symbols))
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Date, &p.Close, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan price point: %w", err)
		}
		latest[p.Symbol] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price points: %w", err)
	}
	return latest, nil
}

// DeletePricesOlderThan removes closes older than a date, returning the
// number of rows removed
func (db *DB) DeletePricesOlderThan(ctx context.Context, date time.Time) (int64, error) {
	query := `DELETE FROM price_data_daily WHERE date < $1`
	result, err := db.conn.ExecContext(ctx, query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old prices: %w", err)
	}
	return result.RowsAffected()
}
