package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/foliotrack/folio-service/internal/models"
)

// UpsertSecurity adds or updates symbol metadata
func (db *DB) UpsertSecurity(ctx context.Context, s *models.Security) error {
	query := `
		INSERT INTO securities (
			symbol, name, exchange, trading_currency, watchlisted, added_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (symbol) DO UPDATE SET
			name = EXCLUDED.name,
			exchange = EXCLUDED.exchange,
			trading_currency = EXCLUDED.trading_currency,
			watchlisted = EXCLUDED.watchlisted,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	var tradingCurrency interface{}
	if s.TradingCurrency != "" {
		tradingCurrency = s.TradingCurrency
	}

	_, err := db.conn.ExecContext(ctx, query,
		s.Symbol, s.Name, s.Exchange, tradingCurrency, s.Watchlisted, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert security: %w", err)
	}
	s.AddedAt = now
	s.UpdatedAt = now
	return nil
}

// GetSecurity retrieves symbol metadata
func (db *DB) GetSecurity(ctx context.Context, symbol string) (*models.Security, error) {
	query := `
		SELECT symbol, name, exchange, trading_currency, watchlisted, added_at, updated_at
		FROM securities
		WHERE symbol = $1
	`
	var s models.Security
	var name, exchange, tradingCurrency sql.NullString

	err := db.conn.QueryRowContext(ctx, query, symbol).Scan(
		&s.Symbol, &name, &exchange, &tradingCurrency, &s.Watchlisted, &s.AddedAt, &s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("security %s: %w", symbol, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get security: %w", err)
	}

	if name.Valid {
		s.Name = name.String
	}
	if exchange.Valid {
		s.Exchange = exchange.String
	}
	if tradingCurrency.Valid {
		s.TradingCurrency = tradingCurrency.String
	}
	return &s, nil
}

// ListSecurities retrieves all watchlisted symbols
func (db *DB) ListSecurities(ctx context.Context) ([]models.Security, error) {
	query := `
		SELECT symbol, name, exchange, trading_currency, watchlisted, added_at, updated_at
		FROM securities
		WHERE watchlisted = true
		ORDER BY symbol
	`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list securities: %w", err)
	}
	defer rows.Close()

	var securities []models.Security
	for rows.Next() {
		var s models.Security
		var name, exchange, tradingCurrency sql.NullString

		err := rows.Scan(&s.Symbol, &name, &exchange, &tradingCurrency, &s.Watchlisted, &s.AddedAt, &s.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security: %w", err)
		}

		if name.Valid {
			s.Name = name.String
		}
		if exchange.Valid {
			s.Exchange = exchange.String
		}
		if tradingCurrency.Valid {
			s.TradingCurrency = tradingCurrency.String
		}
		securities = append(securities, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate securities: %w", err)
	}
	return securities, nil
}

// TradingCurrency returns the registered trading currency for a symbol, or
// "" when the symbol is unknown or has none registered
func (db *DB) TradingCurrency(ctx context.Context, symbol string) (string, error) {
	query := `SELECT trading_currency FROM securities WHERE symbol = $1`
	var currency sql.NullString

	err := db.conn.QueryRowContext(ctx, query, symbol).Scan(&currency)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get trading currency: %w", err)
	}

	if !currency.Valid {
		return "", nil
	}
	return currency.String, nil
}

// DeleteSecurity removes symbol metadata
func (db *DB) DeleteSecurity(ctx context.Context, symbol string) error {
	query := `DELETE FROM securities WHERE symbol = $1`
	result, err := db.conn.ExecContext(ctx, query, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete security: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("security %s: %w", symbol, ErrNotFound)
	}
	return nil
}
