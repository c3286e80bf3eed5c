package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/foliotrack/folio-service/internal/models"
)

// CreateTransaction inserts a new ledger entry
func (db *DB) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (
			user_id, symbol, side, quantity, price, price_currency,
			fee, fee_currency, trade_date, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	now := time.Now()
	var feeCurrency interface{}
	if t.FeeCurrency != "" {
		feeCurrency = t.FeeCurrency
	}

	err := db.conn.QueryRowContext(ctx, query,
		t.UserID, t.Symbol, t.Side, t.Quantity, t.Price, t.PriceCurrency,
		t.Fee, feeCurrency, t.TradeDate, now,
	).Scan(&t.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	t.CreatedAt = now
	return nil
}

// GetTransaction retrieves one ledger entry owned by a user
func (db *DB) GetTransaction(ctx context.Context, userID string, id int) (*models.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, side, quantity, price, price_currency,
		       fee, fee_currency, trade_date, created_at
		FROM transactions
		WHERE id = $1 AND user_id = $2
	`
	var t models.Transaction
	var feeCurrency sql.NullString

	err := db.conn.QueryRowContext(ctx, query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.PriceCurrency,
		&t.Fee, &feeCurrency, &t.TradeDate, &t.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if feeCurrency.Valid {
		t.FeeCurrency = feeCurrency.String
	}
	return &t, nil
}

// ListTransactions retrieves a user's full ledger. No ordering is promised
// to callers; the valuation engine groups by date itself.
func (db *DB) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, symbol, side, quantity, price, price_currency,
		       fee, fee_currency, trade_date, created_at
		FROM transactions
		WHERE user_id = $1
	`
	rows, err := db.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		var feeCurrency sql.NullString

		err := rows.Scan(
			&t.ID, &t.UserID, &t.Symbol, &t.Side, &t.Quantity, &t.Price, &t.PriceCurrency,
			&t.Fee, &feeCurrency, &t.TradeDate, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}

		if feeCurrency.Valid {
			t.FeeCurrency = feeCurrency.String
		}
		txns = append(txns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// UpdateTransaction rewrites a ledger entry owned by a user
func (db *DB) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	query := `
		UPDATE transactions SET
			symbol = $1, side = $2, quantity = $3, price = $4,
			price_currency = $5, fee = $6, fee_currency = $7, trade_date = $8
		WHERE id = $9 AND user_id = $10
	`
	var feeCurrency interface{}
	if t.FeeCurrency != "" {
		feeCurrency = t.FeeCurrency
	}

	result, err := db.conn.ExecContext(ctx, query,
		t.Symbol, t.Side, t.Quantity, t.Price, t.PriceCurrency,
		t.Fee, feeCurrency, t.TradeDate, t.ID, t.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", t.ID, ErrNotFound)
	}
	return nil
}

// DeleteTransaction removes a ledger entry owned by a user
func (db *DB) DeleteTransaction(ctx context.Context, userID string, id int) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	result, err := db.conn.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d: %w", id, ErrNotFound)
	}
	return nil
}
