package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction side constants
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Transaction represents one ledger entry: a buy or sell of a security,
// priced in its own currency. The valuation engine only ever reads these.
type Transaction struct {
	ID            int             `json:"id"`
	UserID        string          `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Side          string          `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	PriceCurrency string          `json:"price_currency"`
	Fee           decimal.Decimal `json:"fee"`
	FeeCurrency   string          `json:"fee_currency,omitempty"`
	TradeDate     time.Time       `json:"trade_date"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TradeValue returns quantity * price in the transaction's native currency.
func (t *Transaction) TradeValue() decimal.Decimal {
	return t.Quantity.Mul(t.Price)
}

// TransactionEvent represents a Kafka event for ledger changes.
type TransactionEvent struct {
	EventType   string       `json:"event_type"`
	UserID      string       `json:"user_id"`
	Transaction *Transaction `json:"transaction,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}
