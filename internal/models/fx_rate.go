package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FxRate is one stored directed currency pair, e.g. USD -> EUR.
type FxRate struct {
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	Rate          decimal.Decimal `json:"rate"`
	FetchedAt     time.Time       `json:"fetched_at"`
}

// FxRateEvent represents a Kafka event carrying a freshly fetched rate.
type FxRateEvent struct {
	EventType     string          `json:"event_type"`
	BaseCurrency  string          `json:"base_currency"`
	QuoteCurrency string          `json:"quote_currency"`
	Rate          decimal.Decimal `json:"rate"`
	FetchedAt     time.Time       `json:"fetched_at"`
}
