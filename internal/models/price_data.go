package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint represents one daily close for a symbol. The series is sparse:
// weekends, trading holidays and pre-ingestion gaps produce missing days.
type PricePoint struct {
	Symbol    string          `json:"symbol"`
	Date      time.Time       `json:"date"`
	Close     decimal.Decimal `json:"close"`
	CreatedAt time.Time       `json:"created_at"`
}

// PriceEvent represents a Kafka event carrying one ingested daily close.
type PriceEvent struct {
	EventType string          `json:"event_type"`
	Symbol    string          `json:"symbol"`
	Date      string          `json:"date"`
	Close     decimal.Decimal `json:"close"`
	Timestamp time.Time       `json:"timestamp"`
}
