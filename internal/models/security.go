package models

import "time"

// Security represents symbol metadata kept by the watchlist back-office.
// TradingCurrency, when set, is the preferred native currency used when
// valuing the symbol.
type Security struct {
	Symbol          string    `json:"symbol"`
	Name            string    `json:"name,omitempty"`
	Exchange        string    `json:"exchange,omitempty"`
	TradingCurrency string    `json:"trading_currency,omitempty"`
	Watchlisted     bool      `json:"watchlisted"`
	AddedAt         time.Time `json:"added_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
