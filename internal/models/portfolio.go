package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is the net result of replaying a user's ledger for one symbol:
// signed running quantity and a signed cost adjustment in the target
// currency. Cost basis uses a running net-adjustment model, not lot
// matching: a sell reduces cost by its net proceeds.
type Holding struct {
	Symbol            string          `json:"symbol"`
	Quantity          decimal.Decimal `json:"quantity"`
	TotalCostInTarget decimal.Decimal `json:"total_cost"`
}

// SnapshotItem is one row of the current valuation view.
type SnapshotItem struct {
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgCost  decimal.Decimal `json:"avg_cost"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
	Weight   decimal.Decimal `json:"weight"`
}

// PortfolioSnapshot is the current holdings view with per-symbol valuation
// and weights, in the requested target currency.
type PortfolioSnapshot struct {
	Currency   string          `json:"currency"`
	Items      []SnapshotItem  `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
	AsOf       time.Time       `json:"as_of"`
}

// NavPoint is one day of the inception-to-date chain: the portfolio net
// asset value, the day's external cash flow, and the two running return
// indices. The first point of a chain always carries both indices at 100.
type NavPoint struct {
	Date         time.Time       `json:"date"`
	Nav          decimal.Decimal `json:"nav"`
	ExternalFlow decimal.Decimal `json:"external_flow"`
	TwrIndex     float64         `json:"twr_index"`
	MwrIndex     float64         `json:"mwr_index"`
}

// PerformancePoint is one displayed day of a performance query, rebased so
// the first point of the requested window yields exactly 0.
type PerformancePoint struct {
	Date      time.Time       `json:"date"`
	NetAssets decimal.Decimal `json:"net_assets"`
	YieldTwr  float64         `json:"yield_twr"`
	YieldMwr  float64         `json:"yield_mwr"`
}

// PerformanceResult is the response of a performance query. The scalar
// totals are inception-to-date, not window-relative.
type PerformanceResult struct {
	Currency         string             `json:"currency"`
	Points           []PerformancePoint `json:"points"`
	TotalReturnTwr   float64            `json:"total_return_twr"`
	TotalReturnMwr   float64            `json:"total_return_mwr"`
	PrevDayReturnTwr float64            `json:"prev_day_return_twr"`
	PrevDayReturnMwr float64            `json:"prev_day_return_mwr"`
}
