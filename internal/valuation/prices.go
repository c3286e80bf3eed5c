package valuation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio-service/internal/models"
)

const dayFormat = "2006-01-02"

// DayKey normalizes a timestamp to its calendar-day key. All series and
// chain lookups are day-granular.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayFormat)
}

// Day truncates a timestamp to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DailyPriceSeries maps symbol -> calendar day -> close. Gaps in the raw
// data are forward-filled: each day carries the most recent known close at
// or before it. Days before a symbol's first known close are absent, and a
// failed lookup means "no valuation possible", never an error.
type DailyPriceSeries map[string]map[string]decimal.Decimal

// CloseOn returns the forward-filled close for a symbol on a day.
func (s DailyPriceSeries) CloseOn(symbol string, day time.Time) (decimal.Decimal, bool) {
	closes, ok := s[symbol]
	if !ok {
		return decimal.Decimal{}, false
	}
	c, ok := closes[DayKey(day)]
	return c, ok
}

// BuildDailySeries builds the forward-filled series for every symbol in the
// raw points over [from, to]. Raw points may include a seed window before
// from so the first requested day already carries a price: the latest point
// strictly before from seeds the fill.
func BuildDailySeries(points []models.PricePoint, from, to time.Time) DailyPriceSeries {
	from, to = Day(from), Day(to)

	bySymbol := make(map[string][]models.PricePoint)
	for _, p := range points {
		bySymbol[p.Symbol] = append(bySymbol[p.Symbol], p)
	}

	series := make(DailyPriceSeries, len(bySymbol))
	for symbol, raw := range bySymbol {
		sort.Slice(raw, func(i, j int) bool {
			return raw[i].Date.Before(raw[j].Date)
		})

		closes := make(map[string]decimal.Decimal)
		var lastKnown decimal.Decimal
		haveLast := false

		// Seed with the latest raw point strictly before the window.
		idx := 0
		for idx < len(raw) && Day(raw[idx].Date).Before(from) {
			lastKnown = raw[idx].Close
			haveLast = true
			idx++
		}

		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			for idx < len(raw) && Day(raw[idx].Date).Equal(day) {
				lastKnown = raw[idx].Close
				haveLast = true
				idx++
			}
			if haveLast {
				closes[DayKey(day)] = lastKnown
			}
		}
		series[symbol] = closes
	}
	return series
}
