package valuation

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio-service/internal/models"
)

// epsilon guards divisions by a previous NAV that is effectively zero.
const epsilon = 1e-8

// initialIndex is the value both return indices start at on inception day.
const initialIndex = 100.0

// BuildNavChain walks every calendar day from the user's inception date
// (earliest transaction) through the end of the range and emits one NavPoint
// per day: the portfolio NAV in the target currency, the day's external cash
// flow, and the chain-linked TWR and MWR indices. Each point depends only on
// the previous point, the day's transactions and that day's forward-filled
// prices.
func BuildNavChain(
	txns []models.Transaction,
	series DailyPriceSeries,
	target string,
	conv *Converter,
	nativeCurrency func(symbol string) string,
	through time.Time,
) []models.NavPoint {
	if len(txns) == 0 {
		return nil
	}

	inception := Day(txns[0].TradeDate)
	byDay := make(map[string][]models.Transaction)
	for _, t := range txns {
		day := Day(t.TradeDate)
		if day.Before(inception) {
			inception = day
		}
		byDay[DayKey(day)] = append(byDay[DayKey(day)], t)
	}
	through = Day(through)

	quantities := make(map[string]decimal.Decimal)
	var chain []models.NavPoint

	for day := inception; !day.After(through); day = day.AddDate(0, 0, 1) {
		flow := decimal.Zero
		for _, t := range byDay[DayKey(day)] {
			value := conv.Convert(t.TradeValue(), t.PriceCurrency, target)
			fee := convertFee(&t, target, conv)
			if t.Side == models.SideSell {
				quantities[t.Symbol] = quantities[t.Symbol].Sub(t.Quantity)
				flow = flow.Sub(value.Sub(fee))
			} else {
				quantities[t.Symbol] = quantities[t.Symbol].Add(t.Quantity)
				flow = flow.Add(value.Add(fee))
			}
		}

		nav := decimal.Zero
		for symbol, qty := range quantities {
			if !qty.IsPositive() {
				continue
			}
			close, ok := series.CloseOn(symbol, day)
			if !ok {
				// No price known yet: the symbol contributes nothing.
				continue
			}
			price := conv.Convert(close, nativeCurrency(symbol), target)
			nav = nav.Add(qty.Mul(price))
		}

		point := models.NavPoint{
			Date:         day,
			Nav:          nav,
			ExternalFlow: flow,
		}
		if len(chain) == 0 {
			point.TwrIndex = initialIndex
			point.MwrIndex = initialIndex
		} else {
			prev := chain[len(chain)-1]
			point.TwrIndex, point.MwrIndex = linkIndices(prev, nav, flow)
		}
		chain = append(chain, point)
	}
	return chain
}

// linkIndices chains one day onto the running TWR and MWR indices.
// TWR divides the day's gain by the previous NAV; MWR (Modified Dietz)
// divides by the previous NAV plus half the day's flow.
func linkIndices(prev models.NavPoint, nav, flow decimal.Decimal) (twr, mwr float64) {
	gain, _ := nav.Sub(prev.Nav).Sub(flow).Float64()
	prevNav, _ := prev.Nav.Float64()
	flowF, _ := flow.Float64()

	safePrev := prevNav
	if math.Abs(safePrev) <= epsilon {
		safePrev = 1
	}
	rTwr := gain / safePrev
	if math.IsNaN(rTwr) || math.IsInf(rTwr, 0) {
		rTwr = 0
	}

	rMwr := 0.0
	if denom := prevNav + 0.5*flowF; denom != 0 {
		rMwr = gain / denom
	}
	if math.IsNaN(rMwr) || math.IsInf(rMwr, 0) {
		rMwr = 0
	}

	return prev.TwrIndex * (1 + rTwr), prev.MwrIndex * (1 + rMwr)
}
