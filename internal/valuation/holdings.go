package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio-service/internal/models"
)

// ReconstructHoldings replays a user's full ledger into net per-symbol
// quantities and cost bases in the target currency. Replay order does not
// matter: only sums are accumulated. A buy adds trade value plus fee to the
// cost basis; a sell subtracts the net proceeds (trade value minus fee).
// Symbols whose net quantity is not positive are dropped; short positions
// are not modeled.
func ReconstructHoldings(txns []models.Transaction, target string, conv *Converter) []models.Holding {
	quantities := make(map[string]decimal.Decimal)
	costs := make(map[string]decimal.Decimal)

	for _, t := range txns {
		value := conv.Convert(t.TradeValue(), t.PriceCurrency, target)
		fee := convertFee(&t, target, conv)

		if t.Side == models.SideSell {
			quantities[t.Symbol] = quantities[t.Symbol].Sub(t.Quantity)
			costs[t.Symbol] = costs[t.Symbol].Sub(value.Sub(fee))
		} else {
			quantities[t.Symbol] = quantities[t.Symbol].Add(t.Quantity)
			costs[t.Symbol] = costs[t.Symbol].Add(value.Add(fee))
		}
	}

	holdings := make([]models.Holding, 0, len(quantities))
	for symbol, qty := range quantities {
		if !qty.IsPositive() {
			continue
		}
		holdings = append(holdings, models.Holding{
			Symbol:            symbol,
			Quantity:          qty,
			TotalCostInTarget: costs[symbol],
		})
	}

	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings
}

// convertFee converts a transaction's fee into the target currency. The fee
// currency may differ from the price currency; when unset it defaults to
// the price currency.
func convertFee(t *models.Transaction, target string, conv *Converter) decimal.Decimal {
	if t.Fee.IsZero() {
		return decimal.Zero
	}
	feeCurrency := t.FeeCurrency
	if feeCurrency == "" {
		feeCurrency = t.PriceCurrency
	}
	return conv.Convert(t.Fee, feeCurrency, target)
}
