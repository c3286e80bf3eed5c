package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/foliotrack/folio-service/internal/models"
)

// ComposeSnapshot combines reconstructed holdings with a single latest close
// per symbol into the current valuation view: per-symbol value, average
// cost, and weight of the total, sorted by value descending. Symbols whose
// value is not positive (no price known, or zero close) are dropped.
func ComposeSnapshot(
	holdings []models.Holding,
	latest map[string]models.PricePoint,
	target string,
	conv *Converter,
	nativeCurrency func(symbol string) string,
) models.PortfolioSnapshot {
	snapshot := models.PortfolioSnapshot{
		Currency:   target,
		Items:      []models.SnapshotItem{},
		TotalValue: decimal.Zero,
	}

	for _, h := range holdings {
		point, ok := latest[h.Symbol]
		if !ok {
			continue
		}
		price := conv.Convert(point.Close, nativeCurrency(h.Symbol), target)
		value := h.Quantity.Mul(price)
		if !value.IsPositive() {
			continue
		}
		snapshot.Items = append(snapshot.Items, models.SnapshotItem{
			Symbol:   h.Symbol,
			Quantity: h.Quantity,
			AvgCost:  h.TotalCostInTarget.Div(h.Quantity),
			Price:    price,
			Value:    value,
		})
		snapshot.TotalValue = snapshot.TotalValue.Add(value)
	}

	if snapshot.TotalValue.IsPositive() {
		for i := range snapshot.Items {
			snapshot.Items[i].Weight = snapshot.Items[i].Value.Div(snapshot.TotalValue)
		}
	}

	sort.Slice(snapshot.Items, func(i, j int) bool {
		return snapshot.Items[i].Value.GreaterThan(snapshot.Items[j].Value)
	})
	return snapshot
}
