package valuation

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/foliotrack/folio-service/internal/models"
)

// FxMatrix is a complete any-to-any conversion table derived from the stored
// bilateral rates. It is built fresh per request and never mutated after
// construction. An absent pair is a valid matrix state, handled at
// conversion time.
type FxMatrix map[string]map[string]decimal.Decimal

// BuildFxMatrix builds the conversion table from the full set of stored
// rates. Every supported currency gets an identity entry; each stored rate
// sets its direct entry and, unless a stored reverse already claimed it, the
// reciprocal.
func BuildFxMatrix(rates []models.FxRate) FxMatrix {
	m := make(FxMatrix, len(models.SupportedCurrencies))
	ensure := func(code string) {
		if _, ok := m[code]; !ok {
			m[code] = map[string]decimal.Decimal{code: decimal.NewFromInt(1)}
		}
	}
	for _, c := range models.SupportedCurrencies {
		ensure(c)
	}

	one := decimal.NewFromInt(1)
	for _, r := range rates {
		if !r.Rate.IsPositive() {
			continue
		}
		ensure(r.BaseCurrency)
		ensure(r.QuoteCurrency)
		m[r.BaseCurrency][r.QuoteCurrency] = r.Rate
		if _, ok := m[r.QuoteCurrency][r.BaseCurrency]; !ok {
			m[r.QuoteCurrency][r.BaseCurrency] = one.Div(r.Rate)
		}
	}
	return m
}

// Rate returns the stored or derived rate for a pair, if present.
func (m FxMatrix) Rate(from, to string) (decimal.Decimal, bool) {
	row, ok := m[from]
	if !ok {
		return decimal.Decimal{}, false
	}
	r, ok := row[to]
	return r, ok
}

// Converter converts amounts between currencies using a request-scoped
// matrix. Conversion is total: identity pairs are exact, missing direct
// pairs fall back to triangulation through the pivot currency, and pairs
// with no path at all return the amount unchanged. The passthrough is a
// known precision risk, so it is logged once per pair per converter.
type Converter struct {
	matrix FxMatrix
	pivot  string
	logger logrus.FieldLogger
	warned map[string]struct{}
}

// NewConverter creates a converter over a built matrix. pivot is the
// triangulation currency (typically USD).
func NewConverter(matrix FxMatrix, pivot string, logger logrus.FieldLogger) *Converter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Converter{
		matrix: matrix,
		pivot:  pivot,
		logger: logger,
		warned: make(map[string]struct{}),
	}
}

// Convert converts amount from one currency to another. It never fails:
// when no direct or triangulated path exists the amount is returned
// unchanged.
func (c *Converter) Convert(amount decimal.Decimal, from, to string) decimal.Decimal {
	if from == to {
		return amount
	}
	if r, ok := c.matrix.Rate(from, to); ok {
		return amount.Mul(r)
	}
	leg1, ok1 := c.matrix.Rate(from, c.pivot)
	leg2, ok2 := c.matrix.Rate(c.pivot, to)
	if ok1 && ok2 {
		return amount.Mul(leg1).Mul(leg2)
	}
	c.warnMissingPair(from, to)
	return amount
}

func (c *Converter) warnMissingPair(from, to string) {
	key := from + "/" + to
	if _, seen := c.warned[key]; seen {
		return
	}
	c.warned[key] = struct{}{}
	c.logger.WithFields(logrus.Fields{
		"from": from,
		"to":   to,
	}).Warn("no FX path between currencies, amount passed through unconverted")
}
