package valuation

// currencySource supplies a symbol's valuation currency, or "" when it has
// no answer.
type currencySource func(symbol string) string

// resolveNativeCurrency walks an ordered list of sources and returns the
// first non-empty answer. The precedence for valuation is: the symbol's
// registered trading currency, then the currency of the symbol's most
// recent transaction, then the configured default.
func resolveNativeCurrency(symbol string, sources ...currencySource) string {
	for _, source := range sources {
		if c := source(symbol); c != "" {
			return c
		}
	}
	return ""
}
