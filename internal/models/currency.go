package models

// Supported currency codes. All monetary computation is parameterized by a
// single target currency chosen per request; anything outside this set is
// rejected before computation begins.
const (
	CurrencyEUR = "EUR"
	CurrencyUSD = "USD"
	CurrencyGBP = "GBP"
	CurrencyHKD = "HKD"
	CurrencyCHF = "CHF"
	CurrencyRUB = "RUB"
)

// SupportedCurrencies lists every currency the service can value in.
var SupportedCurrencies = []string{
	CurrencyEUR,
	CurrencyUSD,
	CurrencyGBP,
	CurrencyHKD,
	CurrencyCHF,
	CurrencyRUB,
}

// IsSupportedCurrency reports whether code is a member of the closed
// currency set.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
