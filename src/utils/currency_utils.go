package utils

import (
	"sort"
	"strings"
)

// Supported reporting currencies. The set is closed on purpose: aggregates
// are only ever summed within one currency and there is no FX conversion,
// so an unknown code would silently produce nonsense totals.
var supportedCurrencies = map[string]string{
	"PHP": "Philippine Peso",
	"USD": "US Dollar",
	"EUR": "Euro",
	"GBP": "Pound Sterling",
	"JPY": "Japanese Yen",
	"AUD": "Australian Dollar",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"SGD": "Singapore Dollar",
}

// NormalizeCurrency upper-cases and trims a currency code.
func NormalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSupportedCurrency reports whether code names a known currency.
func IsSupportedCurrency(code string) bool {
	_, ok := supportedCurrencies[NormalizeCurrency(code)]
	return ok
}

// SupportedCurrencyCodes returns the known currency codes in sorted order.
func SupportedCurrencyCodes() []string {
	codes := make([]string, 0, len(supportedCurrencies))
	for code := range supportedCurrencies {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
