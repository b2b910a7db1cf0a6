// Package format renders decimal money values for display-oriented consumers.
package format

import (
	"strings"

	"github.com/iwvelando/loan-engine/pkg/constants"
	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "$",
}

// Symbol returns the display symbol for an ISO currency code, falling back to
// the code itself followed by a space for currencies without a known symbol.
func Symbol(code string) string {
	upper := strings.ToUpper(strings.TrimSpace(code))
	if upper == "" {
		upper = constants.DefaultCurrency
	}
	if symbol, ok := symbols[upper]; ok {
		return symbol
	}
	return upper + " "
}

// Currency returns a currency string with the symbol and thousands separators (e.g., "-£1,234.56").
func Currency(amount decimal.Decimal, code string) string {
	symbol := Symbol(code)
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		return "-" + symbol + formatted
	}
	return symbol + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(amount.Abs())
}

// Percent renders a percentage with two decimals (e.g., "62.50%").
func Percent(value decimal.Decimal) string {
	return value.StringFixed(constants.CurrencyPlaces) + "%"
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.CurrencyPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
