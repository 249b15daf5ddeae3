package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyPlaces is the number of decimal places money is quoted and
// rounded to.
const CurrencyPlaces = 2

// RoundCurrency rounds d half away from zero to CurrencyPlaces.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// ValidateAmount checks that d is non-negative and carries at most
// CurrencyPlaces decimal places.
func ValidateAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("monetary values must be >= 0")
	}
	if !d.Equal(d.Truncate(CurrencyPlaces)) {
		return fmt.Errorf("monetary values must have at most %d decimal places", CurrencyPlaces)
	}
	return nil
}

// FormatCurrency renders d with two decimals and thousands separators,
// e.g. 1234567.891 → "1,234,567.89".
func FormatCurrency(d decimal.Decimal) string {
	s := RoundCurrency(d).StringFixed(CurrencyPlaces)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
