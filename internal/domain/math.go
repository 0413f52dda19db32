package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SafeParse parses a string into a decimal, returning zero for invalid or empty input.
func SafeParse(value string) decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Amount is a decimal read from upstream JSON that may be a number, a numeric string or null.
// Unparseable values decode as zero.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = SafeParse(s)
	return nil
}

// Float returns the amount as float64 for JSON responses.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
