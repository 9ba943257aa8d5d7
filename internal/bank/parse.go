package bank

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount reads a user-typed number. Blank or non-numeric input yields
// an invalid NullDecimal, which operations reject as a validation error.
func ParseAmount(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
