package models

import "github.com/shopspring/decimal"

// PlaceholderLink is used when a currency has no reference link.
const PlaceholderLink = "#"

// Currency is a registry entry. Rate is units of this currency per one
// base-currency unit.
type Currency struct {
	Code       string          `json:"code"`
	Rate       decimal.Decimal `json:"rate"`
	ShortLabel string          `json:"shortLabel,omitempty"`
	Link       string          `json:"link"`
}

// Label returns the short label, or the code when none was set.
func (c Currency) Label() string {
	if c.ShortLabel == "" {
		return c.Code
	}
	return c.ShortLabel
}
