package models

import (
	"maps"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/shopspring/decimal"
)

// Amounts maps a currency code or asset name to a quantity.
type Amounts map[string]decimal.Decimal

// Clone returns a deep copy; a nil receiver yields an empty map.
func (a Amounts) Clone() Amounts {
	out := make(Amounts, len(a))
	maps.Copy(out, a)
	return out
}

// Get returns the amount for key, zero when absent.
func (a Amounts) Get(key string) decimal.Decimal {
	return a[key]
}

// Account is the stored identity record of a bank customer.
type Account struct {
	Username   string          `json:"username"`
	Credential auth.Credential `json:"-"`
	Balances   Amounts         `json:"balances"`
	Holdings   Amounts         `json:"holdings"`
}

// Clone returns a copy that shares no maps with a.
func (a Account) Clone() Account {
	a.Balances = a.Balances.Clone()
	a.Holdings = a.Holdings.Clone()
	return a
}
