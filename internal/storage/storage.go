package storage

import (
	"errors"

	"github.com/hongminglow/bunny-bank/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// AccountStore holds every account keyed by username. Implementations hand
// out and take in deep copies; callers never share maps with the store.
type AccountStore interface {
	Create(account models.Account) error
	Get(username string) (models.Account, error)
	Put(account models.Account) error
	// List returns accounts in creation order.
	List() []models.Account
}

// CurrencyRegistry holds currency entries keyed by code.
type CurrencyRegistry interface {
	Get(code string) (models.Currency, error)
	Put(currency models.Currency)
	// List returns entries in registration order.
	List() []models.Currency
}

// PriceTable holds administrator-set asset prices.
type PriceTable interface {
	Price(asset string) (decimal.Decimal, bool)
	SetPrice(asset string, price decimal.Decimal)
	// Assets returns priced asset names in sorted order.
	Assets() []string
	// Snapshot returns a copy of every price entry.
	Snapshot() map[string]decimal.Decimal
}
