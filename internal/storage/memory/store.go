package memory

import (
	"maps"
	"slices"
	"sync"

	"github.com/hongminglow/bunny-bank/internal/models"
	"github.com/hongminglow/bunny-bank/internal/storage"
	"github.com/shopspring/decimal"
)

// Ensure the in-memory stores satisfy the storage interfaces at compile time.
var (
	_ storage.AccountStore     = (*Accounts)(nil)
	_ storage.CurrencyRegistry = (*Currencies)(nil)
	_ storage.PriceTable       = (*Prices)(nil)
)

// Accounts is an insertion-ordered account store.
type Accounts struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]models.Account
}

// NewAccounts returns an empty store.
func NewAccounts() *Accounts {
	return &Accounts{byKey: make(map[string]models.Account)}
}

// Create inserts a new account.
func (s *Accounts) Create(account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[account.Username]; ok {
		return storage.ErrAlreadyExists
	}
	s.order = append(s.order, account.Username)
	s.byKey[account.Username] = account.Clone()
	return nil
}

// Get fetches an account by username.
func (s *Accounts) Get(username string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.byKey[username]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return acc.Clone(), nil
}

// Put replaces an existing account.
func (s *Accounts) Put(account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[account.Username]; !ok {
		return storage.ErrNotFound
	}
	s.byKey[account.Username] = account.Clone()
	return nil
}

// List returns copies of every account in creation order.
func (s *Accounts) List() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Account, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.byKey[name].Clone())
	}
	return out
}

// Currencies is a registration-ordered currency registry.
type Currencies struct {
	mu    sync.RWMutex
	order []string
	byKey map[string]models.Currency
}

// NewCurrencies returns an empty registry.
func NewCurrencies() *Currencies {
	return &Currencies{byKey: make(map[string]models.Currency)}
}

// Get fetches a currency by code.
func (r *Currencies) Get(code string) (models.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byKey[code]
	if !ok {
		return models.Currency{}, storage.ErrNotFound
	}
	return c, nil
}

// Put upserts a currency, keeping its original position when it exists.
func (r *Currencies) Put(currency models.Currency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byKey[currency.Code]; !ok {
		r.order = append(r.order, currency.Code)
	}
	r.byKey[currency.Code] = currency
}

// List returns every currency in registration order.
func (r *Currencies) List() []models.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Currency, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.byKey[code])
	}
	return out
}

// Prices is the in-memory asset price table.
type Prices struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

// NewPrices returns an empty price table.
func NewPrices() *Prices {
	return &Prices{prices: make(map[string]decimal.Decimal)}
}

// Price returns the explicit price of asset, if any.
func (p *Prices) Price(asset string) (decimal.Decimal, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.prices[asset]
	return v, ok
}

// SetPrice overwrites the price of asset.
func (p *Prices) SetPrice(asset string, price decimal.Decimal) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[asset] = price
}

// Assets returns the priced asset names, sorted.
func (p *Prices) Assets() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.prices))
}

// Snapshot returns a copy of the table.
func (p *Prices) Snapshot() map[string]decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.prices)
}
