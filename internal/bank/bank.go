package bank

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/models"
	"github.com/hongminglow/bunny-bank/internal/storage"
	"github.com/hongminglow/bunny-bank/internal/storage/memory"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options carries the collaborators of a Bank. Zero fields get in-memory
// stores, bcrypt credentials and a no-op logger.
type Options struct {
	Accounts   storage.AccountStore
	Currencies storage.CurrencyRegistry
	Prices     storage.PriceTable
	Hasher     auth.Hasher
	Logger     *zap.Logger
	Listeners  []Listener

	// Now and NewID are overridable for tests.
	Now   func() time.Time
	NewID func() string
}

// Bank owns the account store, currency registry, price table and the live
// sessions. All operations are serialized by a single lock, so each one
// runs to completion before the next starts.
type Bank struct {
	mu       sync.Mutex
	sessions map[string]*Session

	accounts   storage.AccountStore
	currencies storage.CurrencyRegistry
	prices     storage.PriceTable
	hasher     auth.Hasher
	logger     *zap.Logger

	listenersMu sync.RWMutex
	listeners   []Listener

	base         string
	admin        string
	defaultPrice decimal.Decimal
	creationFee  decimal.Decimal

	now   func() time.Time
	newID func() string
}

// New builds a bank and loads the seed into its stores.
func New(seed Seed, opts Options) (*Bank, error) {
	if err := seed.validate(); err != nil {
		return nil, err
	}
	b := &Bank{
		sessions:     make(map[string]*Session),
		accounts:     opts.Accounts,
		currencies:   opts.Currencies,
		prices:       opts.Prices,
		hasher:       opts.Hasher,
		logger:       opts.Logger,
		listeners:    slices.Clone(opts.Listeners),
		base:         seed.Base,
		admin:        seed.Admin,
		defaultPrice: seed.DefaultPrice,
		creationFee:  seed.CreationFee,
		now:          opts.Now,
		newID:        opts.NewID,
	}
	if b.accounts == nil {
		b.accounts = memory.NewAccounts()
	}
	if b.currencies == nil {
		b.currencies = memory.NewCurrencies()
	}
	if b.prices == nil {
		b.prices = memory.NewPrices()
	}
	if b.hasher == nil {
		b.hasher = auth.Bcrypt{}
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.newID == nil {
		b.newID = uuid.NewString
	}
	if err := b.bootstrap(seed); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bank) bootstrap(seed Seed) error {
	for _, c := range seed.Currencies {
		b.currencies.Put(models.Currency{
			Code:       c.Code,
			Rate:       c.Rate,
			ShortLabel: c.Label,
			Link:       linkOrPlaceholder(c.Link),
		})
	}
	for _, a := range seed.Accounts {
		cred, err := b.hasher.Hash(a.Password)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", a.Username, err)
		}
		acc := models.Account{
			Username:   a.Username,
			Credential: cred,
			Balances:   models.Amounts(a.Balances).Clone(),
			Holdings:   models.Amounts(a.Holdings).Clone(),
		}
		for _, c := range b.currencies.List() {
			if _, ok := acc.Balances[c.Code]; !ok {
				acc.Balances[c.Code] = decimal.Zero
			}
		}
		if err := b.accounts.Create(acc); err != nil {
			return fmt.Errorf("seed account %s: %w", a.Username, err)
		}
	}
	b.logger.Info("bank bootstrapped",
		zap.String("base", b.base),
		zap.Int("accounts", len(seed.Accounts)),
		zap.Int("currencies", len(seed.Currencies)),
	)
	return nil
}

// Subscribe registers a listener for future events.
func (b *Bank) Subscribe(l Listener) {
	b.listenersMu.Lock()
	defer b.listenersMu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Base returns the base currency code.
func (b *Bank) Base() string { return b.base }

// State is a read-only copy of the shared stores.
type State struct {
	Base         string
	Admin        string
	DefaultPrice decimal.Decimal
	CreationFee  decimal.Decimal
	Accounts     []models.Account
	Currencies   []models.Currency
	Prices       map[string]decimal.Decimal
}

// PriceOf returns the explicit price of asset or the default price.
func (s State) PriceOf(asset string) decimal.Decimal {
	if p, ok := s.Prices[asset]; ok {
		return p
	}
	return s.DefaultPrice
}

// Assets returns the sorted union of asset names held by any account.
func (s State) Assets() []string {
	return heldAssets(s.Accounts)
}

// Currency returns the registry entry for code.
func (s State) Currency(code string) (models.Currency, bool) {
	for _, c := range s.Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return models.Currency{}, false
}

// Snapshot copies the shared state and, when sid is not empty, the session
// it names.
func (b *Bank) Snapshot(sid string) (State, *Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var sess *Session
	if sid != "" {
		s, ok := b.sessions[sid]
		if !ok {
			return State{}, nil, ErrNoSession
		}
		sess = s.clone()
	}
	accounts := b.accounts.List()
	for i := range accounts {
		accounts[i].Credential = nil
	}
	return State{
		Base:         b.base,
		Admin:        b.admin,
		DefaultPrice: b.defaultPrice,
		CreationFee:  b.creationFee,
		Accounts:     accounts,
		Currencies:   b.currencies.List(),
		Prices:       b.prices.Snapshot(),
	}, sess, nil
}

// Account returns a copy of a stored account without its credential.
func (b *Bank) Account(username string) (models.Account, error) {
	acc, err := b.accounts.Get(username)
	if err != nil {
		return models.Account{}, notFound("User not found")
	}
	acc.Credential = nil
	return acc, nil
}

// apply runs fn under the state lock, then stamps and publishes its event.
func (b *Bank) apply(ctx context.Context, kind EventKind, fn func() (Event, error)) (Event, error) {
	b.mu.Lock()
	e, err := fn()
	b.mu.Unlock()
	if err != nil {
		b.logger.Debug("operation rejected", zap.String("op", string(kind)), zap.Error(err))
		return Event{}, err
	}
	e.Kind = kind
	e.At = b.now()

	fields := []zap.Field{zap.String("op", string(kind)), zap.String("actor", e.Actor), zap.String("notice", e.Notice)}
	switch kind {
	case EventAccountCreated, EventCurrencyAdded:
		b.logger.Info("operation applied", fields...)
	default:
		b.logger.Debug("operation applied", fields...)
	}

	b.listenersMu.RLock()
	listeners := slices.Clone(b.listeners)
	b.listenersMu.RUnlock()
	for _, l := range listeners {
		l.Record(ctx, e)
	}
	return e, nil
}

func (b *Bank) priceOf(asset string) decimal.Decimal {
	if p, ok := b.prices.Price(asset); ok {
		return p
	}
	return b.defaultPrice
}

// knownAssets is the price table plus every asset any account holds.
func (b *Bank) knownAssets() []string {
	names := append(b.prices.Assets(), heldAssets(b.accounts.List())...)
	slices.Sort(names)
	return slices.Compact(names)
}

func (b *Bank) isKnownAsset(name string) bool {
	return slices.Contains(b.knownAssets(), name)
}

func heldAssets(accounts []models.Account) []string {
	var names []string
	for _, a := range accounts {
		for name := range a.Holdings {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return slices.Compact(names)
}

func linkOrPlaceholder(link string) string {
	if link == "" {
		return models.PlaceholderLink
	}
	return link
}
