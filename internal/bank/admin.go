package bank

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/models"
	"github.com/hongminglow/bunny-bank/internal/storage"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// CreateAccount opens a zeroed account holding every registered currency and
// every known asset. The secret is hashed only once the request has passed
// every check, and the checks run again under the lock before the insert.
func (b *Bank) CreateAccount(ctx context.Context, sid, username, secret string) (Event, error) {
	username = strings.TrimSpace(username)
	secret = strings.TrimSpace(secret)

	b.mu.Lock()
	_, err := b.checkNewAccount(sid, username, secret)
	b.mu.Unlock()
	if err == nil {
		var cred auth.Credential
		if cred, err = b.hasher.Hash(secret); err == nil {
			return b.apply(ctx, EventAccountCreated, func() (Event, error) {
				return b.createAccount(sid, username, cred)
			})
		}
		if errors.Is(err, auth.ErrSecretTooLong) {
			err = invalid("Password too long")
		} else {
			err = fmt.Errorf("create account: %w", err)
		}
	}
	return b.apply(ctx, EventAccountCreated, func() (Event, error) {
		return Event{}, err
	})
}

func (b *Bank) checkNewAccount(sid, username, secret string) (*Session, error) {
	s, err := b.adminSession(sid)
	if err != nil {
		return nil, err
	}
	if username == "" || secret == "" {
		return nil, invalid("Enter username and password")
	}
	if len(secret) > auth.MaxSecretBytes {
		return nil, invalid("Password too long")
	}
	if _, err := b.accounts.Get(username); err == nil {
		return nil, invalid("User already exists")
	}
	return s, nil
}

func (b *Bank) createAccount(sid, username string, cred auth.Credential) (Event, error) {
	s, err := b.adminSession(sid)
	if err != nil {
		return Event{}, err
	}
	if _, err := b.accounts.Get(username); err == nil {
		return Event{}, invalid("User already exists")
	}
	acc := models.Account{
		Username:   username,
		Credential: cred,
		Balances:   models.Amounts{},
		Holdings:   models.Amounts{},
	}
	for _, c := range b.currencies.List() {
		acc.Balances[c.Code] = decimal.Zero
	}
	for _, name := range b.knownAssets() {
		acc.Holdings[name] = decimal.Zero
	}
	if err := b.accounts.Create(acc); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return Event{}, invalid("User already exists")
		}
		return Event{}, fmt.Errorf("create account: %w", err)
	}
	return Event{
		SessionID: sid,
		Actor:     s.Username,
		Subject:   username,
		Notice:    fmt.Sprintf("Created %s", username),
	}, nil
}

// SetRate upserts a currency's exchange rate. Unknown codes are registered
// with a placeholder link.
func (b *Bank) SetRate(ctx context.Context, sid, code string, rate decimal.NullDecimal) (Event, error) {
	code = strings.TrimSpace(code)
	return b.apply(ctx, EventRateSet, func() (Event, error) {
		s, err := b.adminSession(sid)
		if err != nil {
			return Event{}, err
		}
		if code == "" || !rate.Valid {
			return Event{}, invalid("Enter valid currency and rate")
		}
		if err := b.checkBaseRate(code, rate.Decimal); err != nil {
			return Event{}, err
		}
		c, err := b.currencies.Get(code)
		if err != nil {
			c = models.Currency{Code: code, Link: models.PlaceholderLink}
		}
		c.Rate = rate.Decimal
		b.currencies.Put(c)
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Currency:  code,
			Amount:    rate.Decimal,
			Notice:    fmt.Sprintf("Set rate: 1 %s = %s %s", b.base, rate.Decimal, code),
		}, nil
	})
}

// SetBalance overwrites one balance of a stored account. A live session of
// that account sees the new value immediately.
func (b *Bank) SetBalance(ctx context.Context, sid, username, currency string, amount decimal.NullDecimal) (Event, error) {
	username = strings.TrimSpace(username)
	currency = strings.TrimSpace(currency)
	return b.apply(ctx, EventBalanceSet, func() (Event, error) {
		s, err := b.adminSession(sid)
		if err != nil {
			return Event{}, err
		}
		if username == "" || currency == "" || !amount.Valid {
			return Event{}, invalid("Enter all fields")
		}
		acc, err := b.accounts.Get(username)
		if err != nil {
			return Event{}, notFound("User not found")
		}
		acc.Balances[currency] = amount.Decimal
		if err := b.put(acc); err != nil {
			return Event{}, err
		}
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Subject:   username,
			Currency:  currency,
			Amount:    amount.Decimal,
			Notice:    fmt.Sprintf("Updated %s %s = %s", username, currency, amount.Decimal),
		}, nil
	})
}

// SetAssetPrice overwrites the unit price of an asset.
func (b *Bank) SetAssetPrice(ctx context.Context, sid, asset string, price decimal.NullDecimal) (Event, error) {
	asset = strings.TrimSpace(asset)
	return b.apply(ctx, EventPriceSet, func() (Event, error) {
		s, err := b.adminSession(sid)
		if err != nil {
			return Event{}, err
		}
		if asset == "" || !price.Valid {
			return Event{}, invalid("Enter crypto and price")
		}
		b.prices.SetPrice(asset, price.Decimal)
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Asset:     asset,
			Currency:  b.base,
			Amount:    price.Decimal,
			Notice:    fmt.Sprintf("Set %s price to %s %s", asset, price.Decimal, b.base),
		}, nil
	})
}

// AddCurrency registers a currency and back-fills a zero balance for it into
// every account that lacks one.
func (b *Bank) AddCurrency(ctx context.Context, sid, code, label string, rate decimal.NullDecimal, link string) (Event, error) {
	code = strings.TrimSpace(code)
	label = strings.TrimSpace(label)
	link = strings.TrimSpace(link)
	return b.apply(ctx, EventCurrencyAdded, func() (Event, error) {
		s, err := b.adminSession(sid)
		if err != nil {
			return Event{}, err
		}
		if code == "" || label == "" || !rate.Valid {
			return Event{}, invalid("Enter all fields")
		}
		if err := b.checkBaseRate(code, rate.Decimal); err != nil {
			return Event{}, err
		}
		b.currencies.Put(models.Currency{
			Code:       code,
			Rate:       rate.Decimal,
			ShortLabel: label,
			Link:       linkOrPlaceholder(link),
		})
		for _, acc := range b.accounts.List() {
			if _, ok := acc.Balances[code]; ok {
				continue
			}
			acc.Balances[code] = decimal.Zero
			if err := b.put(acc); err != nil {
				return Event{}, err
			}
		}
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Currency:  code,
			Amount:    rate.Decimal,
			Notice:    fmt.Sprintf("Added currency: %s (%s)", code, label),
		}, nil
	})
}

// EditCurrency overwrites the label, rate and link of a registered currency.
func (b *Bank) EditCurrency(ctx context.Context, sid, code, label string, rate decimal.NullDecimal, link string) (Event, error) {
	code = strings.TrimSpace(code)
	label = strings.TrimSpace(label)
	link = strings.TrimSpace(link)
	return b.apply(ctx, EventCurrencyEdited, func() (Event, error) {
		s, err := b.adminSession(sid)
		if err != nil {
			return Event{}, err
		}
		c, err := b.currencies.Get(code)
		if code == "" || err != nil {
			return Event{}, notFound("Currency not found")
		}
		if label == "" || !rate.Valid {
			return Event{}, invalid("Enter valid short code and rate")
		}
		if err := b.checkBaseRate(code, rate.Decimal); err != nil {
			return Event{}, err
		}
		c.ShortLabel = label
		c.Rate = rate.Decimal
		c.Link = linkOrPlaceholder(link)
		b.currencies.Put(c)
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Currency:  code,
			Amount:    rate.Decimal,
			Notice:    fmt.Sprintf("Updated currency: %s", code),
		}, nil
	})
}

func (b *Bank) checkBaseRate(code string, rate decimal.Decimal) error {
	if code == b.base && !rate.Equal(one) {
		return invalid(fmt.Sprintf("%s is the base currency; its rate stays 1", b.base))
	}
	return nil
}
