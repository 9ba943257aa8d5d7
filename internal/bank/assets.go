package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateAsset registers a new asset. Non-admin creators pay the creation fee
// in the base currency. Every account receives a zero holding of the asset.
func (b *Bank) CreateAsset(ctx context.Context, sid, name string) (Event, error) {
	name = strings.TrimSpace(name)
	return b.apply(ctx, EventAssetCreated, func() (Event, error) {
		s, err := b.session(sid)
		if err != nil {
			return Event{}, err
		}
		if name == "" {
			return Event{}, invalid("Enter a name for the crypto")
		}
		fee := decimal.Zero
		if !s.IsAdmin {
			fee = b.creationFee
			if s.Balances.Get(b.base).LessThan(fee) {
				return Event{}, insufficient(fmt.Sprintf("Not enough %s to create crypto (cost %s %s)", b.base, fee, b.base))
			}
		}

		s.Balances[b.base] = s.Balances.Get(b.base).Sub(fee)
		if _, ok := s.Holdings[name]; !ok {
			s.Holdings[name] = decimal.Zero
		}
		if err := b.commit(s); err != nil {
			return Event{}, err
		}
		for _, acc := range b.accounts.List() {
			if _, ok := acc.Holdings[name]; ok {
				continue
			}
			acc.Holdings[name] = decimal.Zero
			if err := b.put(acc); err != nil {
				return Event{}, err
			}
		}
		if p, ok := b.prices.Price(name); !ok || p.IsZero() {
			b.prices.SetPrice(name, b.defaultPrice)
		}

		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Asset:     name,
			Currency:  b.base,
			Amount:    fee,
			Notice:    fmt.Sprintf("Created crypto %q. Price default %s %s", name, b.priceOf(name), b.base),
		}, nil
	})
}

// BuyAsset debits price×quantity from the base balance and credits the holding.
func (b *Bank) BuyAsset(ctx context.Context, sid, asset string, quantity decimal.NullDecimal) (Event, error) {
	asset = strings.TrimSpace(asset)
	return b.apply(ctx, EventAssetBought, func() (Event, error) {
		s, qty, err := b.tradeInput(sid, asset, quantity)
		if err != nil {
			return Event{}, err
		}
		cost := b.priceOf(asset).Mul(qty)
		if s.Balances.Get(b.base).LessThan(cost) {
			return Event{}, insufficient(fmt.Sprintf("Not enough %s", b.base))
		}

		s.Balances[b.base] = s.Balances.Get(b.base).Sub(cost)
		s.Holdings[asset] = s.Holdings.Get(asset).Add(qty)
		if err := b.commit(s); err != nil {
			return Event{}, err
		}
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Asset:     asset,
			Currency:  b.base,
			Amount:    qty,
			Notice:    fmt.Sprintf("Bought %s %s for %s %s", qty, asset, cost.StringFixed(2), b.base),
		}, nil
	})
}

// SellAsset credits price×quantity to the base balance and debits the holding.
func (b *Bank) SellAsset(ctx context.Context, sid, asset string, quantity decimal.NullDecimal) (Event, error) {
	asset = strings.TrimSpace(asset)
	return b.apply(ctx, EventAssetSold, func() (Event, error) {
		s, qty, err := b.tradeInput(sid, asset, quantity)
		if err != nil {
			return Event{}, err
		}
		if s.Holdings.Get(asset).LessThan(qty) {
			return Event{}, insufficient(fmt.Sprintf("Not enough %s to sell", asset))
		}
		gain := b.priceOf(asset).Mul(qty)

		s.Holdings[asset] = s.Holdings.Get(asset).Sub(qty)
		s.Balances[b.base] = s.Balances.Get(b.base).Add(gain)
		if err := b.commit(s); err != nil {
			return Event{}, err
		}
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Asset:     asset,
			Currency:  b.base,
			Amount:    qty,
			Notice:    fmt.Sprintf("Sold %s %s for %s %s", qty, asset, gain.StringFixed(2), b.base),
		}, nil
	})
}

func (b *Bank) tradeInput(sid, asset string, quantity decimal.NullDecimal) (*Session, decimal.Decimal, error) {
	s, err := b.session(sid)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if asset == "" || !quantity.Valid || !quantity.Decimal.IsPositive() {
		return nil, decimal.Zero, invalid("Enter valid crypto and amount")
	}
	if !b.isKnownAsset(asset) {
		return nil, decimal.Zero, notFound(fmt.Sprintf("Unknown crypto %s", asset))
	}
	return s, quantity.Decimal, nil
}
