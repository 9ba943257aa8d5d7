package bank

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// SendPayment moves amount of currency from the session's account to the
// recipient's stored account.
func (b *Bank) SendPayment(ctx context.Context, sid, recipient string, amount decimal.NullDecimal, currency string) (Event, error) {
	recipient = strings.TrimSpace(recipient)
	currency = strings.TrimSpace(currency)
	return b.apply(ctx, EventPaymentSent, func() (Event, error) {
		s, err := b.session(sid)
		if err != nil {
			return Event{}, err
		}
		if recipient == "" {
			return Event{}, invalid("Choose a recipient")
		}
		if recipient == s.Username {
			return Event{}, invalid("Cannot send a payment to yourself")
		}
		to, err := b.accounts.Get(recipient)
		if err != nil {
			return Event{}, notFound("Recipient not found")
		}
		if currency == "" {
			return Event{}, invalid("Choose a currency")
		}
		if !amount.Valid || !amount.Decimal.IsPositive() {
			return Event{}, invalid("Enter a valid amount")
		}
		value := amount.Decimal
		if s.Balances.Get(currency).LessThan(value) {
			return Event{}, insufficient(fmt.Sprintf("Not enough %s", currency))
		}

		s.Balances[currency] = s.Balances.Get(currency).Sub(value)
		if err := b.commit(s); err != nil {
			return Event{}, err
		}
		to.Balances[currency] = to.Balances.Get(currency).Add(value)
		if err := b.put(to); err != nil {
			return Event{}, err
		}
		return Event{
			SessionID: sid,
			Actor:     s.Username,
			Subject:   recipient,
			Currency:  currency,
			Amount:    value,
			Notice:    fmt.Sprintf("Sent %s %s to %s", value.StringFixed(2), currency, recipient),
		}, nil
	})
}
