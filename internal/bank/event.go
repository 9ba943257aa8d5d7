package bank

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind names a completed operation.
type EventKind string

const (
	EventLogin          EventKind = "login"
	EventLogout         EventKind = "logout"
	EventAssetCreated   EventKind = "asset_created"
	EventAssetBought    EventKind = "asset_bought"
	EventAssetSold      EventKind = "asset_sold"
	EventPaymentSent    EventKind = "payment_sent"
	EventAccountCreated EventKind = "account_created"
	EventRateSet        EventKind = "rate_set"
	EventBalanceSet     EventKind = "balance_set"
	EventPriceSet       EventKind = "price_set"
	EventCurrencyAdded  EventKind = "currency_added"
	EventCurrencyEdited EventKind = "currency_edited"
)

// Event records one successful operation. Fields that do not apply to the
// kind are left zero.
type Event struct {
	Kind      EventKind       `json:"kind"`
	At        time.Time       `json:"at"`
	SessionID string          `json:"-"`
	Actor     string          `json:"actor"`
	Subject   string          `json:"subject,omitempty"`
	Asset     string          `json:"asset,omitempty"`
	Currency  string          `json:"currency,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Notice    string          `json:"notice"`
}

// Listener receives events after the operation has been applied.
type Listener interface {
	Record(ctx context.Context, e Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(ctx context.Context, e Event)

// Record implements Listener.
func (f ListenerFunc) Record(ctx context.Context, e Event) { f(ctx, e) }
