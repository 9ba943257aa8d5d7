package bank

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Record(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []EventKind
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

func newTestBank(t *testing.T) (*Bank, *recorder) {
	t.Helper()
	rec := &recorder{}
	n := 0
	b, err := New(DefaultSeed(), Options{
		Hasher:    auth.Plaintext{},
		Listeners: []Listener{rec},
		NewID: func() string {
			n++
			return fmt.Sprintf("sid-%d", n)
		},
	})
	require.NoError(t, err)
	return b, rec
}

func login(t *testing.T, b *Bank, user, pass string) string {
	t.Helper()
	e, err := b.Login(context.Background(), user, pass)
	require.NoError(t, err)
	require.NotEmpty(t, e.SessionID)
	return e.SessionID
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func num(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func assertDec(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func stored(t *testing.T, b *Bank, user string) (map[string]decimal.Decimal, map[string]decimal.Decimal) {
	t.Helper()
	acc, err := b.Account(user)
	require.NoError(t, err)
	return acc.Balances, acc.Holdings
}

func TestBootstrapSeed(t *testing.T) {
	b, _ := newTestBank(t)
	st, sess, err := b.Snapshot("")
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Equal(t, "CAD", st.Base)
	require.Len(t, st.Accounts, 2)
	assert.Equal(t, "admin", st.Accounts[0].Username)
	assert.Equal(t, "user1", st.Accounts[1].Username)
	assertDec(t, "1000", st.Accounts[0].Balances["CAD"])
	assertDec(t, "726.66", st.Accounts[0].Balances["USD"])
	assertDec(t, "500", st.Accounts[1].Balances["CAD"])
	assertDec(t, "363.33", st.Accounts[1].Balances["USD"])
	assert.Empty(t, st.Assets())
	assert.Nil(t, st.Accounts[0].Credential)

	require.Len(t, st.Currencies, 2)
	assertDec(t, "1", st.Currencies[0].Rate)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Canadian_dollar", st.Currencies[0].Link)
}

func TestLoginFailures(t *testing.T) {
	b, rec := newTestBank(t)
	ctx := context.Background()

	_, err := b.Login(ctx, "", "x")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Enter username and password")

	_, err = b.Login(ctx, "ghost", "x")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "User not found")

	_, err = b.Login(ctx, "user1", "wrong")
	assert.ErrorIs(t, err, ErrBadCredential)
	assert.ErrorIs(t, err, ErrAuthorization)

	assert.Empty(t, rec.kinds())
}

func TestLoginTrimsAndFlagsAdmin(t *testing.T) {
	b, _ := newTestBank(t)
	sid := login(t, b, "  admin ", " admin123 ")
	s, err := b.Session(sid)
	require.NoError(t, err)
	assert.True(t, s.IsAdmin)
	assert.Equal(t, "admin", s.Username)

	sid = login(t, b, "user1", "user123")
	s, err = b.Session(sid)
	require.NoError(t, err)
	assert.False(t, s.IsAdmin)
}

func TestLoginCopiesAccountWithoutAliasing(t *testing.T) {
	b, _ := newTestBank(t)
	sid := login(t, b, "user1", "user123")

	s, err := b.Session(sid)
	require.NoError(t, err)
	balances, holdings := stored(t, b, "user1")
	assert.Equal(t, len(balances), len(s.Balances))
	for code, v := range balances {
		assertDec(t, v.String(), s.Balances[code])
	}
	assert.Equal(t, len(holdings), len(s.Holdings))

	s.Balances["CAD"] = decimal.Zero
	again, err := b.Session(sid)
	require.NoError(t, err)
	assertDec(t, "500", again.Balances["CAD"])
	balances, _ = stored(t, b, "user1")
	assertDec(t, "500", balances["CAD"])
}

func TestLogoutRoundTrip(t *testing.T) {
	b, rec := newTestBank(t)
	ctx := context.Background()
	sid := login(t, b, "user1", "user123")
	_, err := b.SetAssetPrice(ctx, sid, "RabbitCoin", num("1"))
	require.ErrorIs(t, err, ErrAdminOnly)

	_, err = b.CreateAsset(ctx, sid, "RabbitCoin")
	require.NoError(t, err)
	before, err := b.Session(sid)
	require.NoError(t, err)

	_, err = b.Logout(ctx, sid)
	require.NoError(t, err)
	_, err = b.Session(sid)
	assert.ErrorIs(t, err, ErrNoSession)
	_, err = b.Logout(ctx, sid)
	assert.ErrorIs(t, err, ErrNoSession)

	after, err := b.Session(login(t, b, "user1", "user123"))
	require.NoError(t, err)
	assert.Equal(t, before.Balances.Get("CAD").String(), after.Balances.Get("CAD").String())
	assert.Equal(t, before.Holdings.Get("RabbitCoin").String(), after.Holdings.Get("RabbitCoin").String())

	assert.Equal(t, []EventKind{EventLogin, EventAssetCreated, EventLogout, EventLogin}, rec.kinds())
}

func TestOperationsRequireSession(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	for name, op := range map[string]func() (Event, error){
		"create": func() (Event, error) { return b.CreateAsset(ctx, "nope", "X") },
		"buy":    func() (Event, error) { return b.BuyAsset(ctx, "nope", "X", num("1")) },
		"sell":   func() (Event, error) { return b.SellAsset(ctx, "nope", "X", num("1")) },
		"pay":    func() (Event, error) { return b.SendPayment(ctx, "", "admin", num("1"), "CAD") },
		"rate":   func() (Event, error) { return b.SetRate(ctx, "", "CAD", num("1")) },
	} {
		_, err := op()
		assert.ErrorIs(t, err, ErrNoSession, name)
	}
}

func TestCreateAssetReachesEveryAccount(t *testing.T) {
	b, rec := newTestBank(t)
	ctx := context.Background()
	sid := login(t, b, "user1", "user123")

	e, err := b.CreateAsset(ctx, sid, " RabbitCoin ")
	require.NoError(t, err)
	assert.Equal(t, `Created crypto "RabbitCoin". Price default 100 CAD`, e.Notice)
	assertDec(t, "100", e.Amount)

	_, adminHoldings := stored(t, b, "admin")
	q, ok := adminHoldings["RabbitCoin"]
	require.True(t, ok)
	assertDec(t, "0", q)

	balances, holdings := stored(t, b, "user1")
	assertDec(t, "400", balances["CAD"])
	assertDec(t, "0", holdings["RabbitCoin"])

	st, _, err := b.Snapshot("")
	require.NoError(t, err)
	assertDec(t, "100", st.Prices["RabbitCoin"])
	assert.Equal(t, []string{"RabbitCoin"}, st.Assets())
	assert.Contains(t, rec.kinds(), EventAssetCreated)
}

func TestCreateAssetFeeRules(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()

	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "CarrotCoin")
	require.NoError(t, err)
	balances, _ := stored(t, b, "admin")
	assertDec(t, "1000", balances["CAD"])

	_, err = b.CreateAsset(ctx, admin, "   ")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = b.SetBalance(ctx, admin, "user1", "CAD", num("99.99"))
	require.NoError(t, err)
	user := login(t, b, "user1", "user123")
	_, err = b.CreateAsset(ctx, user, "RabbitCoin")
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.EqualError(t, err, "Not enough CAD to create crypto (cost 100 CAD)")

	st, _, err := b.Snapshot("")
	require.NoError(t, err)
	assert.Equal(t, []string{"CarrotCoin"}, st.Assets())
}

func TestCreateAssetKeepsExistingPriceAndHoldings(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	_, err = b.SetAssetPrice(ctx, admin, "RabbitCoin", num("50"))
	require.NoError(t, err)
	_, err = b.BuyAsset(ctx, admin, "RabbitCoin", num("3"))
	require.NoError(t, err)

	e, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	assert.Equal(t, `Created crypto "RabbitCoin". Price default 50 CAD`, e.Notice)
	_, holdings := stored(t, b, "admin")
	assertDec(t, "3", holdings["RabbitCoin"])
}

func TestCreateAssetResetsZeroPrice(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	_, err = b.SetAssetPrice(ctx, admin, "RabbitCoin", num("0"))
	require.NoError(t, err)

	e, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	assert.Equal(t, `Created crypto "RabbitCoin". Price default 100 CAD`, e.Notice)
	st, _, err := b.Snapshot(admin)
	require.NoError(t, err)
	assertDec(t, "100", st.PriceOf("RabbitCoin"))
}

func TestBuySellExample(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()

	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	_, err = b.SetAssetPrice(ctx, admin, "RabbitCoin", num("50"))
	require.NoError(t, err)

	user := login(t, b, "user1", "user123")
	e, err := b.BuyAsset(ctx, user, "RabbitCoin", num("2"))
	require.NoError(t, err)
	assert.Equal(t, "Bought 2 RabbitCoin for 100.00 CAD", e.Notice)
	s, err := b.Session(user)
	require.NoError(t, err)
	assertDec(t, "400", s.Balances["CAD"])
	assertDec(t, "2", s.Holdings["RabbitCoin"])

	e, err = b.SellAsset(ctx, user, "RabbitCoin", num("1"))
	require.NoError(t, err)
	assert.Equal(t, "Sold 1 RabbitCoin for 50.00 CAD", e.Notice)
	s, err = b.Session(user)
	require.NoError(t, err)
	assertDec(t, "450", s.Balances["CAD"])
	assertDec(t, "1", s.Holdings["RabbitCoin"])

	balances, holdings := stored(t, b, "user1")
	assertDec(t, "450", balances["CAD"])
	assertDec(t, "1", holdings["RabbitCoin"])
}

func TestBuySellRoundTrip(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	_, err = b.SetAssetPrice(ctx, admin, "RabbitCoin", num("33.3"))
	require.NoError(t, err)

	user := login(t, b, "user1", "user123")
	for _, qty := range []string{"1", "0.5", "3", "7.25"} {
		before, err := b.Session(user)
		require.NoError(t, err)
		_, err = b.BuyAsset(ctx, user, "RabbitCoin", num(qty))
		require.NoError(t, err)
		_, err = b.SellAsset(ctx, user, "RabbitCoin", num(qty))
		require.NoError(t, err)
		after, err := b.Session(user)
		require.NoError(t, err)
		assertDec(t, before.Balances["CAD"].String(), after.Balances["CAD"])
		assertDec(t, before.Holdings["RabbitCoin"].String(), after.Holdings["RabbitCoin"])
	}
}

func TestTradeValidation(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	user := login(t, b, "user1", "user123")

	cases := []struct {
		name  string
		asset string
		qty   decimal.NullDecimal
		want  error
	}{
		{"missing asset", "", num("1"), ErrValidation},
		{"missing quantity", "RabbitCoin", decimal.NullDecimal{}, ErrValidation},
		{"zero quantity", "RabbitCoin", num("0"), ErrValidation},
		{"negative quantity", "RabbitCoin", num("-1"), ErrValidation},
		{"unknown asset", "GhostCoin", num("1"), ErrNotFound},
		{"too expensive", "RabbitCoin", num("6"), ErrInsufficientFunds},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.BuyAsset(ctx, user, tc.asset, tc.qty)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err = b.SellAsset(ctx, user, "RabbitCoin", num("1"))
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	assert.EqualError(t, err, "Not enough RabbitCoin to sell")

	s, err := b.Session(user)
	require.NoError(t, err)
	assertDec(t, "500", s.Balances["CAD"])
	assertDec(t, "0", s.Holdings["RabbitCoin"])
}

func TestUnpricedAssetUsesDefaultPrice(t *testing.T) {
	seed := DefaultSeed()
	seed.Accounts[1].Holdings = map[string]decimal.Decimal{"LegacyCoin": dec("2")}
	b, err := New(seed, Options{Hasher: auth.Plaintext{}})
	require.NoError(t, err)
	ctx := context.Background()

	user := login(t, b, "user1", "user123")
	e, err := b.SellAsset(ctx, user, "LegacyCoin", num("1"))
	require.NoError(t, err)
	assert.Equal(t, "Sold 1 LegacyCoin for 100.00 CAD", e.Notice)
	_, err = b.BuyAsset(ctx, user, "LegacyCoin", num("1"))
	require.NoError(t, err)
	s, err := b.Session(user)
	require.NoError(t, err)
	assertDec(t, "500", s.Balances["CAD"])
}

func TestSendPayment(t *testing.T) {
	b, rec := newTestBank(t)
	ctx := context.Background()
	user := login(t, b, "user1", "user123")

	e, err := b.SendPayment(ctx, user, "admin", num("10"), "USD")
	require.NoError(t, err)
	assert.Equal(t, "Sent 10.00 USD to admin", e.Notice)
	assert.Equal(t, "admin", e.Subject)

	s, err := b.Session(user)
	require.NoError(t, err)
	assertDec(t, "353.33", s.Balances["USD"])
	balances, _ := stored(t, b, "user1")
	assertDec(t, "353.33", balances["USD"])
	balances, _ = stored(t, b, "admin")
	assertDec(t, "736.66", balances["USD"])
	assert.Equal(t, EventPaymentSent, rec.kinds()[len(rec.kinds())-1])
}

func TestSendPaymentFailuresLeaveBalances(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	user := login(t, b, "user1", "user123")

	cases := []struct {
		name      string
		recipient string
		amount    decimal.NullDecimal
		currency  string
		want      error
	}{
		{"too large", "admin", num("500.01"), "CAD", ErrInsufficientFunds},
		{"unheld currency", "admin", num("1"), "EUR", ErrInsufficientFunds},
		{"self", "user1", num("1"), "CAD", ErrValidation},
		{"unknown recipient", "ghost", num("1"), "CAD", ErrNotFound},
		{"no recipient", "", num("1"), "CAD", ErrValidation},
		{"no amount", "admin", decimal.NullDecimal{}, "CAD", ErrValidation},
		{"negative", "admin", num("-5"), "CAD", ErrValidation},
		{"no currency", "admin", num("1"), "", ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.SendPayment(ctx, user, tc.recipient, tc.amount, tc.currency)
			assert.ErrorIs(t, err, tc.want)

			mine, _ := stored(t, b, "user1")
			theirs, _ := stored(t, b, "admin")
			assertDec(t, "500", mine["CAD"])
			assertDec(t, "1000", theirs["CAD"])
			_, hasEUR := theirs["EUR"]
			assert.False(t, hasEUR)
		})
	}
}

func TestPaymentReachesRecipientSession(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	user := login(t, b, "user1", "user123")

	_, err := b.SendPayment(ctx, user, "admin", num("100"), "CAD")
	require.NoError(t, err)
	s, err := b.Session(admin)
	require.NoError(t, err)
	assertDec(t, "1100", s.Balances["CAD"])

	_, err = b.Logout(ctx, admin)
	require.NoError(t, err)
	balances, _ := stored(t, b, "admin")
	assertDec(t, "1100", balances["CAD"])
}

func TestAdminOnly(t *testing.T) {
	b, rec := newTestBank(t)
	ctx := context.Background()
	user := login(t, b, "user1", "user123")

	ops := map[string]func() (Event, error){
		"createAccount": func() (Event, error) { return b.CreateAccount(ctx, user, "bob", "pw") },
		"setRate":       func() (Event, error) { return b.SetRate(ctx, user, "USD", num("2")) },
		"setBalance":    func() (Event, error) { return b.SetBalance(ctx, user, "user1", "CAD", num("1e6")) },
		"setPrice":      func() (Event, error) { return b.SetAssetPrice(ctx, user, "X", num("1")) },
		"addCurrency":   func() (Event, error) { return b.AddCurrency(ctx, user, "EUR", "€", num("0.6"), "") },
		"editCurrency":  func() (Event, error) { return b.EditCurrency(ctx, user, "USD", "$", num("0.7"), "") },
	}
	for name, op := range ops {
		_, err := op()
		assert.ErrorIs(t, err, ErrAdminOnly, name)
		assert.EqualError(t, err, "Admin only", name)
	}
	balances, _ := stored(t, b, "user1")
	assertDec(t, "500", balances["CAD"])
	assert.Equal(t, []EventKind{EventLogin}, rec.kinds())
}

func TestCreateAccount(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	_, err := b.CreateAsset(ctx, admin, "RabbitCoin")
	require.NoError(t, err)
	_, err = b.SetAssetPrice(ctx, admin, "PricedOnly", num("5"))
	require.NoError(t, err)

	e, err := b.CreateAccount(ctx, admin, "bob", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Created bob", e.Notice)

	balances, holdings := stored(t, b, "bob")
	assert.Len(t, balances, 2)
	assertDec(t, "0", balances["CAD"])
	assertDec(t, "0", balances["USD"])
	assert.Len(t, holdings, 2)
	assertDec(t, "0", holdings["RabbitCoin"])
	assertDec(t, "0", holdings["PricedOnly"])

	login(t, b, "bob", "hunter2")

	_, err = b.CreateAccount(ctx, admin, "bob", "other")
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "User already exists")
	_, err = b.CreateAccount(ctx, admin, "carol", "")
	assert.ErrorIs(t, err, ErrValidation)
}

type countingHasher struct {
	auth.Hasher
	calls int
}

func (h *countingHasher) Hash(secret string) (auth.Credential, error) {
	h.calls++
	return h.Hasher.Hash(secret)
}

func TestCreateAccountRejectsLongPasswordUnderBcrypt(t *testing.T) {
	b, err := New(DefaultSeed(), Options{Hasher: auth.Bcrypt{Cost: 4}})
	require.NoError(t, err)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")

	_, err = b.CreateAccount(ctx, admin, "bob", strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Password too long")
	_, err = b.Account("bob")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = b.CreateAccount(ctx, admin, "bob", strings.Repeat("x", 72))
	require.NoError(t, err)
	login(t, b, "bob", strings.Repeat("x", 72))
}

func TestCreateAccountHashesOnlyAfterChecks(t *testing.T) {
	h := &countingHasher{Hasher: auth.Plaintext{}}
	b, err := New(DefaultSeed(), Options{Hasher: h})
	require.NoError(t, err)
	ctx := context.Background()
	user := login(t, b, "user1", "user123")
	admin := login(t, b, "admin", "admin123")
	h.calls = 0

	_, err = b.CreateAccount(ctx, user, "bob", "pw")
	assert.ErrorIs(t, err, ErrAdminOnly)
	_, err = b.CreateAccount(ctx, admin, "user1", "pw")
	assert.EqualError(t, err, "User already exists")
	_, err = b.CreateAccount(ctx, admin, "bob", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Zero(t, h.calls)

	_, err = b.CreateAccount(ctx, admin, "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, 1, h.calls)
}

func TestSetRate(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")

	e, err := b.SetRate(ctx, admin, "USD", num("0.8"))
	require.NoError(t, err)
	assert.Equal(t, "Set rate: 1 CAD = 0.8 USD", e.Notice)

	_, err = b.SetRate(ctx, admin, "JPY", num("110"))
	require.NoError(t, err)
	st, _, err := b.Snapshot("")
	require.NoError(t, err)
	jpy, ok := st.Currency("JPY")
	require.True(t, ok)
	assert.Equal(t, "#", jpy.Link)
	assertDec(t, "110", jpy.Rate)
	usd, _ := st.Currency("USD")
	assertDec(t, "0.8", usd.Rate)

	_, err = b.SetRate(ctx, admin, "USD", decimal.NullDecimal{})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = b.SetRate(ctx, admin, "CAD", num("2"))
	assert.ErrorIs(t, err, ErrValidation)
	_, err = b.SetRate(ctx, admin, "CAD", num("1"))
	assert.NoError(t, err)
}

func TestSetBalanceOnOwnSession(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")

	e, err := b.SetBalance(ctx, admin, "admin", "CAD", num("42"))
	require.NoError(t, err)
	assert.Equal(t, "Updated admin CAD = 42", e.Notice)

	s, err := b.Session(admin)
	require.NoError(t, err)
	assertDec(t, "42", s.Balances["CAD"])

	_, err = b.Logout(ctx, admin)
	require.NoError(t, err)
	balances, _ := stored(t, b, "admin")
	assertDec(t, "42", balances["CAD"])
}

func TestSetBalanceAbsoluteAndValidation(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")
	user := login(t, b, "user1", "user123")

	_, err := b.SetBalance(ctx, admin, "user1", "CAD", num("7"))
	require.NoError(t, err)
	_, err = b.SetBalance(ctx, admin, "user1", "CAD", num("7"))
	require.NoError(t, err)
	s, err := b.Session(user)
	require.NoError(t, err)
	assertDec(t, "7", s.Balances["CAD"])

	_, err = b.SetBalance(ctx, admin, "ghost", "CAD", num("7"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.SetBalance(ctx, admin, "user1", "CAD", ParseAmount("seven"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddCurrencyBackfills(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")

	e, err := b.AddCurrency(ctx, admin, "EUR", "€", num("0.63"), "")
	require.NoError(t, err)
	assert.Equal(t, "Added currency: EUR (€)", e.Notice)

	for _, user := range []string{"admin", "user1"} {
		balances, _ := stored(t, b, user)
		v, ok := balances["EUR"]
		require.True(t, ok, user)
		assertDec(t, "0", v)
	}
	s, err := b.Session(admin)
	require.NoError(t, err)
	_, ok := s.Balances["EUR"]
	assert.True(t, ok)

	st, _, err := b.Snapshot("")
	require.NoError(t, err)
	eur, ok := st.Currency("EUR")
	require.True(t, ok)
	assert.Equal(t, "#", eur.Link)
	assert.Equal(t, "€", eur.Label())

	_, err = b.AddCurrency(ctx, admin, "GBP", "", num("0.5"), "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = b.AddCurrency(ctx, admin, "GBP", "£", decimal.NullDecimal{}, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAddCurrencyKeepsExistingBalances(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")

	_, err := b.AddCurrency(ctx, admin, "USD", "US$", num("0.75"), "https://example.com/usd")
	require.NoError(t, err)
	balances, _ := stored(t, b, "user1")
	assertDec(t, "363.33", balances["USD"])
}

func TestEditCurrency(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	admin := login(t, b, "admin", "admin123")

	_, err := b.EditCurrency(ctx, admin, "EUR", "€", num("0.6"), "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Currency not found")

	_, err = b.EditCurrency(ctx, admin, "USD", "", num("0.6"), "")
	assert.ErrorIs(t, err, ErrValidation)

	e, err := b.EditCurrency(ctx, admin, "USD", "US$", num("0.75"), "https://example.com/usd")
	require.NoError(t, err)
	assert.Equal(t, "Updated currency: USD", e.Notice)

	st, _, err := b.Snapshot("")
	require.NoError(t, err)
	require.Len(t, st.Currencies, 2)
	usd, _ := st.Currency("USD")
	assert.Equal(t, "US$", usd.ShortLabel)
	assertDec(t, "0.75", usd.Rate)
	assert.Equal(t, "https://example.com/usd", usd.Link)

	_, err = b.EditCurrency(ctx, admin, "CAD", "C$", num("1.1"), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSiblingSessionsStayInSync(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	first := login(t, b, "user1", "user123")
	second := login(t, b, "user1", "user123")

	_, err := b.SendPayment(ctx, first, "admin", num("100"), "CAD")
	require.NoError(t, err)
	_, err = b.SendPayment(ctx, second, "admin", num("100"), "CAD")
	require.NoError(t, err)
	_, err = b.Logout(ctx, first)
	require.NoError(t, err)

	balances, _ := stored(t, b, "user1")
	assertDec(t, "300", balances["CAD"])
}

func TestConcurrentOperationsSerialize(t *testing.T) {
	b, _ := newTestBank(t)
	ctx := context.Background()
	user := login(t, b, "user1", "user123")
	admin := login(t, b, "admin", "admin123")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = b.SendPayment(ctx, user, "admin", num("1"), "CAD")
		}()
		go func() {
			defer wg.Done()
			_, _ = b.SendPayment(ctx, admin, "user1", num("1"), "CAD")
		}()
	}
	wg.Wait()

	mine, _ := stored(t, b, "user1")
	theirs, _ := stored(t, b, "admin")
	assertDec(t, "1500", mine["CAD"].Add(theirs["CAD"]))
	assertDec(t, "500", mine["CAD"])
}

func TestDecodeSeedValidation(t *testing.T) {
	_, err := DecodeSeed(strings.NewReader("base: CAD\nadmin: admin\ncurrencies:\n  - code: CAD\n    rate: \"2\"\n"))
	assert.ErrorContains(t, err, "rate 1")

	_, err = DecodeSeed(strings.NewReader("base: EUR\nadmin: admin\n"))
	assert.ErrorContains(t, err, "not listed")

	s, err := DecodeSeed(strings.NewReader(`
base: EUR
admin: root
defaultPrice: "10"
creationFee: "5"
currencies:
  - code: EUR
    rate: "1"
    label: "€"
accounts:
  - username: root
    password: toor
    balances:
      EUR: "5"
`))
	require.NoError(t, err)
	assert.Equal(t, "root", s.Admin)
	assertDec(t, "5", s.Accounts[0].Balances["EUR"])
	assertDec(t, "10", s.DefaultPrice)
}
