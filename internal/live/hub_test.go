package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	"github.com/hongminglow/bunny-bank/internal/view"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	bank   *bank.Bank
	hub    *Hub
	tokens *auth.TokenManager
	url    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b, err := bank.New(bank.DefaultSeed(), bank.Options{Hasher: auth.Plaintext{}})
	require.NoError(t, err)
	hub := NewHub(b, []string{"*"}, zap.NewNop())
	b.Subscribe(hub)
	tokens := auth.NewTokenManager("secret", "bunny-bank", 0)

	ts := httptest.NewServer(middleware.RequireSession(tokens, hub))
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return &fixture{bank: b, hub: hub, tokens: tokens, url: "ws" + strings.TrimPrefix(ts.URL, "http")}
}

func (f *fixture) dial(t *testing.T, user, pass string) (string, *websocket.Conn) {
	t.Helper()
	e, err := f.bank.Login(context.Background(), user, pass)
	require.NoError(t, err)
	token, err := f.tokens.Generate(e.SessionID, user, false)
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial(f.url+"?token="+token, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return e.SessionID, conn
}

func read(t *testing.T, conn *websocket.Conn) view.Dashboard {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var d view.Dashboard
	require.NoError(t, conn.ReadJSON(&d))
	return d
}

func TestPushesDashboardsOnEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	userSID, userConn := f.dial(t, "user1", "user123")
	first := read(t, userConn)
	assert.True(t, first.LoggedIn)
	assert.Equal(t, "user1", first.User)

	adminSID, adminConn := f.dial(t, "admin", "admin123")
	read(t, adminConn)
	// admin's login is an event too; user1 sees a refreshed dashboard.
	read(t, userConn)
	require.Eventually(t, func() bool { return f.hub.Connections() == 2 }, time.Second, 10*time.Millisecond)

	_, err := f.bank.SendPayment(ctx, adminSID, "user1", decimal.NullDecimal{Decimal: decimal.NewFromInt(10), Valid: true}, "CAD")
	require.NoError(t, err)

	d := read(t, adminConn)
	assert.Equal(t, "Sent 10.00 CAD to user1", d.Notice)
	assert.Equal(t, "990.00", d.Balances[0].Amount)

	d = read(t, userConn)
	assert.Empty(t, d.Notice)
	assert.Equal(t, "510.00", d.Balances[0].Amount)

	_, err = f.bank.Logout(ctx, userSID)
	require.NoError(t, err)
	require.NoError(t, userConn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err = userConn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	require.Eventually(t, func() bool { return f.hub.Connections() == 1 }, time.Second, 10*time.Millisecond)
}

func TestRejectsUnknownSession(t *testing.T) {
	f := newFixture(t)
	token, err := f.tokens.Generate("missing", "ghost", false)
	require.NoError(t, err)

	_, resp, err := websocket.DefaultDialer.Dial(f.url+"?token="+token, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(f.url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRenderKeepsLatest(t *testing.T) {
	c := &client{send: make(chan view.Dashboard, 1), done: make(chan struct{})}
	require.NoError(t, c.Render(view.Dashboard{Notice: "old"}))
	require.NoError(t, c.Render(view.Dashboard{Notice: "new"}))
	assert.Equal(t, "new", (<-c.send).Notice)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://bank.example"})
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://bank.example")
	assert.True(t, check(req))
	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
