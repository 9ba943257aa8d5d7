// Package live pushes re-rendered dashboards to websocket clients.
package live

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/http/respond"
	"github.com/hongminglow/bunny-bank/internal/metrics"
	"github.com/hongminglow/bunny-bank/internal/view"
	"go.uber.org/zap"
)

var _ bank.Listener = (*Hub)(nil)

const (
	writeWait    = 10 * time.Second
	readLimit    = 512
	pingInterval = 30 * time.Second
)

// Hub tracks one websocket per connected session and, on every bank
// event, sends each of them its refreshed dashboard.
type Hub struct {
	src      view.Source
	logger   *zap.Logger
	upgrader websocket.Upgrader

	// PingInterval keeps idle connections alive; the read deadline is twice this.
	PingInterval time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}

	// recordMu keeps pushes in event order.
	recordMu sync.Mutex
}

// NewHub builds a hub reading dashboards from src. Browser origins are
// checked against allowedOrigins; "*" allows any.
func NewHub(src view.Source, allowedOrigins []string, logger *zap.Logger) *Hub {
	h := &Hub{
		src:          src,
		logger:       logger.Named("live"),
		clients:      make(map[*client]struct{}),
		PingInterval: pingInterval,
	}
	h.upgrader = websocket.Upgrader{
		HandshakeTimeout: writeWait,
		CheckOrigin:      originChecker(allowedOrigins),
	}
	return h
}

// ServeHTTP upgrades the request. Verified claims must already be on the
// context, see middleware.RequireSession.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		_ = respond.Error(w, http.StatusUnauthorized, bank.ErrNoSession.Message)
		return
	}
	sid := claims.SessionID()
	d, err := view.Load(h.src, sid)
	if err != nil {
		if errors.Is(err, bank.ErrNoSession) {
			_ = respond.Error(w, http.StatusUnauthorized, bank.ErrNoSession.Message)
			return
		}
		h.logger.Error("load dashboard failed", zap.Error(err))
		_ = respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	c := newClient(sid, conn)
	h.add(c)
	defer h.remove(c)

	_ = c.Render(d)
	go c.writeLoop(h.PingInterval, h.logger)
	c.readLoop(2 * h.PingInterval)
}

// Record implements bank.Listener. Clients whose session has ended are
// disconnected; the acting session also receives the event notice.
func (h *Hub) Record(_ context.Context, e bank.Event) {
	h.recordMu.Lock()
	defer h.recordMu.Unlock()

	for _, c := range h.snapshot() {
		d, err := view.Load(h.src, c.sid)
		if err != nil {
			c.close()
			continue
		}
		if c.sid == e.SessionID {
			d.Notice = e.Notice
		}
		_ = c.Render(d)
	}
}

// Connections reports the number of open websockets.
func (h *Hub) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	for _, c := range h.snapshot() {
		c.close()
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	metrics.LiveConnections.Inc()
	h.logger.Debug("client connected", zap.String("session", c.sid))
}

func (h *Hub) remove(c *client) {
	c.close()
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		metrics.LiveConnections.Dec()
		h.logger.Debug("client disconnected", zap.String("session", c.sid))
	}
}

func (h *Hub) snapshot() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(o)] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}
