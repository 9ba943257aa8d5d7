package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	"github.com/hongminglow/bunny-bank/internal/view"
	"go.uber.org/zap"
)

// DashboardHandler serves the read side: the per-session dashboard and the
// admin account table.
type DashboardHandler struct {
	responder
	bank   *bank.Bank
	tokens *auth.TokenManager
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(b *bank.Bank, tokens *auth.TokenManager, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{responder: responder{logger: logger}, bank: b, tokens: tokens}
}

// Register wires the handler into a ServeMux.
func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /dashboard", middleware.OptionalSession(h.tokens, http.HandlerFunc(h.handleDashboard)))
	mux.Handle("GET /admin/accounts", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleAccounts)))
}

func (h *DashboardHandler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := view.Load(h.bank, sessionID(r))
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	h.ok(w, r, "ok", d)
}

func (h *DashboardHandler) handleAccounts(w http.ResponseWriter, r *http.Request) {
	st, s, err := h.bank.Snapshot(sessionID(r))
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	if !s.IsAdmin {
		h.failWith(w, r, bank.ErrAdminOnly)
		return
	}
	h.ok(w, r, "ok", view.Admin(st))
}

// sessionID returns the bank session named by the verified token, or "".
func sessionID(r *http.Request) string {
	claims, ok := auth.ClaimsFrom(r.Context())
	if !ok {
		return ""
	}
	return claims.SessionID()
}

// operation runs op for the caller's session and answers with its notice
// and the refreshed dashboard.
func (h responder) operation(w http.ResponseWriter, r *http.Request, src view.Source, op func(ctx context.Context, sid string) (bank.Event, error)) {
	sid := sessionID(r)
	e, err := op(r.Context(), sid)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	d, err := view.Load(src, sid)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	d.Notice = e.Notice
	h.ok(w, r, e.Notice, d)
}
