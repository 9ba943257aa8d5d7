package handlers

import (
	"net/http"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	"github.com/hongminglow/bunny-bank/internal/models/dto"
	"github.com/hongminglow/bunny-bank/internal/view"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// AuthHandler owns the login/logout endpoints. A bank session id travels
// inside the signed token.
type AuthHandler struct {
	responder
	bank    *bank.Bank
	tokens  *auth.TokenManager
	limiter *rate.Limiter
}

// NewAuthHandler constructs the handler. A nil limiter leaves /login unthrottled.
func NewAuthHandler(b *bank.Bank, tokens *auth.TokenManager, limiter *rate.Limiter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{responder: responder{logger: logger}, bank: b, tokens: tokens, limiter: limiter}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.Handle("POST /login", middleware.RateLimit(h.limiter, h.logger, http.HandlerFunc(h.handleLogin)))
	mux.Handle("POST /logout", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleLogout)))
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	e, err := h.bank.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	s, err := h.bank.Session(e.SessionID)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	token, err := h.tokens.Generate(s.ID, s.Username, s.IsAdmin)
	if err != nil {
		h.logger.Error("sign session token failed", zap.String("user", s.Username), zap.Error(err))
		h.fail(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}
	d, err := view.Load(h.bank, s.ID)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	d.Notice = e.Notice
	h.ok(w, r, e.Notice, dto.LoginResponse{Token: token, Dashboard: d})
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	e, err := h.bank.Logout(r.Context(), sessionID(r))
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	d, err := view.Load(h.bank, "")
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	d.Notice = e.Notice
	h.ok(w, r, e.Notice, d)
}
