package handlers

import (
	"context"
	"net/http"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	"github.com/hongminglow/bunny-bank/internal/models/dto"
	"go.uber.org/zap"
)

// AdminHandler serves the administrator operations. The bank enforces the
// admin role; the handler only needs a session.
type AdminHandler struct {
	responder
	bank   *bank.Bank
	tokens *auth.TokenManager
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(b *bank.Bank, tokens *auth.TokenManager, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{responder: responder{logger: logger}, bank: b, tokens: tokens}
}

// Register wires the handler into a ServeMux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"POST /admin/accounts":         h.handleCreateAccount,
		"PUT /admin/rates":             h.handleSetRate,
		"PUT /admin/balances":          h.handleSetBalance,
		"PUT /admin/prices":            h.handleSetPrice,
		"POST /admin/currencies":       h.handleAddCurrency,
		"PUT /admin/currencies/{code}": h.handleEditCurrency,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, middleware.RequireSession(h.tokens, fn))
	}
}

func (h *AdminHandler) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAccountRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.CreateAccount(ctx, sid, req.Username, req.Password)
	})
}

func (h *AdminHandler) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req dto.SetRateRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.SetRate(ctx, sid, req.Code, req.Rate.Decimal())
	})
}

func (h *AdminHandler) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	var req dto.SetBalanceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.SetBalance(ctx, sid, req.Username, req.Currency, req.Amount.Decimal())
	})
}

func (h *AdminHandler) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req dto.SetPriceRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.SetAssetPrice(ctx, sid, req.Asset, req.Price.Decimal())
	})
}

func (h *AdminHandler) handleAddCurrency(w http.ResponseWriter, r *http.Request) {
	var req dto.CurrencyRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.AddCurrency(ctx, sid, req.Code, req.Label, req.Rate.Decimal(), req.Link)
	})
}

func (h *AdminHandler) handleEditCurrency(w http.ResponseWriter, r *http.Request) {
	var req dto.CurrencyRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	code := r.PathValue("code")
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.EditCurrency(ctx, sid, code, req.Label, req.Rate.Decimal(), req.Link)
	})
}
