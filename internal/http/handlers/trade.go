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

// TradeHandler serves the customer operations: assets and payments.
type TradeHandler struct {
	responder
	bank   *bank.Bank
	tokens *auth.TokenManager
}

// NewTradeHandler constructs the handler.
func NewTradeHandler(b *bank.Bank, tokens *auth.TokenManager, logger *zap.Logger) *TradeHandler {
	return &TradeHandler{responder: responder{logger: logger}, bank: b, tokens: tokens}
}

// Register wires the handler into a ServeMux.
func (h *TradeHandler) Register(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"POST /assets":      h.handleCreateAsset,
		"POST /assets/buy":  h.handleBuy,
		"POST /assets/sell": h.handleSell,
		"POST /payments":    h.handlePayment,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, middleware.RequireSession(h.tokens, fn))
	}
}

func (h *TradeHandler) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAssetRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.CreateAsset(ctx, sid, req.Name)
	})
}

func (h *TradeHandler) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req dto.TradeRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.BuyAsset(ctx, sid, req.Asset, req.Quantity.Decimal())
	})
}

func (h *TradeHandler) handleSell(w http.ResponseWriter, r *http.Request) {
	var req dto.TradeRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.SellAsset(ctx, sid, req.Asset, req.Quantity.Decimal())
	})
}

func (h *TradeHandler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req dto.PaymentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.operation(w, r, h.bank, func(ctx context.Context, sid string) (bank.Event, error) {
		return h.bank.SendPayment(ctx, sid, req.Recipient, req.Amount.Decimal(), req.Currency)
	})
}
