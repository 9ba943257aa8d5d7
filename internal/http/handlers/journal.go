package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	postgres "github.com/hongminglow/bunny-bank/internal/storage/postgres"
	"go.uber.org/zap"
)

// OperationLog reads back persisted operations.
type OperationLog interface {
	ByActor(ctx context.Context, actor string) ([]postgres.Entry, error)
}

// JournalHandler lets admins read the persisted operation journal.
type JournalHandler struct {
	responder
	bank   *bank.Bank
	tokens *auth.TokenManager
	ops    OperationLog
}

// NewJournalHandler constructs the handler.
func NewJournalHandler(b *bank.Bank, tokens *auth.TokenManager, ops OperationLog, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{responder: responder{logger: logger}, bank: b, tokens: tokens, ops: ops}
}

// Register wires the handler into a ServeMux.
func (h *JournalHandler) Register(mux *http.ServeMux) {
	mux.Handle("GET /admin/journal", middleware.RequireSession(h.tokens, http.HandlerFunc(h.handleByActor)))
}

func (h *JournalHandler) handleByActor(w http.ResponseWriter, r *http.Request) {
	_, s, err := h.bank.Snapshot(sessionID(r))
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	if !s.IsAdmin {
		h.failWith(w, r, bank.ErrAdminOnly)
		return
	}
	actor := strings.TrimSpace(r.URL.Query().Get("actor"))
	if actor == "" {
		h.fail(w, r, http.StatusBadRequest, "Enter an actor")
		return
	}
	entries, err := h.ops.ByActor(r.Context(), actor)
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	if entries == nil {
		entries = []postgres.Entry{}
	}
	h.ok(w, r, "ok", entries)
}
