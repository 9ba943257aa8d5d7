package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthHandler returns uptime and basic status.
type HealthHandler struct {
	responder
	startedAt time.Time
}

// NewHealthHandler creates a health endpoint handler.
func NewHealthHandler(startedAt time.Time, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{responder: responder{logger: logger}, startedAt: startedAt}
}

// Register wires the handler into a ServeMux.
func (h *HealthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.handle)
}

func (h *HealthHandler) handle(w http.ResponseWriter, r *http.Request) {
	h.ok(w, r, "ok", map[string]string{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Truncate(time.Second).String(),
	})
}
