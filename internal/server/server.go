package server

import (
	"context"
	"net/http"
	"time"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/config"
	"github.com/hongminglow/bunny-bank/internal/http/handlers"
	"github.com/hongminglow/bunny-bank/internal/live"
	"github.com/hongminglow/bunny-bank/internal/metrics"
	"github.com/hongminglow/bunny-bank/internal/middleware"
	"go.uber.org/zap"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
	hub   *live.Hub
}

// New wires up middleware, routes, and returns a ready server. The live hub
// is subscribed to b. GET /admin/journal is only routed when ops is non-nil.
func New(cfg config.Config, b *bank.Bank, ops handlers.OperationLog, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL())
	limiter := middleware.NewLimiter(cfg.LoginRatePerSec, cfg.LoginBurst)

	handlers.NewHealthHandler(time.Now(), logger).Register(mux)
	handlers.NewAuthHandler(b, tokens, limiter, logger).Register(mux)
	handlers.NewDashboardHandler(b, tokens, logger).Register(mux)
	handlers.NewTradeHandler(b, tokens, logger).Register(mux)
	handlers.NewAdminHandler(b, tokens, logger).Register(mux)
	if ops != nil {
		handlers.NewJournalHandler(b, tokens, ops, logger).Register(mux)
	}

	hub := live.NewHub(b, cfg.CORSOrigins, logger)
	b.Subscribe(hub)
	mux.Handle("GET /live", middleware.RequireSession(tokens, hub))
	mux.Handle("GET /metrics", metrics.Handler())

	handler := middleware.CORS(cfg.CORSOrigins,
		middleware.TraceID(
			middleware.Logging(logger,
				middleware.Metrics(mux))))

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer, hub: hub}
}

// Handler exposes the middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.inner.Handler
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server and drops live connections,
// which http.Server does not track once hijacked.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.inner.Shutdown(ctx)
}
