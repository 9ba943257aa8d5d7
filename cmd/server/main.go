package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hongminglow/bunny-bank/internal/auth"
	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/hongminglow/bunny-bank/internal/config"
	"github.com/hongminglow/bunny-bank/internal/http/handlers"
	"github.com/hongminglow/bunny-bank/internal/journal"
	"github.com/hongminglow/bunny-bank/internal/logging"
	"github.com/hongminglow/bunny-bank/internal/metrics"
	"github.com/hongminglow/bunny-bank/internal/server"
	postgres "github.com/hongminglow/bunny-bank/internal/storage/postgres"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	envErr := godotenv.Load()

	logger, err := logging.New(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	if envErr != nil {
		logger.Info("no .env file found; relying on existing environment")
	}

	if err := run(logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	seed, err := bank.LoadSeed(cfg.SeedFile)
	if err != nil {
		return err
	}
	hasher, err := auth.NewHasher(cfg.CredentialHashing, cfg.BcryptCost)
	if err != nil {
		return err
	}

	b, err := bank.New(seed, bank.Options{
		Hasher:    hasher,
		Logger:    logger.Named("bank"),
		Listeners: []bank.Listener{journal.NewLog(logger), metrics.Operations{}},
	})
	if err != nil {
		return fmt.Errorf("init bank: %w", err)
	}

	ctx := context.Background()
	var ops handlers.OperationLog
	if cfg.DatabaseURL != "" {
		j, err := postgres.NewJournal(ctx, cfg.DatabaseURL, logger.Named("postgres"))
		if err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		defer j.Close()
		b.Subscribe(j)
		ops = j
		logger.Info("postgres journal enabled")
	}

	srv := server.New(cfg, b, ops, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("BunnyBank listening", zap.String("addr", cfg.HTTPAddress()), zap.String("env", cfg.Env))
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown error", zap.Error(err))
	}
	return nil
}
