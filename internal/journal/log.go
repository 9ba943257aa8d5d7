// Package journal records completed bank operations.
package journal

import (
	"context"

	"github.com/hongminglow/bunny-bank/internal/bank"
	"go.uber.org/zap"
)

var _ bank.Listener = (*Log)(nil)

// Log writes every event to a zap logger.
type Log struct {
	logger *zap.Logger
}

// NewLog returns a journal writing to logger.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger.Named("journal")}
}

// Record implements bank.Listener.
func (l *Log) Record(_ context.Context, e bank.Event) {
	fields := []zap.Field{
		zap.String("kind", string(e.Kind)),
		zap.Time("at", e.At),
		zap.String("actor", e.Actor),
	}
	if e.Subject != "" {
		fields = append(fields, zap.String("subject", e.Subject))
	}
	if e.Asset != "" {
		fields = append(fields, zap.String("asset", e.Asset))
	}
	if e.Currency != "" {
		fields = append(fields, zap.String("currency", e.Currency), zap.String("amount", e.Amount.String()))
	}
	l.logger.Info(e.Notice, fields...)
}
