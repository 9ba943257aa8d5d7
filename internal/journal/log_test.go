package journal

import (
	"context"
	"testing"
	"time"

	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRecordsEvent(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	j := NewLog(zap.New(core))

	j.Record(context.Background(), bank.Event{
		Kind:     bank.EventPaymentSent,
		At:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Actor:    "user1",
		Subject:  "admin",
		Currency: "USD",
		Amount:   decimal.NewFromInt(10),
		Notice:   "Sent 10.00 USD to admin",
	})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Sent 10.00 USD to admin", entry.Message)
	assert.Equal(t, "journal", entry.LoggerName)
	fields := entry.ContextMap()
	assert.Equal(t, "payment_sent", fields["kind"])
	assert.Equal(t, "admin", fields["subject"])
	assert.Equal(t, "10", fields["amount"])
	assert.NotContains(t, fields, "asset")
}
