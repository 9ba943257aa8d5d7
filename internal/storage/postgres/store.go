package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hongminglow/bunny-bank/internal/bank"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Ensure Journal satisfies the bank.Listener interface at compile time.
var _ bank.Listener = (*Journal)(nil)

const writeTimeout = 5 * time.Second

// Journal appends every bank event to the operations table. It is write-only:
// the bank never reads it back and always boots from its seed.
type Journal struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewJournal connects to the database and runs migrations.
func NewJournal(ctx context.Context, databaseURL string, logger *zap.Logger) (*Journal, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	j := &Journal{pool: pool, logger: logger}
	if err := j.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return j, nil
}

// Close releases database resources.
func (j *Journal) Close() {
	if j.pool != nil {
		j.pool.Close()
	}
}

func (j *Journal) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS operations (
			id BIGSERIAL PRIMARY KEY,
			kind TEXT NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			actor TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			asset TEXT NOT NULL DEFAULT '',
			currency TEXT NOT NULL DEFAULT '',
			amount NUMERIC NOT NULL DEFAULT 0,
			notice TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS operations_actor_idx ON operations (actor, occurred_at);`,
	}
	for _, stmt := range stmts {
		if _, err := j.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// Record implements bank.Listener. Failures are logged; the operation has
// already been applied.
func (j *Journal) Record(ctx context.Context, e bank.Event) {
	if _, err := j.Insert(ctx, e); err != nil {
		j.logger.Error("journal write failed", zap.String("kind", string(e.Kind)), zap.Error(err))
	}
}

// Insert writes one event row and returns its id.
func (j *Journal) Insert(ctx context.Context, e bank.Event) (int64, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	const query = `
		INSERT INTO operations (kind, occurred_at, actor, subject, asset, currency, amount, notice)
		VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8)
		RETURNING id;
	`
	var id int64
	err := j.pool.QueryRow(ctx, query,
		string(e.Kind), e.At, e.Actor, e.Subject, e.Asset, e.Currency, e.Amount.String(), e.Notice,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	return id, nil
}

// Entry is one journal row.
type Entry struct {
	ID      int64     `json:"id"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
	Actor   string    `json:"actor"`
	Subject string    `json:"subject"`
	Amount  string    `json:"amount"`
	Notice  string    `json:"notice"`
}

// ByActor lists the journal rows of one actor, oldest first.
func (j *Journal) ByActor(ctx context.Context, actor string) ([]Entry, error) {
	const query = `
	SELECT id, kind, occurred_at, actor, subject, amount::text, notice
	FROM operations
	WHERE actor = $1
	ORDER BY occurred_at, id;
	`
	rows, err := j.pool.Query(ctx, query, actor)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(&e.ID, &e.Kind, &e.At, &e.Actor, &e.Subject, &e.Amount, &e.Notice)
		return e, err
	})
}
