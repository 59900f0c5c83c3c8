// Package postgres implements the finance store on a Neon/Postgres
// database over pgx connection pooling.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/infra/resilience"
)

var tracer = otel.Tracer("postgres")

// Store persists transactions, employees, suppliers and fixed expense
// items. All calls go through the circuit breaker and retry policy.
type Store struct {
	pool   *pgxpool.Pool
	cb     *gobreaker.CircuitBreaker
	cfg    resilience.Config
	logger *zap.Logger
}

// New connects to the database and verifies the connection.
func New(ctx context.Context, dsn string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, &domain.ErrExternalService{Service: "postgres/connect", Err: err}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, &domain.ErrExternalService{Service: "postgres/ping", Err: err}
	}

	return &Store{pool: pool, cb: cb, cfg: cfg, logger: logger}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Backend names this store for logs and metric labels.
func (s *Store) Backend() string {
	return "postgres"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// execute runs fn under the circuit breaker with retries, wrapping any
// failure as an external-service error for the handler layer.
func (s *Store) execute(ctx context.Context, service string, fn func() error) error {
	_, err := s.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, s.cfg, fn)
	})
	if err != nil {
		s.logger.Error("postgres: operation failed",
			zap.String("service", service),
			zap.Error(err),
		)
		return &domain.ErrExternalService{Service: service, Err: err}
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	amount      NUMERIC NOT NULL DEFAULT 0,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT 'EXPENSE',
	supplier    TEXT
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date);

CREATE TABLE IF NOT EXISTS employees (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	type   TEXT NOT NULL DEFAULT 'FIXED',
	cost   NUMERIC NOT NULL DEFAULT 0,
	extras NUMERIC,
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS suppliers (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fixed_expenses (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	default_category TEXT NOT NULL DEFAULT '',
	default_amount   NUMERIC,
	is_recurring     BOOLEAN NOT NULL DEFAULT FALSE
);
ALTER TABLE fixed_expenses ADD COLUMN IF NOT EXISTS is_recurring BOOLEAN NOT NULL DEFAULT FALSE;
`

// InitSchema creates the tables if they do not exist. The trailing ALTER
// repairs databases created before the is_recurring column existed.
func (s *Store) InitSchema(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Postgres.InitSchema")
	defer span.End()

	return s.execute(ctx, "postgres/schema", func() error {
		_, err := s.pool.Exec(ctx, schema)
		return err
	})
}
