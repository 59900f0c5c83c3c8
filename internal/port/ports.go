// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

// FinanceStore persists the four entity tables. Implemented by the Postgres
// adapter and by the local sqlite fallback; both honor the same contract.
// Upserts are keyed by id; Delete of a missing id is a no-op.
type FinanceStore interface {
	// Backend names the underlying store for logs and metric labels.
	Backend() string

	// Transactions
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	UpsertTransaction(ctx context.Context, t *domain.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	// DeleteTransactionsByDate removes every row sharing the calendar date,
	// across all categories, in a single statement.
	DeleteTransactionsByDate(ctx context.Context, date string) error

	// Employees
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
	UpsertEmployee(ctx context.Context, e *domain.Employee) error
	DeleteEmployee(ctx context.Context, id string) error

	// Suppliers
	ListSuppliers(ctx context.Context) ([]domain.Supplier, error)
	UpsertSupplier(ctx context.Context, s *domain.Supplier) error
	DeleteSupplier(ctx context.Context, id string) error

	// Fixed expense items
	ListFixedExpenses(ctx context.Context) ([]domain.FixedExpenseItem, error)
	UpsertFixedExpense(ctx context.Context, f *domain.FixedExpenseItem) error
	DeleteFixedExpense(ctx context.Context, id string) error

	// InitSchema creates the four tables idempotently if absent.
	InitSchema(ctx context.Context) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
}

// Advisor produces a free-text financial analysis for a prompt.
type Advisor interface {
	Advise(ctx context.Context, prompt string) (string, error)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
