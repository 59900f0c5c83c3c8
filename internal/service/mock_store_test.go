package service_test

import (
	"context"
	"time"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/infra/cache"
	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/port"
	"github.com/fredydc1/neonflow-api/internal/service"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// --- Mock store ---

// mockStore is an in-memory FinanceStore. Upserts keep insertion order so
// tests can assert stable list output. listErr fails reads, writeErr fails
// writes.
type mockStore struct {
	transactions []domain.Transaction
	employees    []domain.Employee
	suppliers    []domain.Supplier
	fixed        []domain.FixedExpenseItem
	listErr      error
	writeErr     error
}

func (m *mockStore) ListTransactions(_ context.Context) ([]domain.Transaction, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Transaction, len(m.transactions))
	copy(out, m.transactions)
	return out, nil
}

func (m *mockStore) UpsertTransaction(_ context.Context, t *domain.Transaction) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.transactions {
		if m.transactions[i].ID == t.ID {
			m.transactions[i] = *t
			return nil
		}
	}
	m.transactions = append(m.transactions, *t)
	return nil
}

func (m *mockStore) DeleteTransaction(_ context.Context, id string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	out := m.transactions[:0]
	for _, t := range m.transactions {
		if t.ID != id {
			out = append(out, t)
		}
	}
	m.transactions = out
	return nil
}

func (m *mockStore) DeleteTransactionsByDate(_ context.Context, date string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	out := m.transactions[:0]
	for _, t := range m.transactions {
		if t.Date != date {
			out = append(out, t)
		}
	}
	m.transactions = out
	return nil
}

func (m *mockStore) ListEmployees(_ context.Context) ([]domain.Employee, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Employee, len(m.employees))
	copy(out, m.employees)
	return out, nil
}

func (m *mockStore) UpsertEmployee(_ context.Context, e *domain.Employee) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.employees {
		if m.employees[i].ID == e.ID {
			m.employees[i] = *e
			return nil
		}
	}
	m.employees = append(m.employees, *e)
	return nil
}

func (m *mockStore) DeleteEmployee(_ context.Context, id string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	out := m.employees[:0]
	for _, e := range m.employees {
		if e.ID != id {
			out = append(out, e)
		}
	}
	m.employees = out
	return nil
}

func (m *mockStore) ListSuppliers(_ context.Context) ([]domain.Supplier, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Supplier, len(m.suppliers))
	copy(out, m.suppliers)
	return out, nil
}

func (m *mockStore) UpsertSupplier(_ context.Context, s *domain.Supplier) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.suppliers {
		if m.suppliers[i].ID == s.ID {
			m.suppliers[i] = *s
			return nil
		}
	}
	m.suppliers = append(m.suppliers, *s)
	return nil
}

func (m *mockStore) DeleteSupplier(_ context.Context, id string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	out := m.suppliers[:0]
	for _, s := range m.suppliers {
		if s.ID != id {
			out = append(out, s)
		}
	}
	m.suppliers = out
	return nil
}

func (m *mockStore) ListFixedExpenses(_ context.Context) ([]domain.FixedExpenseItem, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.FixedExpenseItem, len(m.fixed))
	copy(out, m.fixed)
	return out, nil
}

func (m *mockStore) UpsertFixedExpense(_ context.Context, f *domain.FixedExpenseItem) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.fixed {
		if m.fixed[i].ID == f.ID {
			m.fixed[i] = *f
			return nil
		}
	}
	m.fixed = append(m.fixed, *f)
	return nil
}

func (m *mockStore) DeleteFixedExpense(_ context.Context, id string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	out := m.fixed[:0]
	for _, f := range m.fixed {
		if f.ID != id {
			out = append(out, f)
		}
	}
	m.fixed = out
	return nil
}

func (m *mockStore) InitSchema(_ context.Context) error {
	return m.writeErr
}

func (m *mockStore) Ping(_ context.Context) error {
	return m.listErr
}

func (m *mockStore) Backend() string { return "mock" }

// newFinance wires a FinanceService over the given store with test caches.
func newFinance(store port.FinanceStore) *service.FinanceService {
	return service.NewFinanceService(
		store,
		cache.New[[]domain.Transaction](time.Minute),
		cache.New[[]domain.Employee](time.Minute),
		cache.New[[]domain.Supplier](time.Minute),
		cache.New[[]domain.FixedExpenseItem](time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}
