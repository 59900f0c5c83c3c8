// Package service provides the business logic layer (use cases).
// FinanceService handles entity CRUD; SessionService reconciles daily cash
// sessions; ReportService aggregates; AdvisorService talks to the AI analyst.
package service

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/port"
)

var financeTracer = otel.Tracer("service/finance")

// Cache keys, one per entity list.
const (
	cacheTransactions  = "transactions"
	cacheEmployees     = "employees"
	cacheSuppliers     = "suppliers"
	cacheFixedExpenses = "fixed_expenses"
)

// FinanceService orchestrates entity CRUD against the configured store.
// The store may be nil (disconnected mode): reads yield empty lists and
// writes fail with the distinguished not-connected error, so a client can
// prompt for configuration instead of treating it as an outage.
type FinanceService struct {
	store    port.FinanceStore
	txCache  port.Cache[[]domain.Transaction]
	empCache port.Cache[[]domain.Employee]
	supCache port.Cache[[]domain.Supplier]
	feCache  port.Cache[[]domain.FixedExpenseItem]
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewFinanceService creates the finance service. store may be nil.
func NewFinanceService(
	store port.FinanceStore,
	txCache port.Cache[[]domain.Transaction],
	empCache port.Cache[[]domain.Employee],
	supCache port.Cache[[]domain.Supplier],
	feCache port.Cache[[]domain.FixedExpenseItem],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *FinanceService {
	return &FinanceService{
		store:    store,
		txCache:  txCache,
		empCache: empCache,
		supCache: supCache,
		feCache:  feCache,
		metrics:  metrics,
		logger:   logger,
	}
}

// Connected reports whether a persistence store is configured.
func (s *FinanceService) Connected() bool {
	return s.store != nil
}

// Ready checks store connectivity. Disconnected mode is reported as ready:
// the API is functional, just empty.
func (s *FinanceService) Ready(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Ping(ctx)
}

// InitSchema creates the store tables idempotently.
func (s *FinanceService) InitSchema(ctx context.Context) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.InitSchema")
	defer span.End()

	if s.store == nil {
		return &domain.ErrNotConnected{}
	}
	return s.store.InitSchema(ctx)
}

// ============================================================
// Transactions
// ============================================================

// Transactions returns every transaction, newest first. Read failures
// degrade to an empty list so the dashboard stays usable offline.
func (s *FinanceService) Transactions(ctx context.Context) []domain.Transaction {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Transactions")
	defer span.End()

	if s.store == nil {
		return []domain.Transaction{}
	}
	if cached, ok := s.txCache.Get(cacheTransactions); ok {
		s.metrics.IncrCacheHit(cacheTransactions)
		return cached
	}
	s.metrics.IncrCacheMiss(cacheTransactions)

	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		s.metrics.IncrStoreError(s.store.Backend())
		s.logger.Warn("list transactions failed, serving empty list", zap.Error(err))
		return []domain.Transaction{}
	}
	s.txCache.Set(cacheTransactions, list)
	return list
}

// SaveTransaction validates and upserts a transaction, then returns the
// updated list read back from the store. A blank id is assigned a new uuid.
func (s *FinanceService) SaveTransaction(ctx context.Context, t *domain.Transaction) ([]domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.SaveTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.date", t.Date))

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if err := validateTransaction(t); err != nil {
		return nil, err
	}
	if t.ID == "" {
		t.ID = uuid.New().String()
	}

	if err := s.store.UpsertTransaction(ctx, t); err != nil {
		return nil, err
	}
	s.txCache.Delete(cacheTransactions)

	s.logger.Info("transaction saved",
		zap.String("id", t.ID),
		zap.String("date", t.Date),
		zap.String("category", string(t.Category)),
	)
	return s.reloadTransactions(ctx), nil
}

// DeleteTransaction removes one transaction and returns the updated list.
func (s *FinanceService) DeleteTransaction(ctx context.Context, id string) ([]domain.Transaction, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if id == "" {
		return nil, &domain.ErrValidation{Field: "id", Message: "required"}
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return nil, err
	}
	s.txCache.Delete(cacheTransactions)
	return s.reloadTransactions(ctx), nil
}

// DeleteTransactionsByDate removes every row on a calendar day.
func (s *FinanceService) DeleteTransactionsByDate(ctx context.Context, date string) error {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteTransactionsByDate")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.date", date))

	if s.store == nil {
		return &domain.ErrNotConnected{}
	}
	if !domain.ValidDate(date) {
		return &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	if err := s.store.DeleteTransactionsByDate(ctx, date); err != nil {
		return err
	}
	s.txCache.Delete(cacheTransactions)
	s.logger.Info("transactions deleted for date", zap.String("date", date))
	return nil
}

// reloadTransactions reads the list back after a confirmed write. A failed
// re-read degrades like any read; the write already succeeded.
func (s *FinanceService) reloadTransactions(ctx context.Context) []domain.Transaction {
	list, err := s.store.ListTransactions(ctx)
	if err != nil {
		s.metrics.IncrStoreError(s.store.Backend())
		s.logger.Warn("reload transactions failed", zap.Error(err))
		return []domain.Transaction{}
	}
	s.txCache.Set(cacheTransactions, list)
	return list
}

func validateTransaction(t *domain.Transaction) error {
	if !domain.ValidDate(t.Date) {
		return &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if t.Amount.IsNegative() {
		return &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
	}
	if t.Type != domain.Income && t.Type != domain.Expense {
		return &domain.ErrValidation{Field: "type", Message: "must be INCOME or EXPENSE"}
	}
	if t.Category == "" {
		return &domain.ErrValidation{Field: "category", Message: "required"}
	}
	return nil
}

// ============================================================
// Employees
// ============================================================

func (s *FinanceService) Employees(ctx context.Context) []domain.Employee {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Employees")
	defer span.End()

	if s.store == nil {
		return []domain.Employee{}
	}
	if cached, ok := s.empCache.Get(cacheEmployees); ok {
		s.metrics.IncrCacheHit(cacheEmployees)
		return cached
	}
	s.metrics.IncrCacheMiss(cacheEmployees)

	list, err := s.store.ListEmployees(ctx)
	if err != nil {
		s.metrics.IncrStoreError(s.store.Backend())
		s.logger.Warn("list employees failed, serving empty list", zap.Error(err))
		return []domain.Employee{}
	}
	s.empCache.Set(cacheEmployees, list)
	return list
}

func (s *FinanceService) SaveEmployee(ctx context.Context, e *domain.Employee) ([]domain.Employee, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.SaveEmployee")
	defer span.End()

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if e.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if e.Type != domain.FixedEmployee && e.Type != domain.HourlyEmployee {
		return nil, &domain.ErrValidation{Field: "type", Message: "must be FIXED or HOURLY"}
	}
	if e.Cost.IsNegative() {
		return nil, &domain.ErrValidation{Field: "cost", Message: "must not be negative"}
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	if err := s.store.UpsertEmployee(ctx, e); err != nil {
		return nil, err
	}
	s.empCache.Delete(cacheEmployees)

	list, err := s.store.ListEmployees(ctx)
	if err != nil {
		s.logger.Warn("reload employees failed", zap.Error(err))
		return []domain.Employee{}, nil
	}
	s.empCache.Set(cacheEmployees, list)
	return list, nil
}

// DeleteEmployee removes a roster entry. Historical transactions that carry
// the employee's name in their description are intentionally untouched.
func (s *FinanceService) DeleteEmployee(ctx context.Context, id string) ([]domain.Employee, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteEmployee")
	defer span.End()
	span.SetAttributes(attribute.String("employee.id", id))

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		return nil, err
	}
	s.empCache.Delete(cacheEmployees)

	list, err := s.store.ListEmployees(ctx)
	if err != nil {
		s.logger.Warn("reload employees failed", zap.Error(err))
		return []domain.Employee{}, nil
	}
	s.empCache.Set(cacheEmployees, list)
	return list, nil
}

// ============================================================
// Suppliers
// ============================================================

func (s *FinanceService) Suppliers(ctx context.Context) []domain.Supplier {
	ctx, span := financeTracer.Start(ctx, "FinanceService.Suppliers")
	defer span.End()

	if s.store == nil {
		return []domain.Supplier{}
	}
	if cached, ok := s.supCache.Get(cacheSuppliers); ok {
		s.metrics.IncrCacheHit(cacheSuppliers)
		return cached
	}
	s.metrics.IncrCacheMiss(cacheSuppliers)

	list, err := s.store.ListSuppliers(ctx)
	if err != nil {
		s.metrics.IncrStoreError(s.store.Backend())
		s.logger.Warn("list suppliers failed, serving empty list", zap.Error(err))
		return []domain.Supplier{}
	}
	s.supCache.Set(cacheSuppliers, list)
	return list
}

func (s *FinanceService) SaveSupplier(ctx context.Context, sup *domain.Supplier) ([]domain.Supplier, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.SaveSupplier")
	defer span.End()

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if sup.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if sup.ID == "" {
		sup.ID = uuid.New().String()
	}

	if err := s.store.UpsertSupplier(ctx, sup); err != nil {
		return nil, err
	}
	s.supCache.Delete(cacheSuppliers)

	list, err := s.store.ListSuppliers(ctx)
	if err != nil {
		s.logger.Warn("reload suppliers failed", zap.Error(err))
		return []domain.Supplier{}, nil
	}
	s.supCache.Set(cacheSuppliers, list)
	return list, nil
}

func (s *FinanceService) DeleteSupplier(ctx context.Context, id string) ([]domain.Supplier, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteSupplier")
	defer span.End()
	span.SetAttributes(attribute.String("supplier.id", id))

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if err := s.store.DeleteSupplier(ctx, id); err != nil {
		return nil, err
	}
	s.supCache.Delete(cacheSuppliers)

	list, err := s.store.ListSuppliers(ctx)
	if err != nil {
		s.logger.Warn("reload suppliers failed", zap.Error(err))
		return []domain.Supplier{}, nil
	}
	s.supCache.Set(cacheSuppliers, list)
	return list, nil
}

// ============================================================
// Fixed expenses
// ============================================================

func (s *FinanceService) FixedExpenses(ctx context.Context) []domain.FixedExpenseItem {
	ctx, span := financeTracer.Start(ctx, "FinanceService.FixedExpenses")
	defer span.End()

	if s.store == nil {
		return []domain.FixedExpenseItem{}
	}
	if cached, ok := s.feCache.Get(cacheFixedExpenses); ok {
		s.metrics.IncrCacheHit(cacheFixedExpenses)
		return cached
	}
	s.metrics.IncrCacheMiss(cacheFixedExpenses)

	list, err := s.store.ListFixedExpenses(ctx)
	if err != nil {
		s.metrics.IncrStoreError(s.store.Backend())
		s.logger.Warn("list fixed expenses failed, serving empty list", zap.Error(err))
		return []domain.FixedExpenseItem{}
	}
	s.feCache.Set(cacheFixedExpenses, list)
	return list
}

func (s *FinanceService) SaveFixedExpense(ctx context.Context, f *domain.FixedExpenseItem) ([]domain.FixedExpenseItem, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.SaveFixedExpense")
	defer span.End()

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if f.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "required"}
	}
	if f.DefaultAmount != nil && f.DefaultAmount.IsNegative() {
		return nil, &domain.ErrValidation{Field: "defaultAmount", Message: "must not be negative"}
	}
	if f.ID == "" {
		f.ID = uuid.New().String()
	}

	if err := s.store.UpsertFixedExpense(ctx, f); err != nil {
		return nil, err
	}
	s.feCache.Delete(cacheFixedExpenses)

	list, err := s.store.ListFixedExpenses(ctx)
	if err != nil {
		s.logger.Warn("reload fixed expenses failed", zap.Error(err))
		return []domain.FixedExpenseItem{}, nil
	}
	s.feCache.Set(cacheFixedExpenses, list)
	return list, nil
}

func (s *FinanceService) DeleteFixedExpense(ctx context.Context, id string) ([]domain.FixedExpenseItem, error) {
	ctx, span := financeTracer.Start(ctx, "FinanceService.DeleteFixedExpense")
	defer span.End()
	span.SetAttributes(attribute.String("fixed_expense.id", id))

	if s.store == nil {
		return nil, &domain.ErrNotConnected{}
	}
	if err := s.store.DeleteFixedExpense(ctx, id); err != nil {
		return nil, err
	}
	s.feCache.Delete(cacheFixedExpenses)

	list, err := s.store.ListFixedExpenses(ctx)
	if err != nil {
		s.logger.Warn("reload fixed expenses failed", zap.Error(err))
		return []domain.FixedExpenseItem{}, nil
	}
	s.feCache.Set(cacheFixedExpenses, list)
	return list, nil
}
