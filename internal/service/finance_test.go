package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/infra/cache"
	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/service"
)

func TestSaveTransaction_AssignsIDAndReturnsList(t *testing.T) {
	store := &mockStore{}
	svc := newFinance(store)

	tx := &domain.Transaction{
		Date:        "2025-06-14",
		Amount:      dec("120"),
		Description: "Barra 1",
		Category:    domain.VentaDiaria,
		Type:        domain.Income,
	}

	list, err := svc.SaveTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if tx.ID == "" {
		t.Error("expected a generated id for blank-id transaction")
	}
	if len(list) != 1 || list[0].ID != tx.ID {
		t.Fatalf("expected the saved row in the returned list, got %+v", list)
	}
}

func TestSaveTransaction_UpsertIsIdempotent(t *testing.T) {
	store := &mockStore{}
	svc := newFinance(store)

	tx := &domain.Transaction{
		ID:       "tx-1",
		Date:     "2025-06-14",
		Amount:   dec("120"),
		Category: domain.VentaDiaria,
		Type:     domain.Income,
	}
	if _, err := svc.SaveTransaction(context.Background(), tx); err != nil {
		t.Fatalf("first save: %v", err)
	}

	tx.Amount = dec("150")
	list, err := svc.SaveTransaction(context.Background(), tx)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one row after re-saving the same id, got %d", len(list))
	}
	if !list[0].Amount.Equal(dec("150")) {
		t.Errorf("expected updated amount 150, got %s", list[0].Amount)
	}
}

func TestSaveTransaction_Validation(t *testing.T) {
	svc := newFinance(&mockStore{})

	cases := []domain.Transaction{
		{Date: "14/06/2025", Amount: dec("10"), Category: domain.Otros, Type: domain.Expense},
		{Date: "2025-06-14", Amount: dec("-10"), Category: domain.Otros, Type: domain.Expense},
		{Date: "2025-06-14", Amount: dec("10"), Category: domain.Otros, Type: "TRANSFER"},
		{Date: "2025-06-14", Amount: dec("10"), Type: domain.Expense},
	}
	for i, c := range cases {
		tx := c
		_, err := svc.SaveTransaction(context.Background(), &tx)
		var validation *domain.ErrValidation
		if !errors.As(err, &validation) {
			t.Errorf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestWritesRejectedWhenDisconnected(t *testing.T) {
	svc := newFinance(nil)
	ctx := context.Background()

	var notConnected *domain.ErrNotConnected

	_, err := svc.SaveTransaction(ctx, &domain.Transaction{
		Date: "2025-06-14", Amount: dec("10"), Category: domain.Otros, Type: domain.Expense,
	})
	if !errors.As(err, &notConnected) {
		t.Errorf("SaveTransaction: expected not-connected error, got %v", err)
	}

	_, err = svc.SaveEmployee(ctx, &domain.Employee{Name: "Laura", Type: domain.HourlyEmployee, Cost: dec("12")})
	if !errors.As(err, &notConnected) {
		t.Errorf("SaveEmployee: expected not-connected error, got %v", err)
	}

	if err := svc.InitSchema(ctx); !errors.As(err, &notConnected) {
		t.Errorf("InitSchema: expected not-connected error, got %v", err)
	}
}

func TestReadsDegradeToEmpty(t *testing.T) {
	store := &mockStore{listErr: errors.New("connection refused")}
	svc := newFinance(store)
	ctx := context.Background()

	if got := svc.Transactions(ctx); got == nil || len(got) != 0 {
		t.Errorf("expected empty transaction list on read failure, got %v", got)
	}
	if got := svc.Employees(ctx); got == nil || len(got) != 0 {
		t.Errorf("expected empty employee list on read failure, got %v", got)
	}
	if got := svc.Suppliers(ctx); got == nil || len(got) != 0 {
		t.Errorf("expected empty supplier list on read failure, got %v", got)
	}
	if got := svc.FixedExpenses(ctx); got == nil || len(got) != 0 {
		t.Errorf("expected empty fixed-expense list on read failure, got %v", got)
	}
}

func TestReadsEmptyWhenDisconnected(t *testing.T) {
	svc := newFinance(nil)

	if got := svc.Transactions(context.Background()); got == nil || len(got) != 0 {
		t.Errorf("expected empty list in disconnected mode, got %v", got)
	}
	if err := svc.Ready(context.Background()); err != nil {
		t.Errorf("disconnected mode must report ready, got %v", err)
	}
}

func TestDeleteEmployee_LeavesTransactionsIntact(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", Date: "2025-06-14", Amount: dec("50"), Description: "Laura (4h)", Category: domain.PersonalHoras, Type: domain.Expense},
		},
		employees: []domain.Employee{
			{ID: "emp-1", Name: "Laura", Type: domain.HourlyEmployee, Cost: dec("12.5"), Active: true},
		},
	}
	svc := newFinance(store)

	list, err := svc.DeleteEmployee(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty roster, got %+v", list)
	}
	if len(store.transactions) != 1 {
		t.Errorf("deleting an employee must not touch historical transactions, got %+v", store.transactions)
	}
}

func TestSaveEmployee_Validation(t *testing.T) {
	svc := newFinance(&mockStore{})
	ctx := context.Background()

	var validation *domain.ErrValidation

	_, err := svc.SaveEmployee(ctx, &domain.Employee{Type: domain.HourlyEmployee, Cost: dec("12")})
	if !errors.As(err, &validation) {
		t.Errorf("missing name: expected validation error, got %v", err)
	}
	_, err = svc.SaveEmployee(ctx, &domain.Employee{Name: "Laura", Type: "CONTRACTOR", Cost: dec("12")})
	if !errors.As(err, &validation) {
		t.Errorf("bad type: expected validation error, got %v", err)
	}
	_, err = svc.SaveEmployee(ctx, &domain.Employee{Name: "Laura", Type: domain.FixedEmployee, Cost: dec("-1")})
	if !errors.As(err, &validation) {
		t.Errorf("negative cost: expected validation error, got %v", err)
	}
}

func TestTransactions_ServedFromCacheAfterReload(t *testing.T) {
	store := &mockStore{}
	svc := newFinance(store)
	ctx := context.Background()

	if _, err := svc.SaveTransaction(ctx, &domain.Transaction{
		ID: "tx-1", Date: "2025-06-14", Amount: dec("10"), Category: domain.Otros, Type: domain.Expense,
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// The post-write reload primed the cache; a store outage now must not
	// be visible to readers.
	store.listErr = errors.New("connection refused")
	list := svc.Transactions(ctx)
	if len(list) != 1 {
		t.Errorf("expected cached list of 1, got %d", len(list))
	}
}

func TestReadFailure_CountsErrorAgainstActiveBackend(t *testing.T) {
	store := &mockStore{listErr: errors.New("connection reset")}
	metrics := observability.NewMetrics()
	svc := service.NewFinanceService(
		store,
		cache.New[[]domain.Transaction](time.Minute),
		cache.New[[]domain.Employee](time.Minute),
		cache.New[[]domain.Supplier](time.Minute),
		cache.New[[]domain.FixedExpenseItem](time.Minute),
		metrics,
		zap.NewNop(),
	)

	if got := svc.Transactions(context.Background()); len(got) != 0 {
		t.Fatalf("expected empty list on store failure, got %d entries", len(got))
	}

	families, err := metrics.Registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var label string
	var count float64
	for _, mf := range families {
		if mf.GetName() != "neonflow_store_errors_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			count = m.GetCounter().GetValue()
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "store" {
					label = lp.GetValue()
				}
			}
		}
	}
	if label != store.Backend() || count != 1 {
		t.Errorf("expected one store error labeled %q, got label %q count %v", store.Backend(), label, count)
	}
}
