package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/service"

	"go.uber.org/zap"
)

func newSessionService(store *mockStore) *service.SessionService {
	return service.NewSessionService(newFinance(store), zap.NewNop())
}

func TestCreateSession(t *testing.T) {
	store := &mockStore{}
	svc := newSessionService(store)

	detail, err := svc.CreateSession(context.Background(), "2025-06-14", "Noche de San Juan")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detail.Title != "Noche de San Juan" {
		t.Errorf("expected title in detail, got %q", detail.Title)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected one marker row, got %d", len(store.transactions))
	}
	marker := store.transactions[0]
	if !marker.Amount.IsZero() || marker.Category != domain.VentaDiaria || marker.Type != domain.Income {
		t.Errorf("unexpected marker row: %+v", marker)
	}
}

func TestCreateSession_DefaultTitle(t *testing.T) {
	svc := newSessionService(&mockStore{})

	detail, err := svc.CreateSession(context.Background(), "2025-06-14", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if detail.Title != "Sesión 2025-06-14" {
		t.Errorf("expected default title, got %q", detail.Title)
	}
}

func TestCreateSession_Rejections(t *testing.T) {
	store := &mockStore{}
	svc := newSessionService(store)
	ctx := context.Background()

	var validation *domain.ErrValidation

	if _, err := svc.CreateSession(ctx, "2025-06-14", "Barra 1"); !errors.As(err, &validation) {
		t.Errorf("reserved source name as title: expected validation error, got %v", err)
	}
	if _, err := svc.CreateSession(ctx, "junio 14", "Fiesta"); !errors.As(err, &validation) {
		t.Errorf("bad date: expected validation error, got %v", err)
	}

	if _, err := svc.CreateSession(ctx, "2025-06-14", "Fiesta"); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.CreateSession(ctx, "2025-06-14", "Otra"); !errors.As(err, &validation) {
		t.Errorf("duplicate session: expected validation error, got %v", err)
	}
}

func TestSaveIncomes_UpsertsAndDeletes(t *testing.T) {
	store := &mockStore{}
	svc := newSessionService(store)
	ctx := context.Background()

	detail, err := svc.SaveIncomes(ctx, "2025-06-14", []domain.SourceAmount{
		{Source: "Barra 1", Amount: dec("120")},
		{Source: "Puerta", Amount: dec("0")},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected exactly one income row, got %d", len(store.transactions))
	}
	if !detail.Summary.TotalIncome.Equal(dec("120")) {
		t.Errorf("expected income 120, got %s", detail.Summary.TotalIncome)
	}

	// Re-saving the same source must reuse the row, not duplicate it.
	firstID := store.transactions[0].ID
	if _, err := svc.SaveIncomes(ctx, "2025-06-14", []domain.SourceAmount{
		{Source: "Barra 1", Amount: dec("150")},
	}); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(store.transactions) != 1 || store.transactions[0].ID != firstID {
		t.Fatalf("expected same row updated in place, got %+v", store.transactions)
	}
	if !store.transactions[0].Amount.Equal(dec("150")) {
		t.Errorf("expected updated amount 150, got %s", store.transactions[0].Amount)
	}

	// Zero deletes the row.
	if _, err := svc.SaveIncomes(ctx, "2025-06-14", []domain.SourceAmount{
		{Source: "Barra 1", Amount: dec("0")},
	}); err != nil {
		t.Fatalf("zero save: %v", err)
	}
	if len(store.transactions) != 0 {
		t.Errorf("expected row deleted on zero amount, got %+v", store.transactions)
	}
}

func TestSaveIncomes_RejectsNegativeAmount(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", Date: "2025-06-14", Amount: dec("120"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
		},
	}
	svc := newSessionService(store)

	_, err := svc.SaveIncomes(context.Background(), "2025-06-14", []domain.SourceAmount{
		{Source: "Barra 1", Amount: dec("-5")},
	})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for negative amount, got %v", err)
	}
	// The existing row must survive untouched; a negative is not a delete.
	if len(store.transactions) != 1 || !store.transactions[0].Amount.Equal(dec("120")) {
		t.Errorf("expected source row untouched, got %+v", store.transactions)
	}
}

func TestSaveIncomes_UnknownSource(t *testing.T) {
	svc := newSessionService(&mockStore{})

	_, err := svc.SaveIncomes(context.Background(), "2025-06-14", []domain.SourceAmount{
		{Source: "Terraza", Amount: dec("50")},
	})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Errorf("expected validation error for unknown source, got %v", err)
	}
}

func TestSavePayments_GuardAgainstOverIncome(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", Date: "2025-06-14", Amount: dec("100"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
		},
	}
	svc := newSessionService(store)

	_, err := svc.SavePayments(context.Background(), "2025-06-14", domain.PaymentBreakdown{
		Cash: dec("60"), Card: dec("50"),
	})
	var validation *domain.ErrValidation
	if !errors.As(err, &validation) {
		t.Fatalf("expected validation error for breakdown over income, got %v", err)
	}
	if len(store.transactions) != 1 {
		t.Errorf("refused breakdown must write nothing, got %+v", store.transactions)
	}
}

func TestSavePayments_WritesBreakdownRows(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "tx-1", Date: "2025-06-14", Amount: dec("100"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
		},
	}
	svc := newSessionService(store)

	detail, err := svc.SavePayments(context.Background(), "2025-06-14", domain.PaymentBreakdown{
		Cash: dec("60"), Card: dec("40"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !detail.Payments.Cash.Equal(dec("60")) || !detail.Payments.Card.Equal(dec("40")) {
		t.Errorf("unexpected payments in detail: %+v", detail.Payments)
	}

	var descs []string
	for _, tx := range store.transactions {
		if tx.Category == domain.DesglosePago {
			descs = append(descs, tx.Description)
		}
	}
	if len(descs) != 2 {
		t.Fatalf("expected two breakdown rows, got %v", descs)
	}
	if descs[0] != "Cobro: Efectivo" || descs[1] != "Cobro: Tarjeta" {
		t.Errorf("unexpected breakdown descriptions: %v", descs)
	}

	// Breakdown rows never count toward financial totals.
	if !detail.Summary.TotalIncome.Equal(dec("100")) {
		t.Errorf("expected income still 100, got %s", detail.Summary.TotalIncome)
	}
}

func TestSetStaffHours(t *testing.T) {
	store := &mockStore{
		employees: []domain.Employee{
			{ID: "emp-1", Name: "Laura", Type: domain.HourlyEmployee, Cost: dec("12.5"), Active: true},
		},
	}
	svc := newSessionService(store)
	ctx := context.Background()

	detail, err := svc.SetStaffHours(ctx, "2025-06-14", "emp-1", dec("4"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected one staff row, got %d", len(store.transactions))
	}
	row := store.transactions[0]
	if row.Description != "Laura (4h)" {
		t.Errorf("expected description 'Laura (4h)', got %q", row.Description)
	}
	if !row.Amount.Equal(dec("50")) {
		t.Errorf("expected amount 50 (4h @ 12.5), got %s", row.Amount)
	}
	if len(detail.Staff) != 1 || !detail.Staff[0].Hours.Equal(dec("4")) {
		t.Errorf("expected 4 hours in detail, got %+v", detail.Staff)
	}

	// Updating replaces the row in place.
	if _, err := svc.SetStaffHours(ctx, "2025-06-14", "emp-1", dec("6")); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(store.transactions) != 1 || !store.transactions[0].Amount.Equal(dec("75")) {
		t.Errorf("expected single row at 75, got %+v", store.transactions)
	}

	// Zero hours deletes the entry.
	if _, err := svc.SetStaffHours(ctx, "2025-06-14", "emp-1", dec("0")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.transactions) != 0 {
		t.Errorf("expected staff row deleted, got %+v", store.transactions)
	}
}

func TestSetStaffHours_Rejections(t *testing.T) {
	store := &mockStore{
		employees: []domain.Employee{
			{ID: "emp-2", Name: "Pedro", Type: domain.FixedEmployee, Cost: dec("1500"), Active: true},
		},
	}
	svc := newSessionService(store)
	ctx := context.Background()

	var notFound *domain.ErrNotFound
	if _, err := svc.SetStaffHours(ctx, "2025-06-14", "missing", dec("4")); !errors.As(err, &notFound) {
		t.Errorf("unknown employee: expected not-found error, got %v", err)
	}

	var validation *domain.ErrValidation
	if _, err := svc.SetStaffHours(ctx, "2025-06-14", "emp-2", dec("4")); !errors.As(err, &validation) {
		t.Errorf("fixed employee: expected validation error, got %v", err)
	}
}

func TestSessions_ListedNewestFirst(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "t1", Date: "2025-06-13", Amount: dec("80"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
			{ID: "t2", Date: "2025-06-14", Amount: dec("120"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
			{ID: "t3", Date: "2025-06-01", Amount: dec("1000"), Description: "Alquiler junio", Category: domain.Alquiler, Type: domain.Expense},
		},
	}
	svc := newSessionService(store)

	sessions := svc.Sessions(context.Background())
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions (structure rows never open one), got %d", len(sessions))
	}
	if sessions[0].Date != "2025-06-14" || sessions[1].Date != "2025-06-13" {
		t.Errorf("expected newest first, got %s then %s", sessions[0].Date, sessions[1].Date)
	}
}

func TestSession_NotFound(t *testing.T) {
	svc := newSessionService(&mockStore{})

	_, err := svc.Session(context.Background(), "2025-06-14")
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestDeleteSession_RemovesWholeDate(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "t1", Date: "2025-06-14", Amount: dec("120"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
			{ID: "t2", Date: "2025-06-14", Amount: dec("30"), Description: "Hielo", Category: domain.GastoCaja, Type: domain.Expense},
			{ID: "t3", Date: "2025-06-13", Amount: dec("80"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
		},
	}
	svc := newSessionService(store)

	if err := svc.DeleteSession(context.Background(), "2025-06-14"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.transactions) != 1 || store.transactions[0].ID != "t3" {
		t.Errorf("expected only the other date to remain, got %+v", store.transactions)
	}
}
