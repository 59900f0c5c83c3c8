package domain_test

import (
	"testing"

	"github.com/fredydc1/neonflow-api/internal/domain"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSummarize_Empty(t *testing.T) {
	s := domain.Summarize(nil)
	if !s.TotalIncome.IsZero() || !s.TotalExpense.IsZero() || !s.NetBalance.IsZero() {
		t.Errorf("expected zero summary, got %+v", s)
	}
}

func TestSummarize_NetIdentity(t *testing.T) {
	rows := []domain.Transaction{
		{ID: "t1", Type: domain.Income, Amount: dec("1200.50"), Category: domain.VentaDiaria},
		{ID: "t2", Type: domain.Expense, Amount: dec("300.25"), Category: domain.GastoCaja},
		{ID: "t3", Type: domain.Expense, Amount: dec("99.75"), Category: domain.Suministros},
		{ID: "t4", Type: domain.Income, Amount: dec("50"), Category: domain.OtrosIngresos},
	}

	s := domain.Summarize(rows)
	if !s.TotalIncome.Equal(dec("1250.50")) {
		t.Errorf("expected income 1250.50, got %s", s.TotalIncome)
	}
	if !s.TotalExpense.Equal(dec("400")) {
		t.Errorf("expected expense 400, got %s", s.TotalExpense)
	}
	if !s.NetBalance.Equal(s.TotalIncome.Sub(s.TotalExpense)) {
		t.Errorf("net %s does not equal income-expense", s.NetBalance)
	}
}

func TestSummarize_OrderIndependent(t *testing.T) {
	rows := []domain.Transaction{
		{ID: "t1", Type: domain.Income, Amount: dec("10")},
		{ID: "t2", Type: domain.Expense, Amount: dec("4")},
		{ID: "t3", Type: domain.Income, Amount: dec("6")},
	}
	reversed := []domain.Transaction{rows[2], rows[1], rows[0]}

	a := domain.Summarize(rows)
	b := domain.Summarize(reversed)
	if !a.NetBalance.Equal(b.NetBalance) || !a.TotalIncome.Equal(b.TotalIncome) {
		t.Errorf("summaries differ by order: %+v vs %+v", a, b)
	}
}

func TestCleanTotals_ExcludesPaymentBreakdown(t *testing.T) {
	rows := []domain.Transaction{
		{ID: "t1", Type: domain.Income, Amount: dec("100"), Category: domain.VentaDiaria},
		{ID: "t2", Type: domain.Income, Amount: dec("100"), Category: domain.DesglosePago, Description: "Cobro: Efectivo"},
	}

	s := domain.CleanTotals(rows)
	if !s.TotalIncome.Equal(dec("100")) {
		t.Errorf("expected breakdown row excluded, got income %s", s.TotalIncome)
	}
}
