package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/service"

	"go.uber.org/zap"
)

type mockAdvisor struct {
	text   string
	err    error
	prompt string
}

func (m *mockAdvisor) Advise(_ context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.text, m.err
}

func TestAnalyze_NoAdvisorConfigured(t *testing.T) {
	svc := service.NewAdvisorService(newFinance(&mockStore{}), nil, observability.NewMetrics(), zap.NewNop())

	got := svc.Analyze(context.Background())
	want := "API Key no configurada. Por favor, asegúrate de tener acceso a la API de Gemini."
	if got != want {
		t.Errorf("expected no-key fallback, got %q", got)
	}
}

func TestAnalyze_AdvisorFailure(t *testing.T) {
	advisor := &mockAdvisor{err: errors.New("quota exceeded")}
	svc := service.NewAdvisorService(newFinance(&mockStore{}), advisor, observability.NewMetrics(), zap.NewNop())

	got := svc.Analyze(context.Background())
	want := "Hubo un error al conectar con el analista virtual. Inténtalo más tarde."
	if got != want {
		t.Errorf("expected error fallback, got %q", got)
	}
}

func TestAnalyze_PromptContainsRecentActivity(t *testing.T) {
	store := &mockStore{
		transactions: []domain.Transaction{
			{ID: "t1", Date: "2025-06-14", Amount: dec("120"), Description: "Barra 1", Category: domain.VentaDiaria, Type: domain.Income},
		},
	}
	advisor := &mockAdvisor{text: "## Análisis\nTodo bien."}
	svc := service.NewAdvisorService(newFinance(store), advisor, observability.NewMetrics(), zap.NewNop())

	got := svc.Analyze(context.Background())
	if got != "## Análisis\nTodo bien." {
		t.Errorf("expected model text passed through, got %q", got)
	}
	if !strings.Contains(advisor.prompt, "analista financiero experto") {
		t.Errorf("prompt missing analyst framing: %q", advisor.prompt)
	}
	if !strings.Contains(advisor.prompt, "2025-06-14: INCOME de $120 (Venta Diaria) - Barra 1") {
		t.Errorf("prompt missing transaction line: %q", advisor.prompt)
	}
	if !strings.Contains(advisor.prompt, "Usa formato Markdown.") {
		t.Errorf("prompt missing formatting instruction: %q", advisor.prompt)
	}
}

func TestAnalyze_PromptBoundedToRecentTransactions(t *testing.T) {
	store := &mockStore{}
	for i := 0; i < 30; i++ {
		store.transactions = append(store.transactions, domain.Transaction{
			ID:          fmt.Sprintf("t%02d", i),
			Date:        "2025-06-14",
			Amount:      dec("10"),
			Description: fmt.Sprintf("Gasto %02d", i),
			Category:    domain.GastoCaja,
			Type:        domain.Expense,
		})
	}
	advisor := &mockAdvisor{text: "ok"}
	svc := service.NewAdvisorService(newFinance(store), advisor, observability.NewMetrics(), zap.NewNop())

	svc.Analyze(context.Background())
	if strings.Contains(advisor.prompt, "Gasto 20") {
		t.Errorf("expected prompt capped at 20 transactions, found the 21st: %q", advisor.prompt)
	}
	if !strings.Contains(advisor.prompt, "Gasto 19") {
		t.Errorf("expected the 20th transaction present: %q", advisor.prompt)
	}
}
