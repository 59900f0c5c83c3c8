package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/port"
)

var advisorTracer = otel.Tracer("service/advisor")

// User-facing fallback texts. The analysis feature degrades to these
// instead of failing the request: the advisor is advisory.
const (
	adviceNoKey = "API Key no configurada. Por favor, asegúrate de tener acceso a la API de Gemini."
	adviceError = "Hubo un error al conectar con el analista virtual. Inténtalo más tarde."
)

// recentLimit bounds how many transactions go into the prompt.
const recentLimit = 20

// AdvisorService produces a free-text financial analysis of recent
// activity. advisor may be nil (no credential configured).
type AdvisorService struct {
	finance *FinanceService
	advisor port.Advisor
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewAdvisorService creates the advisor service.
func NewAdvisorService(finance *FinanceService, advisor port.Advisor, metrics *observability.Metrics, logger *zap.Logger) *AdvisorService {
	return &AdvisorService{finance: finance, advisor: advisor, metrics: metrics, logger: logger}
}

// Analyze builds the analyst prompt from the most recent transactions and
// returns the model's text, or a fixed fallback when the advisor is not
// configured or fails. Never returns an error to the caller.
func (s *AdvisorService) Analyze(ctx context.Context) string {
	ctx, span := advisorTracer.Start(ctx, "AdvisorService.Analyze")
	defer span.End()

	if s.advisor == nil {
		s.metrics.IncrAdvisorRequest("fallback")
		return adviceNoKey
	}

	transactions := s.finance.Transactions(ctx)
	prompt := buildAnalysisPrompt(transactions)

	text, err := s.advisor.Advise(ctx, prompt)
	if err != nil {
		s.metrics.IncrAdvisorRequest("fallback")
		s.logger.Error("advisor analysis failed", zap.Error(err))
		return adviceError
	}

	s.metrics.IncrAdvisorRequest("success")
	return text
}

func buildAnalysisPrompt(transactions []domain.Transaction) string {
	limit := len(transactions)
	if limit > recentLimit {
		limit = recentLimit
	}

	lines := make([]string, 0, limit)
	for _, t := range transactions[:limit] {
		lines = append(lines, fmt.Sprintf("%s: %s de $%s (%s) - %s",
			t.Date, t.Type, t.Amount, t.Category, t.Description))
	}

	return fmt.Sprintf(`Actúa como un analista financiero experto para pequeños negocios.
Analiza las siguientes transacciones recientes de mi negocio:

%s

Proporciona un resumen breve de 3 puntos clave:
1. Una observación sobre la salud financiera.
2. Una tendencia notable en gastos o ingresos.
3. Una recomendación accionable para mejorar la rentabilidad.

Mantén el tono profesional pero alentador. Usa formato Markdown.`,
		strings.Join(lines, "\n"))
}
