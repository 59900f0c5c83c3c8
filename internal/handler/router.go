package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fredydc1/neonflow-api/internal/infra/observability"
	"github.com/fredydc1/neonflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(
	finance *service.FinanceService,
	sessions *service.SessionService,
	reports *service.ReportService,
	advisor *service.AdvisorService,
	authSvc *service.AuthService,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(metricsMiddleware(metrics))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(finance))
	r.Get("/readyz", readyzHandler(finance, logger))
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. Autenticación
		// POST /v1/auth/login
		// =============================================
		r.Post("/auth/login", authLoginHandler(authSvc, logger))

		// =============================================
		// 2. Lecturas (abiertas)
		// =============================================
		r.Get("/transactions", listTransactionsHandler(finance, logger))
		r.Get("/employees", listEmployeesHandler(finance, logger))
		r.Get("/suppliers", listSuppliersHandler(finance, logger))
		r.Get("/fixed-expenses", listFixedExpensesHandler(finance, logger))

		r.Get("/sessions", listSessionsHandler(sessions, logger))
		r.Get("/sessions/{date}", getSessionHandler(sessions, logger))

		r.Get("/reports/dashboard", dashboardHandler(reports, logger))
		r.Get("/reports/annual", annualHandler(reports, logger))
		r.Get("/reports/sections/{section}", sectionHandler(reports, logger))
		r.Get("/reports/suppliers/top", topSuppliersHandler(reports, logger))
		r.Get("/reports/concepts/top", topConceptsHandler(reports, logger))
		r.Get("/export/csv", exportCSVHandler(reports, logger))

		// =============================================
		// 3. Escrituras (protegidas cuando hay auth)
		// =============================================
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(authSvc, logger))

			r.Post("/transactions", saveTransactionHandler(finance, logger))
			r.Delete("/transactions/{id}", deleteTransactionHandler(finance, logger))

			r.Post("/employees", saveEmployeeHandler(finance, logger))
			r.Delete("/employees/{id}", deleteEmployeeHandler(finance, logger))

			r.Post("/suppliers", saveSupplierHandler(finance, logger))
			r.Delete("/suppliers/{id}", deleteSupplierHandler(finance, logger))

			r.Post("/fixed-expenses", saveFixedExpenseHandler(finance, logger))
			r.Delete("/fixed-expenses/{id}", deleteFixedExpenseHandler(finance, logger))

			r.Post("/sessions", createSessionHandler(sessions, logger))
			r.Put("/sessions/{date}/incomes", saveIncomesHandler(sessions, logger))
			r.Put("/sessions/{date}/payments", savePaymentsHandler(sessions, logger))
			r.Post("/sessions/{date}/expenses", addSessionExpenseHandler(sessions, logger))
			r.Put("/sessions/{date}/staff/{employeeId}", setStaffHoursHandler(sessions, logger))
			r.Delete("/sessions/{date}", deleteSessionHandler(sessions, logger))

			r.Post("/advisor/analyze", advisorAnalyzeHandler(advisor, logger))

			r.Post("/admin/init-schema", initSchemaHandler(finance, logger))
			r.Get("/admin/stats", adminStatsHandler(metrics, logger))
		})
	})

	return r
}

func metricsMiddleware(metrics *observability.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			outcome := "success"
			if ww.Status() >= 500 {
				outcome = "error"
			}
			metrics.IncrRequest(outcome)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			metrics.RecordRequestDuration(r.Method+" "+pattern, time.Since(start))
		})
	}
}

// ============================================================
// Operational endpoints
// ============================================================

func healthzHandler(finance *service.FinanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := "disconnected"
		if finance.Connected() {
			store = "connected"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"store":  store,
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := finance.Ready(r.Context()); err != nil {
			logger.Warn("readiness check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "store unreachable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	}
}

// ============================================================
// Autenticación
// ============================================================

func authLoginHandler(authSvc *service.AuthService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := authSvc.Login(ctx, req.Password)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ============================================================
// Asesor IA
// ============================================================

func advisorAnalyzeHandler(advisor *service.AdvisorService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/advisor/analyze")
		defer span.End()

		analysis := advisor.Analyze(ctx)
		writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
	}
}

// ============================================================
// Administración
// ============================================================

func initSchemaHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/admin/init-schema")
		defer span.End()

		if err := finance.InitSchema(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "initialized"})
	}
}

func adminStatsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
