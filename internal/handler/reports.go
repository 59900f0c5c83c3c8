package handler

import (
	"net/http"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Informes
// ============================================================

func dashboardHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/dashboard")
		defer span.End()

		month := r.URL.Query().Get("month")
		span.SetAttributes(attribute.String("report.month", month))

		report, err := reports.Dashboard(ctx, month)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func annualHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/annual")
		defer span.End()

		year := r.URL.Query().Get("year")
		span.SetAttributes(attribute.String("report.year", year))

		report, err := reports.Annual(ctx, year)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func sectionHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/sections/{section}")
		defer span.End()

		section := chi.URLParam(r, "section")
		span.SetAttributes(attribute.String("report.section", section))

		report, err := reports.Section(ctx, domain.Section(section))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, report)
	}
}

func topSuppliersHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/suppliers/top")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{"suppliers": reports.TopSuppliers(ctx)})
	}
}

func topConceptsHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reports/concepts/top")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{"concepts": reports.TopConcepts(ctx)})
	}
}

func exportCSVHandler(reports *service.ReportService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/export/csv")
		defer span.End()

		csv := reports.ExportCSV(ctx)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="transacciones.csv"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(csv))
	}
}
