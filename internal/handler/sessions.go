package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Sesiones de caja
// ============================================================

func listSessionsHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sessions")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions.Sessions(ctx)})
	}
}

func getSessionHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sessions/{date}")
		defer span.End()

		date := chi.URLParam(r, "date")
		span.SetAttributes(attribute.String("session.date", date))

		detail, err := sessions.Session(ctx, date)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func createSessionHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions")
		defer span.End()

		var req struct {
			Date  string `json:"date"`
			Title string `json:"title,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		span.SetAttributes(attribute.String("session.date", req.Date))

		detail, err := sessions.CreateSession(ctx, req.Date, req.Title)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, detail)
	}
}

func saveIncomesHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/sessions/{date}/incomes")
		defer span.End()

		date := chi.URLParam(r, "date")
		span.SetAttributes(attribute.String("session.date", date))

		var req struct {
			Incomes []domain.SourceAmount `json:"incomes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		detail, err := sessions.SaveIncomes(ctx, date, req.Incomes)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func savePaymentsHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/sessions/{date}/payments")
		defer span.End()

		date := chi.URLParam(r, "date")
		span.SetAttributes(attribute.String("session.date", date))

		var breakdown domain.PaymentBreakdown
		if err := json.NewDecoder(r.Body).Decode(&breakdown); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		detail, err := sessions.SavePayments(ctx, date, breakdown)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func addSessionExpenseHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{date}/expenses")
		defer span.End()

		date := chi.URLParam(r, "date")
		span.SetAttributes(attribute.String("session.date", date))

		var req struct {
			Description string          `json:"description"`
			Amount      decimal.Decimal `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		detail, err := sessions.AddExpense(ctx, date, req.Description, req.Amount)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, detail)
	}
}

func setStaffHoursHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/sessions/{date}/staff/{employeeId}")
		defer span.End()

		date := chi.URLParam(r, "date")
		employeeID := chi.URLParam(r, "employeeId")
		span.SetAttributes(
			attribute.String("session.date", date),
			attribute.String("employee.id", employeeID),
		)

		var req struct {
			Hours decimal.Decimal `json:"hours"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		detail, err := sessions.SetStaffHours(ctx, date, employeeID, req.Hours)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

func deleteSessionHandler(sessions *service.SessionService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/sessions/{date}")
		defer span.End()

		date := chi.URLParam(r, "date")
		span.SetAttributes(attribute.String("session.date", date))

		if err := sessions.DeleteSession(ctx, date); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
