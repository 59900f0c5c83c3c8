package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fredydc1/neonflow-api/internal/domain"
	"github.com/fredydc1/neonflow-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 1. Transacciones
// ============================================================

func listTransactionsHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		transactions := finance.Transactions(ctx)

		// Filter by month if provided, e.g. ?month=2025-06
		if month := r.URL.Query().Get("month"); month != "" {
			filtered := make([]domain.Transaction, 0, len(transactions))
			for _, t := range transactions {
				if len(t.Date) >= len(month) && t.Date[:len(month)] == month {
					filtered = append(filtered, t)
				}
			}
			transactions = filtered
		}

		writeJSON(w, http.StatusOK, map[string]any{"transactions": transactions})
	}
}

func saveTransactionHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/transactions")
		defer span.End()

		var t domain.Transaction
		if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		list, err := finance.SaveTransaction(ctx, &t)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("transaction.id", t.ID))

		writeJSON(w, http.StatusOK, map[string]any{"transactions": list})
	}
}

func deleteTransactionHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		span.SetAttributes(attribute.String("transaction.id", id))

		list, err := finance.DeleteTransaction(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": list})
	}
}

// ============================================================
// 2. Personal
// ============================================================

func listEmployeesHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/employees")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{"employees": finance.Employees(ctx)})
	}
}

func saveEmployeeHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/employees")
		defer span.End()

		var e domain.Employee
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		list, err := finance.SaveEmployee(ctx, &e)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"employees": list})
	}
}

func deleteEmployeeHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/employees/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}

		list, err := finance.DeleteEmployee(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"employees": list})
	}
}

// ============================================================
// 3. Proveedores
// ============================================================

func listSuppliersHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/suppliers")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{"suppliers": finance.Suppliers(ctx)})
	}
}

func saveSupplierHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/suppliers")
		defer span.End()

		var sup domain.Supplier
		if err := json.NewDecoder(r.Body).Decode(&sup); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		list, err := finance.SaveSupplier(ctx, &sup)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suppliers": list})
	}
}

func deleteSupplierHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/suppliers/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}

		list, err := finance.DeleteSupplier(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"suppliers": list})
	}
}

// ============================================================
// 4. Gastos fijos
// ============================================================

func listFixedExpensesHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/fixed-expenses")
		defer span.End()

		writeJSON(w, http.StatusOK, map[string]any{"fixedExpenses": finance.FixedExpenses(ctx)})
	}
}

func saveFixedExpenseHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/fixed-expenses")
		defer span.End()

		var f domain.FixedExpenseItem
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		list, err := finance.SaveFixedExpense(ctx, &f)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"fixedExpenses": list})
	}
}

func deleteFixedExpenseHandler(finance *service.FinanceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/fixed-expenses/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}

		list, err := finance.DeleteFixedExpense(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"fixedExpenses": list})
	}
}
