package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

// ListFixedExpenses returns the recurring-cost templates.
func (s *Store) ListFixedExpenses(ctx context.Context) ([]domain.FixedExpenseItem, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListFixedExpenses")
	defer span.End()

	var out []domain.FixedExpenseItem

	err := s.execute(ctx, "postgres/fixed_expenses", func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT id, name, default_category, default_amount::text, is_recurring
			FROM fixed_expenses
			ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var f domain.FixedExpenseItem
			var amount *string
			if err := rows.Scan(&f.ID, &f.Name, &f.DefaultCategory, &amount, &f.IsRecurring); err != nil {
				return err
			}
			if amount != nil {
				v, err := decimal.NewFromString(*amount)
				if err != nil {
					return fmt.Errorf("bad default amount for fixed expense %s: %w", f.ID, err)
				}
				f.DefaultAmount = &v
			}
			out = append(out, f)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.FixedExpenseItem{}
	}
	return out, nil
}

// UpsertFixedExpense inserts or replaces a fixed expense item by id.
func (s *Store) UpsertFixedExpense(ctx context.Context, f *domain.FixedExpenseItem) error {
	ctx, span := tracer.Start(ctx, "Postgres.UpsertFixedExpense")
	defer span.End()
	span.SetAttributes(attribute.String("fixed_expense.id", f.ID))

	var amount *string
	if f.DefaultAmount != nil {
		v := f.DefaultAmount.String()
		amount = &v
	}

	return s.execute(ctx, "postgres/fixed_expenses", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO fixed_expenses (id, name, default_category, default_amount, is_recurring)
			VALUES ($1, $2, $3, $4::numeric, $5)
			ON CONFLICT (id) DO UPDATE SET
				name             = EXCLUDED.name,
				default_category = EXCLUDED.default_category,
				default_amount   = EXCLUDED.default_amount,
				is_recurring     = EXCLUDED.is_recurring`,
			f.ID, f.Name, string(f.DefaultCategory), amount, f.IsRecurring)
		return err
	})
}

// DeleteFixedExpense removes a fixed expense item.
func (s *Store) DeleteFixedExpense(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteFixedExpense")
	defer span.End()
	span.SetAttributes(attribute.String("fixed_expense.id", id))

	return s.execute(ctx, "postgres/fixed_expenses", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM fixed_expenses WHERE id = $1`, id)
		return err
	})
}
