package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

// ListTransactions returns every transaction, newest date first.
func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListTransactions")
	defer span.End()

	var out []domain.Transaction

	err := s.execute(ctx, "postgres/transactions", func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT id, date, amount::text, description, category, type, COALESCE(supplier, '')
			FROM transactions
			ORDER BY date DESC, id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var t domain.Transaction
			var amount string
			if err := rows.Scan(&t.ID, &t.Date, &amount, &t.Description, &t.Category, &t.Type, &t.Supplier); err != nil {
				return err
			}
			t.Amount, err = decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("bad amount for transaction %s: %w", t.ID, err)
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Transaction{}
	}
	return out, nil
}

// UpsertTransaction inserts or replaces a transaction by id.
func (s *Store) UpsertTransaction(ctx context.Context, t *domain.Transaction) error {
	ctx, span := tracer.Start(ctx, "Postgres.UpsertTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", t.ID))

	return s.execute(ctx, "postgres/transactions", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO transactions (id, date, amount, description, category, type, supplier)
			VALUES ($1, $2, $3::numeric, $4, $5, $6, NULLIF($7, ''))
			ON CONFLICT (id) DO UPDATE SET
				date        = EXCLUDED.date,
				amount      = EXCLUDED.amount,
				description = EXCLUDED.description,
				category    = EXCLUDED.category,
				type        = EXCLUDED.type,
				supplier    = EXCLUDED.supplier`,
			t.ID, t.Date, t.Amount.String(), t.Description, string(t.Category), string(t.Type), t.Supplier)
		return err
	})
}

// DeleteTransaction removes a transaction. Missing ids are a no-op.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	return s.execute(ctx, "postgres/transactions", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
		return err
	})
}

// DeleteTransactionsByDate removes every row on the given calendar day.
func (s *Store) DeleteTransactionsByDate(ctx context.Context, date string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteTransactionsByDate")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.date", date))

	return s.execute(ctx, "postgres/transactions", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE date = $1`, date)
		return err
	})
}
