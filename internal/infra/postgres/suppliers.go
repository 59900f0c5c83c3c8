package postgres

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

// ListSuppliers returns the supplier pick-list.
func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListSuppliers")
	defer span.End()

	var out []domain.Supplier

	err := s.execute(ctx, "postgres/suppliers", func() error {
		rows, err := s.pool.Query(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var sup domain.Supplier
			if err := rows.Scan(&sup.ID, &sup.Name); err != nil {
				return err
			}
			out = append(out, sup)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Supplier{}
	}
	return out, nil
}

// UpsertSupplier inserts or replaces a supplier by id.
func (s *Store) UpsertSupplier(ctx context.Context, sup *domain.Supplier) error {
	ctx, span := tracer.Start(ctx, "Postgres.UpsertSupplier")
	defer span.End()
	span.SetAttributes(attribute.String("supplier.id", sup.ID))

	return s.execute(ctx, "postgres/suppliers", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO suppliers (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			sup.ID, sup.Name)
		return err
	})
}

// DeleteSupplier removes a supplier from the pick-list.
func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteSupplier")
	defer span.End()
	span.SetAttributes(attribute.String("supplier.id", id))

	return s.execute(ctx, "postgres/suppliers", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
		return err
	})
}
