package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

// ListEmployees returns the staff roster.
func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	ctx, span := tracer.Start(ctx, "Postgres.ListEmployees")
	defer span.End()

	var out []domain.Employee

	err := s.execute(ctx, "postgres/employees", func() error {
		rows, err := s.pool.Query(ctx, `
			SELECT id, name, type, cost::text, extras::text, active
			FROM employees
			ORDER BY name`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = out[:0]
		for rows.Next() {
			var e domain.Employee
			var cost string
			var extras *string
			if err := rows.Scan(&e.ID, &e.Name, &e.Type, &cost, &extras, &e.Active); err != nil {
				return err
			}
			e.Cost, err = decimal.NewFromString(cost)
			if err != nil {
				return fmt.Errorf("bad cost for employee %s: %w", e.ID, err)
			}
			if extras != nil {
				v, err := decimal.NewFromString(*extras)
				if err != nil {
					return fmt.Errorf("bad extras for employee %s: %w", e.ID, err)
				}
				e.Extras = &v
			}
			out = append(out, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Employee{}
	}
	return out, nil
}

// UpsertEmployee inserts or replaces an employee by id.
func (s *Store) UpsertEmployee(ctx context.Context, e *domain.Employee) error {
	ctx, span := tracer.Start(ctx, "Postgres.UpsertEmployee")
	defer span.End()
	span.SetAttributes(attribute.String("employee.id", e.ID))

	var extras *string
	if e.Extras != nil {
		v := e.Extras.String()
		extras = &v
	}

	return s.execute(ctx, "postgres/employees", func() error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO employees (id, name, type, cost, extras, active)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6)
			ON CONFLICT (id) DO UPDATE SET
				name   = EXCLUDED.name,
				type   = EXCLUDED.type,
				cost   = EXCLUDED.cost,
				extras = EXCLUDED.extras,
				active = EXCLUDED.active`,
			e.ID, e.Name, string(e.Type), e.Cost.String(), extras, e.Active)
		return err
	})
}

// DeleteEmployee removes an employee. Transactions that mention the
// employee by name are left intact.
func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Postgres.DeleteEmployee")
	defer span.End()
	span.SetAttributes(attribute.String("employee.id", id))

	return s.execute(ctx, "postgres/employees", func() error {
		_, err := s.pool.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
		return err
	})
}
