// Package sqlite implements the finance store on a local SQLite file.
// It is the fallback backend for development and single-machine setups
// where no Postgres DSN is configured.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

// Store persists the finance tables in a single SQLite database file.
// Amounts are stored as decimal strings to keep cent-exact values.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New opens (or creates) the database file and applies the schema.
func New(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.InitSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Backend names this store for logs and metric labels.
func (s *Store) Backend() string {
	return "sqlite"
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) wrap(service string, err error) error {
	if err == nil {
		return nil
	}
	s.logger.Error("sqlite: operation failed", zap.String("service", service), zap.Error(err))
	return &domain.ErrExternalService{Service: service, Err: err}
}

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	date        TEXT NOT NULL,
	amount      TEXT NOT NULL DEFAULT '0',
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	type        TEXT NOT NULL DEFAULT 'EXPENSE',
	supplier    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date);

CREATE TABLE IF NOT EXISTS employees (
	id     TEXT PRIMARY KEY,
	name   TEXT NOT NULL,
	type   TEXT NOT NULL DEFAULT 'FIXED',
	cost   TEXT NOT NULL DEFAULT '0',
	extras TEXT,
	active INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS suppliers (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fixed_expenses (
	id               TEXT PRIMARY KEY,
	name             TEXT NOT NULL,
	default_category TEXT NOT NULL DEFAULT '',
	default_amount   TEXT,
	is_recurring     INTEGER NOT NULL DEFAULT 0
);
`

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return s.wrap("sqlite/schema", err)
}

// --- Transactions ---

func (s *Store) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, amount, description, category, type, supplier
		FROM transactions
		ORDER BY date DESC, id`)
	if err != nil {
		return nil, s.wrap("sqlite/transactions", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		var t domain.Transaction
		var amount string
		if err := rows.Scan(&t.ID, &t.Date, &amount, &t.Description, &t.Category, &t.Type, &t.Supplier); err != nil {
			return nil, s.wrap("sqlite/transactions", err)
		}
		t.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, s.wrap("sqlite/transactions", fmt.Errorf("bad amount for transaction %s: %w", t.ID, err))
		}
		out = append(out, t)
	}
	return out, s.wrap("sqlite/transactions", rows.Err())
}

func (s *Store) UpsertTransaction(ctx context.Context, t *domain.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, date, amount, description, category, type, supplier)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			date        = excluded.date,
			amount      = excluded.amount,
			description = excluded.description,
			category    = excluded.category,
			type        = excluded.type,
			supplier    = excluded.supplier`,
		t.ID, t.Date, t.Amount.String(), t.Description, string(t.Category), string(t.Type), t.Supplier)
	return s.wrap("sqlite/transactions", err)
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return s.wrap("sqlite/transactions", err)
}

func (s *Store) DeleteTransactionsByDate(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE date = ?`, date)
	return s.wrap("sqlite/transactions", err)
}

// --- Employees ---

func (s *Store) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, cost, extras, active
		FROM employees
		ORDER BY name`)
	if err != nil {
		return nil, s.wrap("sqlite/employees", err)
	}
	defer rows.Close()

	out := []domain.Employee{}
	for rows.Next() {
		var e domain.Employee
		var cost string
		var extras sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &e.Type, &cost, &extras, &e.Active); err != nil {
			return nil, s.wrap("sqlite/employees", err)
		}
		e.Cost, err = decimal.NewFromString(cost)
		if err != nil {
			return nil, s.wrap("sqlite/employees", fmt.Errorf("bad cost for employee %s: %w", e.ID, err))
		}
		if extras.Valid {
			v, err := decimal.NewFromString(extras.String)
			if err != nil {
				return nil, s.wrap("sqlite/employees", fmt.Errorf("bad extras for employee %s: %w", e.ID, err))
			}
			e.Extras = &v
		}
		out = append(out, e)
	}
	return out, s.wrap("sqlite/employees", rows.Err())
}

func (s *Store) UpsertEmployee(ctx context.Context, e *domain.Employee) error {
	var extras any
	if e.Extras != nil {
		extras = e.Extras.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, type, cost, extras, active)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name   = excluded.name,
			type   = excluded.type,
			cost   = excluded.cost,
			extras = excluded.extras,
			active = excluded.active`,
		e.ID, e.Name, string(e.Type), e.Cost.String(), extras, e.Active)
	return s.wrap("sqlite/employees", err)
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	return s.wrap("sqlite/employees", err)
}

// --- Suppliers ---

func (s *Store) ListSuppliers(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, s.wrap("sqlite/suppliers", err)
	}
	defer rows.Close()

	out := []domain.Supplier{}
	for rows.Next() {
		var sup domain.Supplier
		if err := rows.Scan(&sup.ID, &sup.Name); err != nil {
			return nil, s.wrap("sqlite/suppliers", err)
		}
		out = append(out, sup)
	}
	return out, s.wrap("sqlite/suppliers", rows.Err())
}

func (s *Store) UpsertSupplier(ctx context.Context, sup *domain.Supplier) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suppliers (id, name)
		VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name`,
		sup.ID, sup.Name)
	return s.wrap("sqlite/suppliers", err)
}

func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = ?`, id)
	return s.wrap("sqlite/suppliers", err)
}

// --- Fixed expenses ---

func (s *Store) ListFixedExpenses(ctx context.Context) ([]domain.FixedExpenseItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, default_category, default_amount, is_recurring
		FROM fixed_expenses
		ORDER BY name`)
	if err != nil {
		return nil, s.wrap("sqlite/fixed_expenses", err)
	}
	defer rows.Close()

	out := []domain.FixedExpenseItem{}
	for rows.Next() {
		var f domain.FixedExpenseItem
		var amount sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &f.DefaultCategory, &amount, &f.IsRecurring); err != nil {
			return nil, s.wrap("sqlite/fixed_expenses", err)
		}
		if amount.Valid {
			v, err := decimal.NewFromString(amount.String)
			if err != nil {
				return nil, s.wrap("sqlite/fixed_expenses", fmt.Errorf("bad default amount for fixed expense %s: %w", f.ID, err))
			}
			f.DefaultAmount = &v
		}
		out = append(out, f)
	}
	return out, s.wrap("sqlite/fixed_expenses", rows.Err())
}

func (s *Store) UpsertFixedExpense(ctx context.Context, f *domain.FixedExpenseItem) error {
	var amount any
	if f.DefaultAmount != nil {
		amount = f.DefaultAmount.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fixed_expenses (id, name, default_category, default_amount, is_recurring)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name             = excluded.name,
			default_category = excluded.default_category,
			default_amount   = excluded.default_amount,
			is_recurring     = excluded.is_recurring`,
		f.ID, f.Name, string(f.DefaultCategory), amount, f.IsRecurring)
	return s.wrap("sqlite/fixed_expenses", err)
}

func (s *Store) DeleteFixedExpense(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM fixed_expenses WHERE id = ?`, id)
	return s.wrap("sqlite/fixed_expenses", err)
}
