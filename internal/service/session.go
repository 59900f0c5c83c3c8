package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

var sessionTracer = otel.Tracer("service/session")

// SessionService reconciles daily cash sessions. A session is simply the
// set of transactions sharing a calendar date; there is no session table.
type SessionService struct {
	finance *FinanceService
	logger  *zap.Logger
}

// NewSessionService creates the session service.
func NewSessionService(finance *FinanceService, logger *zap.Logger) *SessionService {
	return &SessionService{finance: finance, logger: logger}
}

// sessionCategory reports whether a row of this category makes its date
// show up as a session.
func sessionCategory(c domain.Category) bool {
	return c.InSection(domain.SectionCaja) || c == domain.PersonalHoras || c == domain.DesglosePago
}

func rowsForDate(list []domain.Transaction, date string) []domain.Transaction {
	out := make([]domain.Transaction, 0, 8)
	for _, t := range list {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out
}

// Sessions lists every session date with its reconciliation summary,
// newest first.
func (s *SessionService) Sessions(ctx context.Context) []domain.SessionOverview {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Sessions")
	defer span.End()

	all := s.finance.Transactions(ctx)

	dates := make(map[string]bool)
	for _, t := range all {
		if sessionCategory(t.Category) {
			dates[t.Date] = true
		}
	}

	out := make([]domain.SessionOverview, 0, len(dates))
	for date := range dates {
		rows := rowsForDate(all, date)
		out = append(out, domain.SessionOverview{
			Date:    date,
			Title:   domain.SessionTitle(rows),
			Summary: domain.SummarizeSession(rows),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// Session reconstructs one session in full.
func (s *SessionService) Session(ctx context.Context, date string) (*domain.SessionDetail, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.Session")
	defer span.End()
	span.SetAttributes(attribute.String("session.date", date))

	if !domain.ValidDate(date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}

	all := s.finance.Transactions(ctx)
	rows := rowsForDate(all, date)
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "session", ID: date}
	}
	return s.buildDetail(ctx, date, rows), nil
}

// CreateSession opens a session on a date by writing its zero-amount title
// row. The batch income save matches rows by exact source description, so
// the title row never collides with a source.
func (s *SessionService) CreateSession(ctx context.Context, date, title string) (*domain.SessionDetail, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.CreateSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.date", date))

	if !domain.ValidDate(date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if !s.finance.Connected() {
		return nil, &domain.ErrNotConnected{}
	}
	if title == "" {
		title = fmt.Sprintf("Sesión %s", date)
	}
	if domain.IsIncomeSource(title) {
		return nil, &domain.ErrValidation{Field: "title", Message: "reserved name"}
	}

	all := s.finance.Transactions(ctx)
	for _, t := range rowsForDate(all, date) {
		if sessionCategory(t.Category) {
			return nil, &domain.ErrValidation{Field: "date", Message: "session already exists"}
		}
	}

	marker := &domain.Transaction{
		Date:        date,
		Amount:      decimal.Zero,
		Description: title,
		Category:    domain.VentaDiaria,
		Type:        domain.Income,
	}
	updated, err := s.finance.SaveTransaction(ctx, marker)
	if err != nil {
		return nil, err
	}

	s.logger.Info("session created", zap.String("date", date), zap.String("title", title))
	return s.buildDetail(ctx, date, rowsForDate(updated, date)), nil
}

// SaveIncomes applies a batch of source amounts to a session. Sources are
// processed one at a time in canonical order, and every step works on the
// list returned by the previous write, so each lookup sees current state.
// A positive amount upserts the source row (reusing its id when present);
// zero deletes an existing row and is otherwise a no-op. Negative amounts
// are rejected before any write happens.
func (s *SessionService) SaveIncomes(ctx context.Context, date string, incomes []domain.SourceAmount) (*domain.SessionDetail, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.SaveIncomes")
	defer span.End()
	span.SetAttributes(attribute.String("session.date", date))

	if !domain.ValidDate(date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if !s.finance.Connected() {
		return nil, &domain.ErrNotConnected{}
	}

	provided := make(map[string]decimal.Decimal, len(incomes))
	for _, in := range incomes {
		if !domain.IsIncomeSource(in.Source) {
			return nil, &domain.ErrValidation{Field: "source", Message: fmt.Sprintf("unknown income source %q", in.Source)}
		}
		if in.Amount.IsNegative() {
			return nil, &domain.ErrValidation{Field: in.Source, Message: "must not be negative"}
		}
		provided[in.Source] = in.Amount
	}

	current := s.finance.Transactions(ctx)
	for _, source := range domain.IncomeSources {
		value, ok := provided[source]
		if !ok {
			continue
		}

		existing := findIncomeRow(current, date, source)
		var err error
		switch {
		case value.IsPositive():
			row := &domain.Transaction{
				Date:        date,
				Amount:      value,
				Description: source,
				Category:    domain.VentaDiaria,
				Type:        domain.Income,
			}
			if existing != nil {
				row.ID = existing.ID
			}
			current, err = s.finance.SaveTransaction(ctx, row)
		case existing != nil:
			current, err = s.finance.DeleteTransaction(ctx, existing.ID)
		}
		if err != nil {
			return nil, err
		}
	}

	return s.buildDetail(ctx, date, rowsForDate(current, date)), nil
}

func findIncomeRow(list []domain.Transaction, date, source string) *domain.Transaction {
	for i := range list {
		t := &list[i]
		if t.Date == date && t.Category == domain.VentaDiaria && t.Type == domain.Income && t.Description == source {
			return t
		}
	}
	return nil
}

// SavePayments persists the cash/card/transfer breakdown of a session.
// The combined breakdown may never exceed the session's income; a payload
// violating that is rejected with a validation error. Positive legs are
// upserted under the reserved category, zero legs delete their row.
func (s *SessionService) SavePayments(ctx context.Context, date string, b domain.PaymentBreakdown) (*domain.SessionDetail, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.SavePayments")
	defer span.End()
	span.SetAttributes(attribute.String("session.date", date))

	if !domain.ValidDate(date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if !s.finance.Connected() {
		return nil, &domain.ErrNotConnected{}
	}
	for _, m := range domain.PaymentMethods {
		if b.Amount(m).IsNegative() {
			return nil, &domain.ErrValidation{Field: string(m), Message: "must not be negative"}
		}
	}

	current := s.finance.Transactions(ctx)
	income := domain.SummarizeSession(rowsForDate(current, date)).TotalIncome
	if b.Total().GreaterThan(income) {
		return nil, &domain.ErrValidation{
			Field:   "payments",
			Message: fmt.Sprintf("breakdown total %s exceeds session income %s", b.Total(), income),
		}
	}

	for _, m := range domain.PaymentMethods {
		value := b.Amount(m)
		desc := domain.PaymentDescriptions[m]
		existing := findPaymentRow(current, date, desc)

		var err error
		switch {
		case value.IsPositive():
			row := &domain.Transaction{
				Date:        date,
				Amount:      value,
				Description: desc,
				Category:    domain.DesglosePago,
				Type:        domain.Income,
			}
			if existing != nil {
				row.ID = existing.ID
			}
			current, err = s.finance.SaveTransaction(ctx, row)
		case existing != nil:
			current, err = s.finance.DeleteTransaction(ctx, existing.ID)
		}
		if err != nil {
			return nil, err
		}
	}

	return s.buildDetail(ctx, date, rowsForDate(current, date)), nil
}

func findPaymentRow(list []domain.Transaction, date, description string) *domain.Transaction {
	for i := range list {
		t := &list[i]
		if t.Date == date && t.Category == domain.DesglosePago && t.Description == description {
			return t
		}
	}
	return nil
}

// AddExpense records a free-form direct expense against the session.
func (s *SessionService) AddExpense(ctx context.Context, date, description string, amount decimal.Decimal) (*domain.SessionDetail, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.AddExpense")
	defer span.End()
	span.SetAttributes(attribute.String("session.date", date))

	if !domain.ValidDate(date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if description == "" {
		return nil, &domain.ErrValidation{Field: "description", Message: "required"}
	}
	if !amount.IsPositive() {
		return nil, &domain.ErrValidation{Field: "amount", Message: "must be positive"}
	}

	row := &domain.Transaction{
		Date:        date,
		Amount:      amount,
		Description: description,
		Category:    domain.GastoCaja,
		Type:        domain.Expense,
	}
	updated, err := s.finance.SaveTransaction(ctx, row)
	if err != nil {
		return nil, err
	}
	return s.buildDetail(ctx, date, rowsForDate(updated, date)), nil
}

// SetStaffHours records the hours an hourly employee worked in a session.
// The row's description encodes the hours ("Laura (4h)") and the amount is
// hours times the employee's current rate. Zero or negative hours deletes
// the entry.
func (s *SessionService) SetStaffHours(ctx context.Context, date, employeeID string, hours decimal.Decimal) (*domain.SessionDetail, error) {
	ctx, span := sessionTracer.Start(ctx, "SessionService.SetStaffHours")
	defer span.End()
	span.SetAttributes(
		attribute.String("session.date", date),
		attribute.String("employee.id", employeeID),
	)

	if !domain.ValidDate(date) {
		return nil, &domain.ErrValidation{Field: "date", Message: "must be YYYY-MM-DD"}
	}
	if !s.finance.Connected() {
		return nil, &domain.ErrNotConnected{}
	}

	var employee *domain.Employee
	for _, e := range s.finance.Employees(ctx) {
		if e.ID == employeeID {
			emp := e
			employee = &emp
			break
		}
	}
	if employee == nil {
		return nil, &domain.ErrNotFound{Resource: "employee", ID: employeeID}
	}
	if employee.Type != domain.HourlyEmployee {
		return nil, &domain.ErrValidation{Field: "employeeId", Message: "employee is not hourly"}
	}

	current := s.finance.Transactions(ctx)
	existing := findStaffRow(current, date, employee.Name)

	var err error
	switch {
	case hours.IsPositive():
		row := &domain.Transaction{
			Date:        date,
			Amount:      hours.Mul(employee.Cost),
			Description: domain.StaffLabel(employee.Name, hours),
			Category:    domain.PersonalHoras,
			Type:        domain.Expense,
		}
		if existing != nil {
			row.ID = existing.ID
		}
		current, err = s.finance.SaveTransaction(ctx, row)
	case existing != nil:
		current, err = s.finance.DeleteTransaction(ctx, existing.ID)
	}
	if err != nil {
		return nil, err
	}

	return s.buildDetail(ctx, date, rowsForDate(current, date)), nil
}

func findStaffRow(list []domain.Transaction, date, name string) *domain.Transaction {
	for i := range list {
		t := &list[i]
		if t.Date == date && t.Category == domain.PersonalHoras && strings.HasPrefix(t.Description, name) {
			return t
		}
	}
	return nil
}

// DeleteSession removes every transaction on the date, across all
// categories, in one store operation.
func (s *SessionService) DeleteSession(ctx context.Context, date string) error {
	ctx, span := sessionTracer.Start(ctx, "SessionService.DeleteSession")
	defer span.End()
	span.SetAttributes(attribute.String("session.date", date))

	return s.finance.DeleteTransactionsByDate(ctx, date)
}

// buildDetail assembles the full view of a session from its rows.
func (s *SessionService) buildDetail(ctx context.Context, date string, rows []domain.Transaction) *domain.SessionDetail {
	detail := &domain.SessionDetail{
		Date:     date,
		Title:    domain.SessionTitle(rows),
		Incomes:  make([]domain.SourceAmount, 0, len(domain.IncomeSources)),
		Expenses: []domain.Transaction{},
		Staff:    []domain.StaffEntry{},
		Summary:  domain.SummarizeSession(rows),
	}

	for _, source := range domain.IncomeSources {
		amount := decimal.Zero
		if row := findIncomeRow(rows, date, source); row != nil {
			amount = row.Amount
		}
		detail.Incomes = append(detail.Incomes, domain.SourceAmount{Source: source, Amount: amount})
	}

	for _, m := range domain.PaymentMethods {
		if row := findPaymentRow(rows, date, domain.PaymentDescriptions[m]); row != nil {
			switch m {
			case domain.PaymentCash:
				detail.Payments.Cash = row.Amount
			case domain.PaymentCard:
				detail.Payments.Card = row.Amount
			case domain.PaymentTransfer:
				detail.Payments.Transfer = row.Amount
			}
		}
	}

	employees := s.finance.Employees(ctx)
	for _, t := range rows {
		switch {
		case t.Category == domain.GastoCaja && t.Type == domain.Expense:
			detail.Expenses = append(detail.Expenses, t)
		case t.Category == domain.PersonalHoras:
			entry := domain.StaffEntry{
				TransactionID: t.ID,
				Name:          t.Description,
				Amount:        t.Amount,
			}
			rate := decimal.Zero
			for _, e := range employees {
				if strings.HasPrefix(t.Description, e.Name) {
					entry.EmployeeID = e.ID
					entry.Name = e.Name
					rate = e.Cost
					break
				}
			}
			entry.Hours = domain.StaffHours(t, rate)
			detail.Staff = append(detail.Staff, entry)
		}
	}

	return detail
}
