package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// IncomeSources are the ten fixed revenue points of a cash session, edited
// as a batch. Each source maps to at most one transaction per date, matched
// by exact description equality.
var IncomeSources = []string{
	"Barra 1", "Barra 2", "Barra 3",
	"Barra 4", "Restaurante", "VIP",
	"Tickets", "Puerta", "Vapers", "Shishas",
}

// IsIncomeSource reports whether description names one of the fixed sources.
func IsIncomeSource(description string) bool {
	for _, s := range IncomeSources {
		if s == description {
			return true
		}
	}
	return false
}

// PaymentMethod identifies one leg of the session payment breakdown.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
)

// PaymentDescriptions are the reserved description literals that identify
// breakdown rows in the store. Existing data uses these exact strings.
var PaymentDescriptions = map[PaymentMethod]string{
	PaymentCash:     "Cobro: Efectivo",
	PaymentCard:     "Cobro: Tarjeta",
	PaymentTransfer: "Cobro: Transferencia",
}

// PaymentMethods lists the breakdown legs in persistence order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCard, PaymentTransfer}

// PaymentBreakdown holds how a session's income was collected.
type PaymentBreakdown struct {
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
}

// Amount returns the value for one method.
func (b PaymentBreakdown) Amount(m PaymentMethod) decimal.Decimal {
	switch m {
	case PaymentCash:
		return b.Cash
	case PaymentCard:
		return b.Card
	case PaymentTransfer:
		return b.Transfer
	}
	return decimal.Zero
}

// Total sums the three legs.
func (b PaymentBreakdown) Total() decimal.Decimal {
	return b.Cash.Add(b.Card).Add(b.Transfer)
}

// Apply sets one leg to value, unless that would push the breakdown total
// over totalIncome. A violating edit is refused (the value is not applied)
// and Apply reports false; no error is raised.
func (b *PaymentBreakdown) Apply(m PaymentMethod, value, totalIncome decimal.Decimal) bool {
	others := b.Total().Sub(b.Amount(m))
	if others.Add(value).GreaterThan(totalIncome) {
		return false
	}
	switch m {
	case PaymentCash:
		b.Cash = value
	case PaymentCard:
		b.Card = value
	case PaymentTransfer:
		b.Transfer = value
	default:
		return false
	}
	return true
}

// SessionSummary is the per-date reconciliation of a cash session.
type SessionSummary struct {
	TotalIncome    decimal.Decimal `json:"totalIncome"`
	DirectExpenses decimal.Decimal `json:"directExpenses"`
	StaffCost      decimal.Decimal `json:"staffCost"`
	Net            decimal.Decimal `json:"net"`
}

// SummarizeSession reconciles one session from its transactions.
// Income counts strictly VentaDiaria INCOME rows, direct expenses strictly
// GastoCaja EXPENSE rows, and staff cost every PersonalHoras row regardless
// of type (they are stored as EXPENSE but matched by category alone).
func SummarizeSession(transactions []Transaction) SessionSummary {
	var s SessionSummary
	for _, t := range transactions {
		switch {
		case t.Category == VentaDiaria && t.Type == Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case t.Category == GastoCaja && t.Type == Expense:
			s.DirectExpenses = s.DirectExpenses.Add(t.Amount)
		case t.Category == PersonalHoras:
			s.StaffCost = s.StaffCost.Add(t.Amount)
		}
	}
	s.Net = s.TotalIncome.Sub(s.DirectExpenses).Sub(s.StaffCost)
	return s
}

// StaffLabel renders the persisted description for an hourly staff entry,
// e.g. "Laura (4h)".
func StaffLabel(name string, hours decimal.Decimal) string {
	return fmt.Sprintf("%s (%sh)", name, hours.String())
}

var staffHoursRe = regexp.MustCompile(`\((\d+(?:[.,]\d+)?)h\)$`)

// ParseStaffHours extracts the hours from a trailing "(Xh)" token.
func ParseStaffHours(description string) (decimal.Decimal, bool) {
	m := staffHoursRe.FindStringSubmatch(strings.TrimSpace(description))
	if m == nil {
		return decimal.Zero, false
	}
	h, err := decimal.NewFromString(strings.ReplaceAll(m[1], ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	return h, true
}

// StaffHours recovers the hours behind a staff entry. It prefers the parsed
// label; when the label is absent it falls back to amount ÷ rate. The
// fallback matters because hourly rates can be edited after the label was
// written, so the label is the authoritative record of hours worked.
func StaffHours(t Transaction, rate decimal.Decimal) decimal.Decimal {
	if h, ok := ParseStaffHours(t.Description); ok {
		return h
	}
	if rate.IsZero() {
		return decimal.Zero
	}
	return t.Amount.DivRound(rate, 4)
}

// SessionOverview is the list-view shape of a session.
type SessionOverview struct {
	Date    string         `json:"date"`
	Title   string         `json:"title,omitempty"`
	Summary SessionSummary `json:"summary"`
}

// StaffEntry is one hourly employee's worked time inside a session.
type StaffEntry struct {
	TransactionID string          `json:"transactionId"`
	EmployeeID    string          `json:"employeeId"`
	Name          string          `json:"name"`
	Hours         decimal.Decimal `json:"hours"`
	Amount        decimal.Decimal `json:"amount"`
}

// SourceAmount pairs an income source with its recorded amount.
type SourceAmount struct {
	Source string          `json:"source"`
	Amount decimal.Decimal `json:"amount"`
}

// SessionDetail is the full reconstruction of one session.
type SessionDetail struct {
	Date     string           `json:"date"`
	Title    string           `json:"title,omitempty"`
	Incomes  []SourceAmount   `json:"incomes"`
	Payments PaymentBreakdown `json:"payments"`
	Expenses []Transaction    `json:"expenses"`
	Staff    []StaffEntry     `json:"staff"`
	Summary  SessionSummary   `json:"summary"`
}

// SessionTitle finds the session's display title: the first VentaDiaria
// income row whose description is not one of the fixed sources (the
// zero-amount row written when the session was created).
func SessionTitle(transactions []Transaction) string {
	for _, t := range transactions {
		if t.Category == VentaDiaria && t.Type == Income && !IsIncomeSource(t.Description) {
			return t.Description
		}
	}
	return ""
}
