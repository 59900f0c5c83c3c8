// Package domain defines the core business entities for NeonFlow Finanzas.
// These models are independent of external services and represent the
// canonical data structures used throughout the API.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells whether a transaction adds to or subtracts from the
// balance. The stored amount is always non-negative; the sign lives here.
type TransactionType string

const (
	Income  TransactionType = "INCOME"
	Expense TransactionType = "EXPENSE"
)

// Transaction is a single income or expense record. Dates are calendar days
// in YYYY-MM-DD form with no time component: the stored data joins sessions,
// months and years by string prefix, so the format is part of the contract.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Type        TransactionType `json:"type"`
	Supplier    string          `json:"supplier,omitempty"`
}

// FinancialSummary aggregates a transaction list.
type FinancialSummary struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	NetBalance   decimal.Decimal `json:"netBalance"`
}

// EmployeeType distinguishes salaried staff from hourly staff.
type EmployeeType string

const (
	FixedEmployee  EmployeeType = "FIXED"
	HourlyEmployee EmployeeType = "HOURLY"
)

// Employee is a staff member. Cost is the monthly salary for FIXED employees
// and the hourly rate for HOURLY ones. Extras only applies to FIXED.
// Deleting an employee never deletes the transactions that reference their
// name; the association is by description prefix, not foreign key.
type Employee struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Type   EmployeeType     `json:"type"`
	Cost   decimal.Decimal  `json:"cost"`
	Extras *decimal.Decimal `json:"extras,omitempty"`
	Active bool             `json:"active"`
}

// Supplier is a pick-list entry. Expense transactions carry the supplier
// name by value; deleting the supplier leaves past records untouched.
type Supplier struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FixedExpenseItem is a reusable label/category pairing for recurring
// structural costs. Purely advisory: no transaction links back to it.
type FixedExpenseItem struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	DefaultCategory Category         `json:"defaultCategory"`
	DefaultAmount   *decimal.Decimal `json:"defaultAmount,omitempty"`
	IsRecurring     bool             `json:"isRecurring"`
}

// ValidDate reports whether s is a calendar day in YYYY-MM-DD form.
func ValidDate(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
