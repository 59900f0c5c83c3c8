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
	"golang.org/x/sync/errgroup"

	"github.com/fredydc1/neonflow-api/internal/domain"
)

var reportTracer = otel.Tracer("service/report")

// ReportService builds the aggregated views: dashboard, annual, section
// filters, rankings and the CSV export.
type ReportService struct {
	finance *FinanceService
	logger  *zap.Logger
}

// NewReportService creates the report service.
func NewReportService(finance *FinanceService, logger *zap.Logger) *ReportService {
	return &ReportService{finance: finance, logger: logger}
}

// BreakdownItem is one expense group of the dashboard, with its share of
// the month's income.
type BreakdownItem struct {
	Group      string          `json:"group"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// PersonalStats summarizes staffing costs.
type PersonalStats struct {
	TotalEmployees   int             `json:"totalEmployees"`
	MonthlyFixedCost decimal.Decimal `json:"monthlyFixedCost"`
	VariableCost     decimal.Decimal `json:"variableCost"`
}

// DashboardReport is the month view.
type DashboardReport struct {
	Month     string                  `json:"month"`
	Summary   domain.FinancialSummary `json:"summary"`
	Breakdown []BreakdownItem         `json:"breakdown"`
	Personal  PersonalStats           `json:"personal"`
}

// MonthSummary is one month's totals inside the annual view.
type MonthSummary struct {
	Month   string                  `json:"month"`
	Summary domain.FinancialSummary `json:"summary"`
}

// AnnualReport is the year view.
type AnnualReport struct {
	Year    string                  `json:"year"`
	Summary domain.FinancialSummary `json:"summary"`
	Months  []MonthSummary          `json:"months"`
}

// CajaMetrics summarizes cashbox performance across all sessions.
type CajaMetrics struct {
	SessionCount   int             `json:"sessionCount"`
	AccumulatedNet decimal.Decimal `json:"accumulatedNet"`
	TotalNet       decimal.Decimal `json:"totalNet"`
}

// SectionReport is a category-scoped slice of the ledger.
type SectionReport struct {
	Section      domain.Section          `json:"section"`
	Transactions []domain.Transaction    `json:"transactions"`
	Summary      domain.FinancialSummary `json:"summary"`
	Caja         *CajaMetrics            `json:"caja,omitempty"`
	Personal     *PersonalStats          `json:"personal,omitempty"`
}

// RankingEntry is one group of an expense ranking.
type RankingEntry struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Dashboard builds the month view. Transactions and employees are fetched
// concurrently; both reads degrade independently.
func (s *ReportService) Dashboard(ctx context.Context, month string) (*DashboardReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Dashboard")
	defer span.End()
	span.SetAttributes(attribute.String("report.month", month))

	if !validMonth(month) {
		return nil, &domain.ErrValidation{Field: "month", Message: "must be YYYY-MM"}
	}

	var (
		transactions []domain.Transaction
		employees    []domain.Employee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		transactions = s.finance.Transactions(gctx)
		return nil
	})
	g.Go(func() error {
		employees = s.finance.Employees(gctx)
		return nil
	})
	_ = g.Wait()

	monthRows := filterPrefix(cleanRows(transactions), month)
	summary := domain.Summarize(monthRows)

	return &DashboardReport{
		Month:     month,
		Summary:   summary,
		Breakdown: breakdown(monthRows, summary.TotalIncome),
		Personal:  personalStats(employees, monthRows),
	}, nil
}

// breakdown groups the month's expenses into the five fixed dashboard
// buckets, in fixed order, zero buckets included.
func breakdown(rows []domain.Transaction, totalIncome decimal.Decimal) []BreakdownItem {
	var estructura, proveedores, personalFijo, personalHoras, gastosCaja decimal.Decimal

	for _, t := range rows {
		if t.Type != domain.Expense {
			continue
		}
		switch {
		case t.Category.InSection(domain.SectionEstructura):
			estructura = estructura.Add(t.Amount)
		case t.Category.InSection(domain.SectionProveedores):
			proveedores = proveedores.Add(t.Amount)
		case t.Category == domain.PersonalHoras:
			personalHoras = personalHoras.Add(t.Amount)
		case t.Category == domain.NominaFija || t.Category == domain.SeguridadSocial:
			personalFijo = personalFijo.Add(t.Amount)
		case t.Category == domain.GastoCaja:
			gastosCaja = gastosCaja.Add(t.Amount)
		}
	}

	items := []BreakdownItem{
		{Group: "Estructura", Amount: estructura},
		{Group: "Proveedores", Amount: proveedores},
		{Group: "Personal Fijo", Amount: personalFijo},
		{Group: "Personal Horas", Amount: personalHoras},
		{Group: "Gastos Caja", Amount: gastosCaja},
	}
	for i := range items {
		if totalIncome.IsPositive() {
			items[i].Percentage = items[i].Amount.Div(totalIncome).Mul(decimal.NewFromInt(100)).Round(2)
		} else {
			items[i].Percentage = decimal.Zero
		}
	}
	return items
}

func personalStats(employees []domain.Employee, monthRows []domain.Transaction) PersonalStats {
	stats := PersonalStats{TotalEmployees: len(employees)}
	for _, e := range employees {
		if e.Type != domain.FixedEmployee {
			continue
		}
		stats.MonthlyFixedCost = stats.MonthlyFixedCost.Add(e.Cost)
		if e.Extras != nil {
			stats.MonthlyFixedCost = stats.MonthlyFixedCost.Add(*e.Extras)
		}
	}
	for _, t := range monthRows {
		if t.Category == domain.PersonalHoras {
			stats.VariableCost = stats.VariableCost.Add(t.Amount)
		}
	}
	return stats
}

// Annual builds the year view with per-month totals.
func (s *ReportService) Annual(ctx context.Context, year string) (*AnnualReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Annual")
	defer span.End()
	span.SetAttributes(attribute.String("report.year", year))

	if len(year) != 4 {
		return nil, &domain.ErrValidation{Field: "year", Message: "must be YYYY"}
	}

	rows := filterPrefix(cleanRows(s.finance.Transactions(ctx)), year)

	report := &AnnualReport{
		Year:    year,
		Summary: domain.Summarize(rows),
		Months:  make([]MonthSummary, 0, 12),
	}
	for m := 1; m <= 12; m++ {
		month := fmt.Sprintf("%s-%02d", year, m)
		report.Months = append(report.Months, MonthSummary{
			Month:   month,
			Summary: domain.Summarize(filterPrefix(rows, month)),
		})
	}
	return report, nil
}

// Section builds a category-scoped view. The caja section also exposes the
// payment-breakdown and hourly-staff rows (they belong to sessions), but
// its summary, like every summary, counts only clean rows.
func (s *ReportService) Section(ctx context.Context, section domain.Section) (*SectionReport, error) {
	ctx, span := reportTracer.Start(ctx, "ReportService.Section")
	defer span.End()
	span.SetAttributes(attribute.String("report.section", string(section)))

	if _, ok := domain.SectionCategories[section]; !ok {
		return nil, &domain.ErrNotFound{Resource: "section", ID: string(section)}
	}

	all := s.finance.Transactions(ctx)

	var rows []domain.Transaction
	for _, t := range all {
		switch section {
		case domain.SectionCaja:
			if t.Category.InSection(domain.SectionCaja) || t.Category == domain.PersonalHoras || t.Category == domain.DesglosePago {
				rows = append(rows, t)
			}
		default:
			if t.Category.InSection(section) {
				rows = append(rows, t)
			}
		}
	}
	if rows == nil {
		rows = []domain.Transaction{}
	}

	report := &SectionReport{
		Section:      section,
		Transactions: rows,
		Summary:      domain.CleanTotals(rows),
	}
	if section == domain.SectionCaja {
		report.Caja = cajaMetrics(all)
	}
	if section == domain.SectionPersonal {
		stats := personalStats(s.finance.Employees(ctx), rows)
		report.Personal = &stats
	}
	return report, nil
}

// cajaMetrics computes the cashbox view: how many sessions exist and the
// accumulated net of variable activity only. Structure costs, fixed
// payroll and supplier purchases are excluded so the number reflects pure
// cashbox performance.
func cajaMetrics(all []domain.Transaction) *CajaMetrics {
	clean := cleanRows(all)

	dates := make(map[string]bool)
	var variable []domain.Transaction
	for _, t := range clean {
		if t.Category.InSection(domain.SectionCaja) {
			dates[t.Date] = true
		}
		fixedCost := t.Category.InSection(domain.SectionEstructura) || t.Category == domain.NominaFija
		provider := t.Category.InSection(domain.SectionProveedores)
		if !fixedCost && !provider {
			variable = append(variable, t)
		}
	}

	return &CajaMetrics{
		SessionCount:   len(dates),
		AccumulatedNet: domain.Summarize(variable).NetBalance,
		TotalNet:       domain.Summarize(clean).NetBalance,
	}
}

// TopSuppliers ranks supplier-section expenses by supplier. Rows with no
// supplier fall into the "Otros" group. Descending by amount; groups tied
// on amount keep first-appearance order.
func (s *ReportService) TopSuppliers(ctx context.Context) []RankingEntry {
	ctx, span := reportTracer.Start(ctx, "ReportService.TopSuppliers")
	defer span.End()

	return rankExpenses(s.finance.Transactions(ctx), domain.SectionProveedores, func(t domain.Transaction) string {
		if t.Supplier == "" {
			return "Otros"
		}
		return t.Supplier
	})
}

// TopConcepts ranks structure-section expenses by description.
func (s *ReportService) TopConcepts(ctx context.Context) []RankingEntry {
	ctx, span := reportTracer.Start(ctx, "ReportService.TopConcepts")
	defer span.End()

	return rankExpenses(s.finance.Transactions(ctx), domain.SectionEstructura, func(t domain.Transaction) string {
		if t.Description == "" {
			return "Otros"
		}
		return t.Description
	})
}

func rankExpenses(all []domain.Transaction, section domain.Section, key func(domain.Transaction) string) []RankingEntry {
	totals := make(map[string]decimal.Decimal)
	order := make([]string, 0)

	for _, t := range all {
		if t.Type != domain.Expense || !t.Category.InSection(section) {
			continue
		}
		k := key(t)
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] = totals[k].Add(t.Amount)
	}

	out := make([]RankingEntry, 0, len(order))
	for _, k := range order {
		out = append(out, RankingEntry{Name: k, Amount: totals[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// ExportCSV renders the full ledger in the established export format.
// The header and column order are fixed; descriptions are always quoted
// because free-form text routinely carries commas.
func (s *ReportService) ExportCSV(ctx context.Context) string {
	ctx, span := reportTracer.Start(ctx, "ReportService.ExportCSV")
	defer span.End()

	var sb strings.Builder
	sb.WriteString("ID,Fecha,Tipo,Categoría,Descripción,Proveedor,Monto\n")
	for _, t := range s.finance.Transactions(ctx) {
		desc := strings.ReplaceAll(t.Description, `"`, `""`)
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,\"%s\",%s,%s\n",
			t.ID, t.Date, t.Type, t.Category, desc, t.Supplier, t.Amount))
	}
	return sb.String()
}

func cleanRows(rows []domain.Transaction) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, t := range rows {
		if !t.Category.ExcludedFromTotals() {
			out = append(out, t)
		}
	}
	return out
}

func filterPrefix(rows []domain.Transaction, prefix string) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(rows))
	for _, t := range rows {
		if strings.HasPrefix(t.Date, prefix) {
			out = append(out, t)
		}
	}
	return out
}

func validMonth(month string) bool {
	return len(month) == 7 && domain.ValidDate(month+"-01")
}
