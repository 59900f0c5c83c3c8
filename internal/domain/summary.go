package domain

// Summarize folds a transaction list into income/expense/net totals.
// Pure and total: any list (including empty) yields a valid summary, the
// result does not depend on element order, and
// NetBalance == TotalIncome - TotalExpense always holds.
func Summarize(transactions []Transaction) FinancialSummary {
	var s FinancialSummary
	for _, t := range transactions {
		if t.Type == Income {
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
			s.NetBalance = s.NetBalance.Add(t.Amount)
		} else {
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
			s.NetBalance = s.NetBalance.Sub(t.Amount)
		}
	}
	return s
}

// CleanTotals filters out categories excluded from totals (the payment
// breakdown marker) before summarizing.
func CleanTotals(transactions []Transaction) FinancialSummary {
	clean := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if !t.Category.ExcludedFromTotals() {
			clean = append(clean, t)
		}
	}
	return Summarize(clean)
}
