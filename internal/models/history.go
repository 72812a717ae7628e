package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// VariableSpendMonth is a pre-aggregated monthly total of variable expenses.
type VariableSpendMonth struct {
	Month string          `json:"month"` // YYYY-MM
	Total decimal.Decimal `json:"total"`
}

// PlannedBudget is the household's planned variable spending for a month.
type PlannedBudget struct {
	Month    string          `json:"month"`
	Variable decimal.Decimal `json:"variable"`
}

// AverageVariableSpend averages the recorded totals of the `months` calendar months
// preceding the month of ref. Months with no record are skipped; zero is returned
// when nothing was recorded.
func AverageVariableSpend(history []VariableSpendMonth, ref time.Time, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}

	wanted := make(map[string]bool, months)
	start := MonthStart(ref)
	for i := 1; i <= months; i++ {
		wanted[MonthKey(start.AddDate(0, -i, 0))] = true
	}

	total := decimal.Zero
	count := 0
	seen := make(map[string]bool, months)
	for _, h := range history {
		if !wanted[h.Month] || seen[h.Month] {
			continue
		}
		seen[h.Month] = true
		total = total.Add(h.Total)
		count++
	}

	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}

// AggregateVariableSpend totals confirmed variable expenses per effective month,
// ordered by month.
func AggregateVariableSpend(transactions []Transaction) []VariableSpendMonth {
	totals := make(map[string]decimal.Decimal)
	for _, t := range transactions {
		if !t.IsConfirmed() || t.Kind != KindExpense || t.ExpenseType != ExpenseVariable {
			continue
		}
		d := ParseDate(t.EffectiveDate())
		if d.IsZero() {
			continue
		}
		key := MonthKey(d)
		totals[key] = totals[key].Add(t.Amount)
	}

	months := make([]string, 0, len(totals))
	for m := range totals {
		months = append(months, m)
	}
	slices.Sort(months)

	history := make([]VariableSpendMonth, 0, len(months))
	for _, m := range months {
		history = append(history, VariableSpendMonth{Month: m, Total: totals[m]})
	}
	return history
}
