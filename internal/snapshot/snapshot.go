// Package snapshot builds the monthly cash-flow snapshot of a household.
//
// Transactions are assigned to a month by their effective date and split into
// realized and pending strictly by status. Dates in the past or future never
// move a transaction between the two halves: confirming a planned expense moves
// it from pending to realized on the next computation and nowhere else.
package snapshot

import (
	"time"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/shopspring/decimal"
)

// MonthlySnapshot is the cash-flow summary of one calendar month.
type MonthlySnapshot struct {
	Month      string `json:"month"`
	MonthStart string `json:"monthStart"`
	MonthEnd   string `json:"monthEnd"`

	IncomeRealized  decimal.Decimal `json:"incomeRealized"`
	ExpenseRealized decimal.Decimal `json:"expenseRealized"`
	// Balance is incomeRealized - expenseRealized.
	Balance decimal.Decimal `json:"saldoMes"`

	IncomePlanned  decimal.Decimal `json:"incomePlanned"`
	ExpensePlanned decimal.Decimal `json:"expensePlanned"`
	// ProjectedBalance is (incomeRealized+incomePlanned) - (expenseRealized+expensePlanned).
	ProjectedBalance decimal.Decimal `json:"saldoPrevistoMes"`

	RealizedCount int `json:"realizedCount"`
	PendingCount  int `json:"pendingCount"`

	Realized []models.Transaction `json:"realized"`
	Pending  []models.Transaction `json:"pending"`
}

// Compute builds the snapshot of the month containing month.
// The input slice is not modified.
func Compute(transactions []models.Transaction, month time.Time) MonthlySnapshot {
	start := models.MonthStart(month)
	end := models.MonthEnd(month)
	startKey := start.Format(models.DateLayout)
	endKey := end.Format(models.DateLayout)

	s := MonthlySnapshot{
		Month:           models.MonthKey(start),
		MonthStart:      startKey,
		MonthEnd:        endKey,
		IncomeRealized:  decimal.Zero,
		ExpenseRealized: decimal.Zero,
		IncomePlanned:   decimal.Zero,
		ExpensePlanned:  decimal.Zero,
		Realized:        []models.Transaction{},
		Pending:         []models.Transaction{},
	}

	for _, t := range models.Active(transactions) {
		if !InRange(t.EffectiveDate(), startKey, endKey) {
			continue
		}

		switch t.Status {
		case models.StatusConfirmed:
			s.Realized = append(s.Realized, t)
			switch t.Kind {
			case models.KindIncome:
				s.IncomeRealized = s.IncomeRealized.Add(t.Amount)
			case models.KindExpense:
				s.ExpenseRealized = s.ExpenseRealized.Add(t.Amount)
			}
		case models.StatusPlanned:
			s.Pending = append(s.Pending, t)
			switch t.Kind {
			case models.KindIncome:
				s.IncomePlanned = s.IncomePlanned.Add(t.Amount)
			case models.KindExpense:
				s.ExpensePlanned = s.ExpensePlanned.Add(t.Amount)
			}
		}
	}

	s.Balance = s.IncomeRealized.Sub(s.ExpenseRealized)
	s.ProjectedBalance = s.IncomeRealized.Add(s.IncomePlanned).Sub(s.ExpenseRealized.Add(s.ExpensePlanned))
	s.RealizedCount = len(s.Realized)
	s.PendingCount = len(s.Pending)
	return s
}

// InRange reports whether the ISO date lies within [start, end].
// ISO dates order lexically, so no parsing is needed.
func InRange(date, start, end string) bool {
	return date >= start && date <= end
}

// PendingExpenses returns the planned expenses of the snapshot.
func (s MonthlySnapshot) PendingExpenses() []models.Transaction {
	var out []models.Transaction
	for _, t := range s.Pending {
		if t.Kind == models.KindExpense {
			out = append(out, t)
		}
	}
	return out
}

// PendingFixedExpenses sums the planned fixed expenses of the snapshot.
func (s MonthlySnapshot) PendingFixedExpenses() decimal.Decimal {
	var fixed []models.Transaction
	for _, t := range s.PendingExpenses() {
		if t.ExpenseType == models.ExpenseFixed {
			fixed = append(fixed, t)
		}
	}
	return models.SumAmounts(fixed)
}
