// Package metrics computes the unified household metrics: the monthly totals of
// the snapshot plus realized, pending and projected balances per account.
//
// Account reconciliation is date sensitive where the monthly cards are not: a
// confirmed transaction only counts toward an account's realized balance when
// its effective date is on or before the end of the current calendar month.
// Using the month end rather than today keeps timezone drift out while still
// excluding recurring postings already generated for next month.
package metrics

import (
	"sort"
	"time"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/snapshot"
	"github.com/shopspring/decimal"
)

// Options controls the reconciliation and projection cutoffs.
type Options struct {
	// Now is the reference instant; the realized cutoff is the end of its month.
	Now time.Time
	// WindowEnd bounds the planned transactions counted as pending.
	// Zero means the end of the target month.
	WindowEnd time.Time
}

// AccountMetrics holds the balances of a single account.
type AccountMetrics struct {
	AccountID        string          `json:"accountId"`
	IsReserve        bool            `json:"isReserve"`
	RealizedBalance  decimal.Decimal `json:"realizedBalance"`
	PendingIncome    decimal.Decimal `json:"pendingIncome"`
	PendingExpenses  decimal.Decimal `json:"pendingExpenses"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`

	PlannedIncome   []models.Transaction `json:"plannedIncome"`
	PlannedExpenses []models.Transaction `json:"plannedExpenses"`
}

// Totals aggregates balances over a set of accounts.
type Totals struct {
	RealizedBalance  decimal.Decimal `json:"realizedBalance"`
	PendingIncome    decimal.Decimal `json:"pendingIncome"`
	PendingExpenses  decimal.Decimal `json:"pendingExpenses"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
}

// UnifiedMetrics is the household-wide and per-account view of one month.
type UnifiedMetrics struct {
	Monthly   snapshot.MonthlySnapshot `json:"monthly"`
	Accounts  []AccountMetrics         `json:"accounts"`
	Total     Totals                   `json:"total"`
	Available Totals                   `json:"available"`
	Reserve   Totals                   `json:"reserve"`
	Cutoff    string                   `json:"cutoff"`
	WindowEnd string                   `json:"windowEnd"`
}

func zeroTotals() Totals {
	return Totals{
		RealizedBalance:  decimal.Zero,
		PendingIncome:    decimal.Zero,
		PendingExpenses:  decimal.Zero,
		ProjectedBalance: decimal.Zero,
	}
}

func (t Totals) add(a AccountMetrics) Totals {
	return Totals{
		RealizedBalance:  t.RealizedBalance.Add(a.RealizedBalance),
		PendingIncome:    t.PendingIncome.Add(a.PendingIncome),
		PendingExpenses:  t.PendingExpenses.Add(a.PendingExpenses),
		ProjectedBalance: t.ProjectedBalance.Add(a.ProjectedBalance),
	}
}

// Compute builds the unified metrics for the month containing month.
// Inactive accounts and transaction legs on unknown accounts are ignored.
func Compute(transactions []models.Transaction, accounts []models.Account, month time.Time, opts Options) UnifiedMetrics {
	cutoff := models.MonthEnd(opts.Now).Format(models.DateLayout)
	windowEnd := opts.WindowEnd
	if windowEnd.IsZero() {
		windowEnd = models.MonthEnd(month)
	}
	windowKey := models.Day(windowEnd).Format(models.DateLayout)

	byID := make(map[string]*AccountMetrics)
	order := make([]string, 0, len(accounts))
	for _, a := range accounts {
		if !a.IsActive {
			continue
		}
		if _, dup := byID[a.ID]; dup {
			continue
		}
		byID[a.ID] = &AccountMetrics{
			AccountID:        a.ID,
			IsReserve:        a.IsReserve,
			RealizedBalance:  decimal.Zero,
			PendingIncome:    decimal.Zero,
			PendingExpenses:  decimal.Zero,
			ProjectedBalance: decimal.Zero,
			PlannedIncome:    []models.Transaction{},
			PlannedExpenses:  []models.Transaction{},
		}
		order = append(order, a.ID)
	}

	for _, t := range models.Active(transactions) {
		date := t.EffectiveDate()

		switch t.Status {
		case models.StatusConfirmed:
			if date > cutoff {
				continue
			}
			for _, leg := range legs(t) {
				if acc, ok := byID[leg.accountID]; ok {
					acc.RealizedBalance = acc.RealizedBalance.Add(leg.amount)
				}
			}
		case models.StatusPlanned:
			if date > windowKey {
				continue
			}
			for _, leg := range legs(t) {
				acc, ok := byID[leg.accountID]
				if !ok {
					continue
				}
				if leg.amount.IsNegative() {
					acc.PendingExpenses = acc.PendingExpenses.Add(t.Amount)
					acc.PlannedExpenses = append(acc.PlannedExpenses, t)
				} else {
					acc.PendingIncome = acc.PendingIncome.Add(t.Amount)
					acc.PlannedIncome = append(acc.PlannedIncome, t)
				}
			}
		}
	}

	m := UnifiedMetrics{
		Monthly:   snapshot.Compute(transactions, month),
		Accounts:  make([]AccountMetrics, 0, len(order)),
		Total:     zeroTotals(),
		Available: zeroTotals(),
		Reserve:   zeroTotals(),
		Cutoff:    cutoff,
		WindowEnd: windowKey,
	}

	for _, id := range order {
		acc := byID[id]
		acc.ProjectedBalance = acc.RealizedBalance.Add(acc.PendingIncome).Sub(acc.PendingExpenses)
		SortByAmountDesc(acc.PlannedIncome)
		SortByAmountDesc(acc.PlannedExpenses)

		m.Accounts = append(m.Accounts, *acc)
		m.Total = m.Total.add(*acc)
		if acc.IsReserve {
			m.Reserve = m.Reserve.add(*acc)
		} else {
			m.Available = m.Available.add(*acc)
		}
	}

	return m
}

// Account returns the metrics of the given account.
func (m UnifiedMetrics) Account(id string) (AccountMetrics, bool) {
	for _, a := range m.Accounts {
		if a.AccountID == id {
			return a, true
		}
	}
	return AccountMetrics{}, false
}

type leg struct {
	accountID string
	amount    decimal.Decimal
}

// legs splits a transaction into signed per-account movements.
func legs(t models.Transaction) []leg {
	switch t.Kind {
	case models.KindIncome:
		return []leg{{t.AccountID, t.Amount}}
	case models.KindExpense:
		return []leg{{t.AccountID, t.Amount.Neg()}}
	case models.KindTransfer:
		out := []leg{{t.AccountID, t.Amount.Neg()}}
		if t.ToAccountID != "" {
			out = append(out, leg{t.ToAccountID, t.Amount})
		}
		return out
	}
	return nil
}

// SortByAmountDesc orders transactions by amount, largest first, ties by id.
func SortByAmountDesc(transactions []models.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		if c := transactions[i].Amount.Cmp(transactions[j].Amount); c != 0 {
			return c > 0
		}
		return transactions[i].ID < transactions[j].ID
	})
}
