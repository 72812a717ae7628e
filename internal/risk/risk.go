// Package risk scans planned obligations for overdue payments and for upcoming
// payments the current balance cannot cover.
//
// Only one category is surfaced at a time. Overdue items dominate; coverage risk
// is only assessed when nothing is overdue and the projected balance is not
// negative.
package risk

import (
	"sort"
	"time"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/shopspring/decimal"
)

// Coverage window, in days until due, inclusive on both ends.
const (
	CoverageMinDays = 1
	CoverageMaxDays = 7
)

// Item is a single at-risk obligation.
// Days is the days overdue for overdue items and the days until due for coverage items.
type Item struct {
	ID              string          `json:"id"`
	Description     string          `json:"description"`
	Days            int             `json:"days"`
	Amount          decimal.Decimal `json:"amount"`
	EffectiveDate   string          `json:"effectiveDate"`
	CategoryID      string          `json:"categoryId,omitempty"`
	CategoryName    string          `json:"categoryName,omitempty"`
	SubcategoryID   string          `json:"subcategoryId,omitempty"`
	SubcategoryName string          `json:"subcategoryName,omitempty"`
}

// Assessment is the outcome of a risk scan.
type Assessment struct {
	OverdueExpenses      []Item `json:"overdueExpenses"`
	CoverageRiskExpenses []Item `json:"coverageRiskExpenses"`
}

// Input carries the balances the scan compares against.
type Input struct {
	Transactions     []models.Transaction
	RealizedBalance  decimal.Decimal
	ProjectedBalance decimal.Decimal
	Today            time.Time
}

// Assess runs the overdue scan and, when it finds nothing and the projection is
// not negative, the coverage scan.
func Assess(in Input) Assessment {
	a := Assessment{
		OverdueExpenses:      DetectOverdue(in.Transactions, in.Today),
		CoverageRiskExpenses: []Item{},
	}
	if len(a.OverdueExpenses) == 0 && !in.ProjectedBalance.IsNegative() {
		a.CoverageRiskExpenses = DetectCoverageRisk(in.Transactions, in.RealizedBalance, in.Today)
	}
	return a
}

// HasOverdue reports whether any planned expense is past its effective date.
func (a Assessment) HasOverdue() bool {
	return len(a.OverdueExpenses) > 0
}

// HasCoverageRisk reports whether the assessment surfaced coverage risk.
func (a Assessment) HasCoverageRisk() bool {
	return len(a.CoverageRiskExpenses) > 0
}

// MaxDaysOverdue returns the largest days-overdue count, or 0.
func (a Assessment) MaxDaysOverdue() int {
	most := 0
	for _, it := range a.OverdueExpenses {
		most = max(most, it.Days)
	}
	return most
}

// TotalOverdue sums the overdue amounts.
func (a Assessment) TotalOverdue() decimal.Decimal {
	total := decimal.Zero
	for _, it := range a.OverdueExpenses {
		total = total.Add(it.Amount)
	}
	return total
}

// DetectOverdue returns planned expenses whose effective date is before today,
// most overdue first.
func DetectOverdue(transactions []models.Transaction, today time.Time) []Item {
	items := []Item{}
	for _, t := range transactions {
		if !t.IsPlanned() || t.Kind != models.KindExpense {
			continue
		}
		due := models.ParseDate(t.EffectiveDate())
		if due.IsZero() {
			continue
		}
		days := models.DaysBetween(due, today)
		if days <= 0 {
			continue
		}
		items = append(items, newItem(t, days))
	}
	sortItems(items, func(a, b Item) bool { return a.Days > b.Days })
	return items
}

// DetectCoverageRisk returns planned expenses due within the coverage window whose
// amount exceeds the realized balance, soonest first. It applies no priority gate.
func DetectCoverageRisk(transactions []models.Transaction, realizedBalance decimal.Decimal, today time.Time) []Item {
	items := []Item{}
	for _, t := range transactions {
		if !t.IsPlanned() || t.Kind != models.KindExpense {
			continue
		}
		due := models.ParseDate(t.EffectiveDate())
		if due.IsZero() {
			continue
		}
		days := models.DaysBetween(today, due)
		if days < CoverageMinDays || days > CoverageMaxDays {
			continue
		}
		if !t.Amount.GreaterThan(realizedBalance) {
			continue
		}
		items = append(items, newItem(t, days))
	}
	sortItems(items, func(a, b Item) bool { return a.Days < b.Days })
	return items
}

func newItem(t models.Transaction, days int) Item {
	return Item{
		ID:              t.ID,
		Description:     t.Description,
		Days:            days,
		Amount:          t.Amount,
		EffectiveDate:   t.EffectiveDate(),
		CategoryID:      t.CategoryID,
		CategoryName:    t.CategoryName,
		SubcategoryID:   t.SubcategoryID,
		SubcategoryName: t.SubcategoryName,
	}
}

// sortItems orders by the primary key, then by id so output never depends on input order.
func sortItems(items []Item, less func(a, b Item) bool) {
	sort.SliceStable(items, func(i, j int) bool {
		if less(items[i], items[j]) {
			return true
		}
		if less(items[j], items[i]) {
			return false
		}
		return items[i].ID < items[j].ID
	})
}
