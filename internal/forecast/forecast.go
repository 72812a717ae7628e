// Package forecast derives the month's risk outlook from a snapshot.
package forecast

import (
	"time"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/snapshot"
	"github.com/shopspring/decimal"
)

// PreviewMinDays is the minimum number of days left in the month for a risk
// preview to be shown instead of the full alert.
const PreviewMinDays = 5

// BalanceState classifies a month's projected balance.
type BalanceState string

const (
	BalanceUnknown     BalanceState = ""
	BalanceNegative    BalanceState = "NEGATIVE"
	BalanceNonNegative BalanceState = "NON_NEGATIVE"
)

// BalanceTransition is a change of BalanceState between two computation cycles.
type BalanceTransition string

const (
	TransitionNone               BalanceTransition = ""
	TransitionNegativeToPositive BalanceTransition = "NEGATIVE_TO_POSITIVE"
	TransitionPositiveToNegative BalanceTransition = "POSITIVE_TO_NEGATIVE"
)

// State is the derived forecast of one month.
type State struct {
	IsNegative        bool            `json:"isNegative"`
	RiskAmount        decimal.Decimal `json:"riskAmount"`
	BalanceState      BalanceState    `json:"balanceState"`
	DaysUntilMonthEnd int             `json:"daysUntilMonthEnd"`
	ShowRiskPreview   bool            `json:"showRiskPreview"`
}

// Derive computes the forecast of the snapshot's month as seen on today.
func Derive(s snapshot.MonthlySnapshot, today time.Time) State {
	isNegative := s.ProjectedBalance.IsNegative()

	st := State{
		IsNegative:   isNegative,
		RiskAmount:   decimal.Zero,
		BalanceState: BalanceNonNegative,
	}
	if isNegative {
		st.RiskAmount = s.ProjectedBalance.Abs()
		st.BalanceState = BalanceNegative
	}

	monthEnd := models.ParseDate(s.MonthEnd)
	days := models.DaysBetween(today, monthEnd)
	if days < 0 {
		days = 0
	}
	st.DaysUntilMonthEnd = days

	notPast := models.Day(today).Format(models.DateLayout) <= s.MonthEnd
	st.ShowRiskPreview = isNegative &&
		s.ExpensePlanned.IsPositive() &&
		notPast &&
		days >= PreviewMinDays

	return st
}

// DetectBalanceTransition compares the previous cycle's state with the current one.
// An unknown previous state never produces a transition.
func DetectBalanceTransition(previous, current BalanceState) BalanceTransition {
	switch {
	case previous == BalanceNegative && current == BalanceNonNegative:
		return TransitionNegativeToPositive
	case previous == BalanceNonNegative && current == BalanceNegative:
		return TransitionPositiveToNegative
	}
	return TransitionNone
}
