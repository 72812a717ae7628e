// Package engine runs the whole calculation pipeline for one household refresh.
//
// Run is a pure function of its input: it performs no I/O, does not modify its
// arguments and returns identical output for identical input. Callers re-run it
// on every data refresh instead of patching earlier results.
package engine

import (
	"log/slog"
	"time"

	"github.com/rocjay1/cashflow/internal/forecast"
	"github.com/rocjay1/cashflow/internal/logging"
	"github.com/rocjay1/cashflow/internal/metrics"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/notify"
	"github.com/rocjay1/cashflow/internal/projection"
	"github.com/rocjay1/cashflow/internal/risk"
	"github.com/rocjay1/cashflow/internal/snapshot"
	"github.com/shopspring/decimal"
)

// HistoryMonths is how many past months feed the variable-spend average.
const HistoryMonths = 3

// Input is everything one refresh reads from the persistence layer.
type Input struct {
	Transactions          []models.Transaction
	Accounts              []models.Account
	PreviousState         forecast.BalanceState
	VariableHistory       []models.VariableSpendMonth
	PlannedBudgetVariable decimal.Decimal
	SafetyBufferPercent   decimal.NullDecimal
	// Month selects the target month; zero means the month of Today.
	Month time.Time
	Today time.Time
}

// Result holds the output of every stage.
type Result struct {
	Month      string                     `json:"month"`
	Snapshot   snapshot.MonthlySnapshot   `json:"snapshot"`
	Metrics    metrics.UnifiedMetrics     `json:"metrics"`
	Forecast   forecast.State             `json:"forecast"`
	Transition forecast.BalanceTransition `json:"transition,omitempty"`
	Risk       risk.Assessment            `json:"risk"`
	Projection projection.Result          `json:"projection"`
	Actions    []notify.Action            `json:"actions"`
}

// Engine wires the pipeline stages together.
type Engine struct {
	log *slog.Logger
}

// New creates an Engine. A nil logger disables debug output.
func New(logger *slog.Logger) *Engine {
	return &Engine{log: logging.OrDiscard(logger)}
}

// Run computes snapshot, metrics, forecast, risk, projection and notification actions.
func (e *Engine) Run(in Input) Result {
	month := in.Month
	if month.IsZero() {
		month = in.Today
	}
	month = models.MonthStart(month)
	monthKey := models.MonthKey(month)

	m := metrics.Compute(in.Transactions, in.Accounts, month, metrics.Options{Now: in.Today})
	s := m.Monthly
	e.log.Debug("snapshot computed",
		"month", monthKey,
		"saldo_mes", s.Balance.String(),
		"saldo_previsto_mes", s.ProjectedBalance.String(),
		"realized_count", s.RealizedCount,
		"pending_count", s.PendingCount,
	)
	e.log.Debug("unified metrics computed",
		"month", monthKey,
		"accounts", len(m.Accounts),
		"available_realized", m.Available.RealizedBalance.String(),
		"available_projected", m.Available.ProjectedBalance.String(),
		"reserve_realized", m.Reserve.RealizedBalance.String(),
	)

	f := forecast.Derive(s, in.Today)
	transition := forecast.DetectBalanceTransition(in.PreviousState, f.BalanceState)
	e.log.Debug("forecast derived",
		"month", monthKey,
		"balance_state", f.BalanceState,
		"previous_state", in.PreviousState,
		"transition", transition,
		"risk_amount", f.RiskAmount.String(),
		"show_risk_preview", f.ShowRiskPreview,
	)

	assessment := risk.Assess(risk.Input{
		Transactions:     in.Transactions,
		RealizedBalance:  m.Available.RealizedBalance,
		ProjectedBalance: s.ProjectedBalance,
		Today:            in.Today,
	})
	e.log.Debug("risk assessed",
		"overdue_count", len(assessment.OverdueExpenses),
		"coverage_risk_count", len(assessment.CoverageRiskExpenses),
	)

	p := projection.Project(projection.Input{
		CurrentBalance:            m.Available.RealizedBalance,
		PendingFixedExpenses:      s.PendingFixedExpenses(),
		HistoricalVariableAverage: models.AverageVariableSpend(in.VariableHistory, month, HistoryMonths),
		PlannedBudgetVariable:     in.PlannedBudgetVariable,
		DaysElapsed:               DaysElapsed(month, in.Today),
		DaysInMonth:               models.DaysInMonth(month),
		SafetyBufferPercent:       in.SafetyBufferPercent,
	})
	e.log.Debug("end of month projected",
		"estimated_end_of_month", p.EstimatedEndOfMonth.String(),
		"risk_level", p.RiskLevel,
		"confidence", p.ConfidenceLevel,
		"using_budget_fallback", p.UsingBudgetFallback,
	)

	actions := notify.Evaluate(notify.Input{
		Snapshot:      s,
		Forecast:      f,
		Risk:          assessment,
		PreviousState: in.PreviousState,
		Transition:    transition,
	})
	for _, a := range actions {
		e.log.Debug("notification action", "type", a.Type())
	}

	return Result{
		Month:      monthKey,
		Snapshot:   s,
		Metrics:    m,
		Forecast:   f,
		Transition: transition,
		Risk:       assessment,
		Projection: p,
		Actions:    actions,
	}
}

// DaysElapsed counts the days of month already lived through on today:
// 0 before the month, the day of month within it, the full month after it.
func DaysElapsed(month, today time.Time) int {
	start := models.MonthStart(month)
	end := models.MonthEnd(month)
	day := models.Day(today)
	switch {
	case day.Before(start):
		return 0
	case day.After(end):
		return end.Day()
	default:
		return day.Day()
	}
}
