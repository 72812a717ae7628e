// Package projection estimates the end-of-month balance with a daily-rate model.
//
// Variable spending for the rest of the month is extrapolated from the average of
// recent months. When there is no history the planned variable budget stands in.
package projection

import (
	"github.com/shopspring/decimal"
)

// DefaultSafetyBufferPercent applies when the caller gives no buffer.
var DefaultSafetyBufferPercent = decimal.NewFromInt(10)

// Confidence thresholds, in elapsed days.
const (
	HighConfidenceMinDays     = 7
	FallbackConfidenceMinDays = 3
)

var (
	hundred = decimal.NewFromInt(100)
	fifty   = decimal.NewFromInt(50)
)

// RiskLevel grades the estimated end-of-month balance against the safety buffer.
type RiskLevel string

const (
	RiskSafe    RiskLevel = "safe"
	RiskCaution RiskLevel = "caution"
	RiskDanger  RiskLevel = "danger"
)

// Confidence grades how much data backs the estimate.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Input is the data the projection runs on.
type Input struct {
	CurrentBalance            decimal.Decimal
	PendingFixedExpenses      decimal.Decimal
	HistoricalVariableAverage decimal.Decimal
	PlannedBudgetVariable     decimal.Decimal
	DaysElapsed               int
	DaysInMonth               int
	// SafetyBufferPercent defaults to DefaultSafetyBufferPercent when not valid.
	SafetyBufferPercent decimal.NullDecimal
}

// Result is the end-of-month estimate.
type Result struct {
	DaysRemaining              int             `json:"daysRemaining"`
	EffectiveVariableAverage   decimal.Decimal `json:"effectiveVariableAverage"`
	DailyRate                  decimal.Decimal `json:"dailyRate"`
	ProjectedVariableRemaining decimal.Decimal `json:"projectedVariableRemaining"`
	EstimatedEndOfMonth        decimal.Decimal `json:"estimatedEndOfMonth"`
	SafetyBuffer               decimal.Decimal `json:"safetyBuffer"`
	SafeSpendingZone           decimal.Decimal `json:"safeSpendingZone"`
	RiskLevel                  RiskLevel       `json:"riskLevel"`
	RiskPercentage             int64           `json:"riskPercentage"`
	ConfidenceLevel            Confidence      `json:"confidenceLevel"`
	HasHistoricalData          bool            `json:"hasHistoricalData"`
	UsingBudgetFallback        bool            `json:"usingBudgetFallback"`
	IsDataSufficient           bool            `json:"isDataSufficient"`
}

// Project computes the end-of-month estimate.
func Project(in Input) Result {
	hasHistory := in.HistoricalVariableAverage.IsPositive()
	hasBudget := in.PlannedBudgetVariable.IsPositive()

	r := Result{
		HasHistoricalData: hasHistory,
		IsDataSufficient:  hasHistory || hasBudget,
	}

	// The budget only drives the rate when it is the sole source of data.
	r.UsingBudgetFallback = !hasHistory && hasBudget
	r.EffectiveVariableAverage = in.HistoricalVariableAverage
	if r.UsingBudgetFallback {
		r.EffectiveVariableAverage = in.PlannedBudgetVariable
	}

	r.DaysRemaining = max(0, in.DaysInMonth-in.DaysElapsed)
	r.DailyRate = decimal.Zero
	if in.DaysInMonth > 0 {
		r.DailyRate = r.EffectiveVariableAverage.Div(decimal.NewFromInt(int64(in.DaysInMonth)))
	}
	r.ProjectedVariableRemaining = r.DailyRate.Mul(decimal.NewFromInt(int64(r.DaysRemaining)))
	r.EstimatedEndOfMonth = in.CurrentBalance.Sub(in.PendingFixedExpenses).Sub(r.ProjectedVariableRemaining)

	bufferPercent := DefaultSafetyBufferPercent
	if in.SafetyBufferPercent.Valid {
		bufferPercent = in.SafetyBufferPercent.Decimal
	}
	r.SafetyBuffer = in.CurrentBalance.Abs().Mul(bufferPercent).Div(hundred)
	r.SafeSpendingZone = decimal.Max(decimal.Zero, in.CurrentBalance.Sub(in.PendingFixedExpenses).Sub(r.SafetyBuffer))

	r.RiskLevel = riskLevel(r.EstimatedEndOfMonth, r.SafetyBuffer)
	r.RiskPercentage = riskPercentage(in.CurrentBalance, r.EstimatedEndOfMonth)
	r.ConfidenceLevel = confidence(hasHistory, r.UsingBudgetFallback, in.DaysElapsed)
	return r
}

func riskLevel(estimated, buffer decimal.Decimal) RiskLevel {
	switch {
	case estimated.GreaterThanOrEqual(buffer):
		return RiskSafe
	case !estimated.IsNegative():
		return RiskCaution
	default:
		return RiskDanger
	}
}

// riskPercentage maps the estimate onto 0..100 for a progress indicator.
// An estimate of zero sits at 50; keeping the whole balance reaches 100 and
// overshooting it by the whole balance reaches 0.
func riskPercentage(current, estimated decimal.Decimal) int64 {
	if !current.IsPositive() {
		return 0
	}
	if estimated.GreaterThanOrEqual(current) {
		return 100
	}
	pct := fifty.Add(fifty.Mul(estimated).Div(current))
	pct = decimal.Min(hundred, decimal.Max(decimal.Zero, pct))
	return pct.Round(0).IntPart()
}

func confidence(hasHistory, usingFallback bool, daysElapsed int) Confidence {
	switch {
	case hasHistory && daysElapsed >= HighConfidenceMinDays:
		return ConfidenceHigh
	case hasHistory, usingFallback && daysElapsed >= FallbackConfidenceMinDays:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
