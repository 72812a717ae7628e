package forecast

import (
	"testing"
	"time"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func negativeSnapshot(month time.Time) snapshot.MonthlySnapshot {
	return snapshot.Compute([]models.Transaction{
		{ID: "in", Kind: models.KindIncome, Amount: decimal.NewFromInt(1000), Date: "2026-10-01", Status: models.StatusConfirmed},
		{ID: "rent", Kind: models.KindExpense, Amount: decimal.NewFromInt(1600), Date: "2026-10-28", Status: models.StatusPlanned},
	}, month)
}

func TestDerive_Negative(t *testing.T) {
	s := negativeSnapshot(day(2026, 10, 1))

	st := Derive(s, day(2026, 10, 19))

	assert.True(t, st.IsNegative)
	assert.True(t, st.RiskAmount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, BalanceNegative, st.BalanceState)
	assert.Equal(t, 12, st.DaysUntilMonthEnd)
	assert.True(t, st.ShowRiskPreview)
}

func TestDerive_NonNegative(t *testing.T) {
	s := snapshot.Compute([]models.Transaction{
		{ID: "in", Kind: models.KindIncome, Amount: decimal.NewFromInt(1000), Date: "2026-10-01", Status: models.StatusConfirmed},
	}, day(2026, 10, 1))

	st := Derive(s, day(2026, 10, 19))

	assert.False(t, st.IsNegative)
	assert.True(t, st.RiskAmount.IsZero())
	assert.Equal(t, BalanceNonNegative, st.BalanceState)
	assert.False(t, st.ShowRiskPreview)
}

func TestDerive_PreviewWindow(t *testing.T) {
	s := negativeSnapshot(day(2026, 10, 1))

	tests := []struct {
		name    string
		today   time.Time
		days    int
		preview bool
	}{
		{"five days left", day(2026, 10, 26), 5, true},
		{"four days left", day(2026, 10, 27), 4, false},
		{"last day", day(2026, 10, 31), 0, false},
		{"before the month", day(2026, 9, 20), 41, true},
		{"after the month", day(2026, 11, 2), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := Derive(s, tt.today)
			assert.Equal(t, tt.days, st.DaysUntilMonthEnd)
			assert.Equal(t, tt.preview, st.ShowRiskPreview)
		})
	}
}

func TestDerive_NoPreviewWithoutPlannedExpenses(t *testing.T) {
	s := snapshot.Compute([]models.Transaction{
		{ID: "out", Kind: models.KindExpense, Amount: decimal.NewFromInt(50), Date: "2026-10-02", Status: models.StatusConfirmed},
	}, day(2026, 10, 1))

	st := Derive(s, day(2026, 10, 3))

	assert.True(t, st.IsNegative)
	assert.False(t, st.ShowRiskPreview)
}

func TestDetectBalanceTransition(t *testing.T) {
	assert.Equal(t, TransitionNegativeToPositive, DetectBalanceTransition(BalanceNegative, BalanceNonNegative))
	assert.Equal(t, TransitionPositiveToNegative, DetectBalanceTransition(BalanceNonNegative, BalanceNegative))

	for _, s := range []BalanceState{BalanceNegative, BalanceNonNegative} {
		assert.Equal(t, TransitionNone, DetectBalanceTransition(s, s))
		assert.Equal(t, TransitionNone, DetectBalanceTransition(BalanceUnknown, s))
	}
}
