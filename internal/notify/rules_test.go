package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rocjay1/cashflow/internal/cta"
	"github.com/rocjay1/cashflow/internal/forecast"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/risk"
	"github.com/rocjay1/cashflow/internal/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2026, time.October, 19, 8, 0, 0, 0, time.UTC)

func expense(id string, amount int64, date string, status models.Status) models.Transaction {
	return models.Transaction{
		ID:          id,
		Kind:        models.KindExpense,
		Description: id,
		Amount:      decimal.NewFromInt(amount),
		Date:        date,
		Status:      status,
		AccountID:   "checking",
	}
}

func income(id string, amount int64, date string, status models.Status) models.Transaction {
	t := expense(id, amount, date, status)
	t.Kind = models.KindIncome
	return t
}

// build runs the upstream stages the way the engine does.
func build(txs []models.Transaction, realized decimal.Decimal, previous forecast.BalanceState) Input {
	s := snapshot.Compute(txs, today)
	f := forecast.Derive(s, today)
	return Input{
		Snapshot: s,
		Forecast: f,
		Risk: risk.Assess(risk.Input{
			Transactions:     txs,
			RealizedBalance:  realized,
			ProjectedBalance: s.ProjectedBalance,
			Today:            today,
		}),
		PreviousState: previous,
	}
}

func types(actions []Action) []ActionType {
	out := make([]ActionType, len(actions))
	for i, a := range actions {
		out[i] = a.Type()
	}
	return out
}

func TestEvaluate_Quiet(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 5000, "2026-10-01", models.StatusConfirmed),
		expense("rent", 1500, "2026-10-28", models.StatusPlanned),
	}, decimal.NewFromInt(5000), forecast.BalanceNonNegative)

	actions := Evaluate(in)

	assert.NotNil(t, actions)
	assert.Empty(t, actions)
}

func TestEvaluate_OverdueDominatesMonthAtRisk(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 1000, "2026-10-01", models.StatusConfirmed),
		expense("water", 80, "2026-10-15", models.StatusPlanned),
		expense("rent", 1500, "2026-10-28", models.StatusPlanned),
	}, decimal.NewFromInt(1000), forecast.BalanceUnknown)
	require.True(t, in.Forecast.IsNegative)

	actions := Evaluate(in)

	require.Len(t, actions, 1)
	create, ok := actions[0].(Create)
	require.True(t, ok)
	assert.Equal(t, EventPaymentDelayed, create.Payload.EventType)
	assert.Equal(t, OverdueReferenceID, create.Payload.ReferenceID)
	assert.Equal(t, KeyPaymentDelayedSingle, create.Payload.MessageKey)
	assert.Equal(t, SeverityWarning, create.Payload.Severity)
	assert.Equal(t, 4, create.Payload.Params["daysOverdue"])
	assert.Equal(t, []string{"water"}, create.Payload.Params["transactionIds"])
	assert.Equal(t, "water", create.Payload.EntityID)
}

func TestEvaluate_OverduePluralEscalates(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 9000, "2026-10-01", models.StatusConfirmed),
		expense("water", 80, "2026-10-15", models.StatusPlanned),
		expense("power", 120, "2026-10-05", models.StatusPlanned),
	}, decimal.NewFromInt(9000), forecast.BalanceNonNegative)

	actions := Evaluate(in)

	require.Len(t, actions, 1)
	p := actions[0].(Create).Payload
	assert.Equal(t, KeyPaymentDelayedPlural, p.MessageKey)
	assert.Equal(t, SeverityAction, p.Severity)
	assert.Equal(t, 2, p.Params["count"])
	assert.Equal(t, 14, p.Params["maxDaysOverdue"])
	assert.Equal(t, json.Number("200"), p.Params["totalAmount"])
	assert.Equal(t, []string{"power", "water"}, p.Params["transactionIds"])
	assert.Empty(t, p.EntityID)
}

func TestEvaluate_MonthAtRiskPreview(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 1000, "2026-10-01", models.StatusConfirmed),
		expense("rent", 1500, "2026-10-28", models.StatusPlanned),
	}, decimal.NewFromInt(1000), forecast.BalanceNegative)
	require.True(t, in.Forecast.ShowRiskPreview)

	actions := Evaluate(in)

	require.Len(t, actions, 1)
	p := actions[0].(Create).Payload
	assert.Equal(t, EventMonthAtRiskPreview, p.EventType)
	assert.Equal(t, "2026-10", p.ReferenceID)
	assert.Equal(t, SeverityWarning, p.Severity)
	assert.Equal(t, KeyMonthAtRiskPreview, p.MessageKey)
	assert.Equal(t, cta.Filter{View: cta.ViewMonthPending, Status: "planned", Month: "2026-10"}, cta.ParseTarget(p.CtaTarget))
}

func TestEvaluate_MonthAtRiskFull(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 1000, "2026-10-01", models.StatusConfirmed),
		expense("rent", 1500, "2026-10-28", models.StatusPlanned),
	}, decimal.NewFromInt(1000), forecast.BalanceNegative)
	in.Forecast.ShowRiskPreview = false

	actions := Evaluate(in)

	require.Len(t, actions, 1)
	p := actions[0].(Create).Payload
	assert.Equal(t, EventMonthAtRisk, p.EventType)
	assert.Equal(t, SeverityAction, p.Severity)
	assert.Equal(t, json.Number("500"), p.Params["riskAmount"])
}

func TestEvaluate_CoverageRiskPerExpense(t *testing.T) {
	insurance := expense("insurance", 800, "2026-10-22", models.StatusPlanned)
	insurance.CategoryID = "bills"
	in := build([]models.Transaction{
		income("salary", 3000, "2026-10-25", models.StatusPlanned),
		income("gift", 600, "2026-10-02", models.StatusConfirmed),
		insurance,
		expense("tuition", 900, "2026-10-24", models.StatusPlanned),
	}, decimal.NewFromInt(600), forecast.BalanceNonNegative)

	actions := Evaluate(in)

	require.Len(t, actions, 2)
	first := actions[0].(Create).Payload
	second := actions[1].(Create).Payload
	assert.Equal(t, EventCoverageRisk, first.EventType)
	assert.Equal(t, "insurance", first.ReferenceID)
	assert.Equal(t, 3, first.Params["daysUntilDue"])
	assert.Equal(t, "bills", cta.ParseTarget(first.CtaTarget).CategoryID)
	assert.Equal(t, "tuition", second.ReferenceID)
	assert.Equal(t, SeverityWarning, second.Severity)
}

func TestEvaluate_CoverageSuppressedByOverdue(t *testing.T) {
	txs := []models.Transaction{
		income("salary", 3000, "2026-10-25", models.StatusPlanned),
		income("gift", 600, "2026-10-02", models.StatusConfirmed),
		expense("insurance", 800, "2026-10-22", models.StatusPlanned),
		expense("water", 60, "2026-10-10", models.StatusPlanned),
	}
	in := build(txs, decimal.NewFromInt(600), forecast.BalanceNonNegative)

	assert.NotEmpty(t, risk.DetectCoverageRisk(txs, decimal.NewFromInt(600), today))

	actions := Evaluate(in)

	require.Len(t, actions, 1)
	assert.Equal(t, EventPaymentDelayed, actions[0].(Create).Payload.EventType)
}

func TestEvaluate_TurnsNegative(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 1000, "2026-10-01", models.StatusConfirmed),
		expense("rent", 1500, "2026-10-28", models.StatusPlanned),
	}, decimal.NewFromInt(1000), forecast.BalanceNonNegative)

	actions := Evaluate(in)

	assert.Equal(t, []ActionType{ActionToast, ActionCreate}, types(actions))
	toast := actions[0].(Toast).Payload
	assert.Equal(t, EventBalanceNegative, toast.EventType)
	assert.Equal(t, KeyToastBalanceNegative, toast.MessageKey)
	assert.Equal(t, json.Number("500"), toast.Params["riskAmount"])
}

func TestEvaluate_Recovers(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 2000, "2026-10-01", models.StatusConfirmed),
		expense("rent", 1500, "2026-10-28", models.StatusPlanned),
	}, decimal.NewFromInt(2000), forecast.BalanceNegative)

	actions := Evaluate(in)

	assert.Equal(t, []ActionType{ActionToast, ActionArchive, ActionArchive}, types(actions))
	assert.Equal(t, EventBalanceRecovered, actions[0].(Toast).Payload.EventType)
	assert.Equal(t, Archive{EventType: EventMonthAtRisk, ReferenceID: "2026-10"}, actions[1])
	assert.Equal(t, Archive{EventType: EventMonthAtRiskPreview, ReferenceID: "2026-10"}, actions[2])
}

func TestEvaluate_ExplicitTransitionWins(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 2000, "2026-10-01", models.StatusConfirmed),
	}, decimal.NewFromInt(2000), forecast.BalanceNonNegative)
	in.Transition = forecast.TransitionNegativeToPositive

	actions := Evaluate(in)

	assert.Equal(t, []ActionType{ActionToast, ActionArchive, ActionArchive}, types(actions))
}

func TestEvaluate_Idempotent(t *testing.T) {
	in := build([]models.Transaction{
		income("salary", 1000, "2026-10-01", models.StatusConfirmed),
		expense("water", 80, "2026-10-15", models.StatusPlanned),
		expense("power", 120, "2026-10-05", models.StatusPlanned),
	}, decimal.NewFromInt(1000), forecast.BalanceNonNegative)

	first, err := json.Marshal(Evaluate(in))
	require.NoError(t, err)
	second, err := json.Marshal(Evaluate(in))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestEventTypesHaveFilters(t *testing.T) {
	for _, e := range []EventType{
		EventPaymentDelayed, EventMonthAtRisk, EventMonthAtRiskPreview,
		EventCoverageRisk, EventBalanceNegative, EventBalanceRecovered,
	} {
		assert.False(t, cta.FilterForEvent(string(e), "2026-10").IsEmpty(), e)
	}
}

func TestParamsAmountMarshalsAsNumber(t *testing.T) {
	params := Params{}.Amount("amount", decimal.RequireFromString("1234.50"))

	encoded, err := json.Marshal(params)
	require.NoError(t, err)

	assert.JSONEq(t, `{"amount":1234.5}`, string(encoded))
}
