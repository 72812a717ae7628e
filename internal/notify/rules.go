package notify

import (
	"github.com/rocjay1/cashflow/internal/cta"
	"github.com/rocjay1/cashflow/internal/forecast"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/risk"
	"github.com/rocjay1/cashflow/internal/snapshot"
)

// Input is everything the rules look at for one evaluation cycle.
type Input struct {
	Snapshot      snapshot.MonthlySnapshot
	Forecast      forecast.State
	Risk          risk.Assessment
	PreviousState forecast.BalanceState
	// Transition is derived from PreviousState and the forecast when left empty.
	Transition forecast.BalanceTransition
}

// Evaluate runs every rule and returns the resulting actions in priority order:
// transition toasts, overdue, month at risk, coverage risk, recovery archival.
// It does not deduplicate against stored notifications; see Reconcile.
func Evaluate(in Input) []Action {
	transition := in.Transition
	if transition == forecast.TransitionNone {
		transition = forecast.DetectBalanceTransition(in.PreviousState, in.Forecast.BalanceState)
	}

	actions := []Action{}
	actions = append(actions, transitionToasts(in, transition)...)
	actions = append(actions, overdue(in)...)
	actions = append(actions, monthAtRisk(in)...)
	actions = append(actions, coverageRisk(in)...)
	actions = append(actions, recoveryArchival(in, transition)...)
	return actions
}

func transitionToasts(in Input, transition forecast.BalanceTransition) []Action {
	month := in.Snapshot.Month
	switch transition {
	case forecast.TransitionPositiveToNegative:
		return []Action{Toast{Payload: Payload{
			EventType:   EventBalanceNegative,
			ReferenceID: month,
			MessageKey:  KeyToastBalanceNegative,
			Params: Params{}.
				String("month", month).
				Amount("riskAmount", in.Forecast.RiskAmount),
			Severity:    SeverityAction,
			EntityType:  EntityMonth,
			EntityID:    month,
			CtaLabelKey: KeyCtaReviewMonth,
			CtaTarget:   monthPendingTarget(month),
		}}}
	case forecast.TransitionNegativeToPositive:
		return []Action{Toast{Payload: Payload{
			EventType:   EventBalanceRecovered,
			ReferenceID: month,
			MessageKey:  KeyToastBalanceRecovered,
			Params: Params{}.
				String("month", month).
				Amount("projectedBalance", in.Snapshot.ProjectedBalance),
			Severity:   SeveritySuccess,
			EntityType: EntityMonth,
			EntityID:   month,
		}}}
	}
	return nil
}

func overdue(in Input) []Action {
	items := in.Risk.OverdueExpenses
	if len(items) == 0 {
		return nil
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}

	maxDays := in.Risk.MaxDaysOverdue()
	severity := SeverityWarning
	if maxDays > OverdueActionDays {
		severity = SeverityAction
	}

	p := Payload{
		EventType:   EventPaymentDelayed,
		ReferenceID: OverdueReferenceID,
		Severity:    severity,
		CtaLabelKey: KeyCtaReviewOverdue,
		CtaTarget:   cta.Filter{View: cta.ViewOverdue, Status: string(models.StatusPlanned)}.Target(),
	}

	if len(items) == 1 {
		it := items[0]
		p.MessageKey = KeyPaymentDelayedSingle
		p.Params = Params{}.
			String("description", it.Description).
			Amount("amount", it.Amount).
			Int("daysOverdue", it.Days).
			IDs("transactionIds", ids)
		p.EntityType = EntityTransaction
		p.EntityID = it.ID
	} else {
		p.MessageKey = KeyPaymentDelayedPlural
		p.Params = Params{}.
			Int("count", len(items)).
			Amount("totalAmount", in.Risk.TotalOverdue()).
			Int("maxDaysOverdue", maxDays).
			IDs("transactionIds", ids)
	}

	return []Action{Create{Payload: p}}
}

func monthAtRisk(in Input) []Action {
	if in.Risk.HasOverdue() || !in.Forecast.IsNegative {
		return nil
	}

	month := in.Snapshot.Month
	p := Payload{
		ReferenceID: month,
		Params: Params{}.
			String("month", month).
			Amount("riskAmount", in.Forecast.RiskAmount).
			Amount("expensePlanned", in.Snapshot.ExpensePlanned).
			Int("daysUntilMonthEnd", in.Forecast.DaysUntilMonthEnd),
		EntityType:  EntityMonth,
		EntityID:    month,
		CtaLabelKey: KeyCtaReviewMonth,
		CtaTarget:   monthPendingTarget(month),
	}

	if in.Forecast.ShowRiskPreview {
		p.EventType = EventMonthAtRiskPreview
		p.MessageKey = KeyMonthAtRiskPreview
		p.Severity = SeverityWarning
	} else {
		p.EventType = EventMonthAtRisk
		p.MessageKey = KeyMonthAtRisk
		p.Severity = SeverityAction
	}

	return []Action{Create{Payload: p}}
}

func coverageRisk(in Input) []Action {
	if in.Risk.HasOverdue() || in.Forecast.IsNegative {
		return nil
	}

	var actions []Action
	for _, it := range in.Risk.CoverageRiskExpenses {
		params := Params{}.
			String("description", it.Description).
			Amount("amount", it.Amount).
			Int("daysUntilDue", it.Days)
		if it.CategoryID != "" {
			params.String("categoryId", it.CategoryID)
		}
		if it.SubcategoryID != "" {
			params.String("subcategoryId", it.SubcategoryID)
		}

		actions = append(actions, Create{Payload: Payload{
			EventType:   EventCoverageRisk,
			ReferenceID: it.ID,
			MessageKey:  KeyCoverageRisk,
			Params:      params,
			Severity:    SeverityWarning,
			EntityType:  EntityTransaction,
			EntityID:    it.ID,
			CtaLabelKey: KeyCtaReviewPayment,
			CtaTarget: cta.Filter{
				View:          cta.ViewUpcoming,
				Status:        string(models.StatusPlanned),
				CategoryID:    it.CategoryID,
				SubcategoryID: it.SubcategoryID,
			}.Target(),
		}})
	}
	return actions
}

func recoveryArchival(in Input, transition forecast.BalanceTransition) []Action {
	if transition != forecast.TransitionNegativeToPositive {
		return nil
	}
	month := in.Snapshot.Month
	return []Action{
		Archive{EventType: EventMonthAtRisk, ReferenceID: month},
		Archive{EventType: EventMonthAtRiskPreview, ReferenceID: month},
	}
}

func monthPendingTarget(month string) string {
	return cta.Filter{View: cta.ViewMonthPending, Status: string(models.StatusPlanned), Month: month}.Target()
}
