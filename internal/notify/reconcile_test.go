package notify

import (
	"encoding/json"
	"testing"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func delayedPayload(days int) Payload {
	return Payload{
		EventType:   EventPaymentDelayed,
		ReferenceID: OverdueReferenceID,
		MessageKey:  KeyPaymentDelayedSingle,
		Params:      Params{}.Int("daysOverdue", days).Amount("amount", decimal.NewFromInt(80)),
		Severity:    SeverityWarning,
	}
}

func stored(p Payload) models.Notification {
	params, _ := json.Marshal(p.Params)
	return models.Notification{
		ID:          "n-1",
		EventType:   string(p.EventType),
		ReferenceID: p.ReferenceID,
		MessageKey:  p.MessageKey,
		Params:      params,
		Severity:    string(p.Severity),
	}
}

func TestReconcile_CreateWhenAbsent(t *testing.T) {
	actions := Reconcile([]Action{Create{Payload: delayedPayload(3)}}, nil)

	require.Len(t, actions, 1)
	assert.Equal(t, ActionCreate, actions[0].Type())
}

func TestReconcile_UpdateWhenChanged(t *testing.T) {
	existing := []models.Notification{stored(delayedPayload(3))}

	actions := Reconcile([]Action{Create{Payload: delayedPayload(4)}}, existing)

	require.Len(t, actions, 1)
	update, ok := actions[0].(Update)
	require.True(t, ok)
	assert.Equal(t, 4, update.Payload.Params["daysOverdue"])
}

func TestReconcile_SkipWhenUnchanged(t *testing.T) {
	existing := []models.Notification{stored(delayedPayload(3))}

	actions := Reconcile([]Action{Create{Payload: delayedPayload(3)}}, existing)

	require.Len(t, actions, 1)
	assert.Equal(t, ActionSkip, actions[0].Type())
}

func TestReconcile_ArchivedRecordsAreIgnored(t *testing.T) {
	old := stored(delayedPayload(3))
	old.ArchivedAt = "2026-10-01T00:00:00Z"

	actions := Reconcile([]Action{
		Create{Payload: delayedPayload(3)},
		Archive{EventType: EventMonthAtRisk, ReferenceID: "2026-10"},
	}, []models.Notification{old})

	assert.Equal(t, []ActionType{ActionCreate, ActionSkip}, types(actions))
}

func TestReconcile_DismissedStaysDismissed(t *testing.T) {
	dismissed := stored(delayedPayload(3))
	dismissed.DismissedAt = "2026-10-18T20:00:00Z"
	existing := []models.Notification{dismissed}

	unchangedActions := Reconcile([]Action{Create{Payload: delayedPayload(3)}}, existing)
	changedActions := Reconcile([]Action{Create{Payload: delayedPayload(4)}}, existing)

	assert.Equal(t, []ActionType{ActionSkip}, types(unchangedActions))
	assert.Equal(t, []ActionType{ActionUpdate}, types(changedActions))
}

func TestReconcile_ArchiveActive(t *testing.T) {
	existing := []models.Notification{{EventType: string(EventMonthAtRisk), ReferenceID: "2026-10"}}
	toast := Toast{Payload: Payload{EventType: EventBalanceRecovered, ReferenceID: "2026-10"}}

	actions := Reconcile([]Action{toast, Archive{EventType: EventMonthAtRisk, ReferenceID: "2026-10"}}, existing)

	assert.Equal(t, []ActionType{ActionToast, ActionArchive}, types(actions))
}

func TestActionJSON(t *testing.T) {
	create, err := json.Marshal(Create{Payload: delayedPayload(3)})
	require.NoError(t, err)
	archive, err := json.Marshal(Archive{EventType: EventMonthAtRisk, ReferenceID: "2026-10"})
	require.NoError(t, err)
	skip, err := json.Marshal(Skip{})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(create, &decoded))
	assert.Equal(t, "CREATE", decoded["type"])
	assert.Equal(t, "PAYMENT_DELAYED", decoded["payload"].(map[string]any)["eventType"])
	assert.JSONEq(t, `{"type":"ARCHIVE","eventType":"MONTH_AT_RISK","referenceId":"2026-10"}`, string(archive))
	assert.JSONEq(t, `{"type":"SKIP"}`, string(skip))
}

func TestToasts(t *testing.T) {
	toast := Toast{Payload: Payload{EventType: EventBalanceNegative}}

	got := Toasts([]Action{Create{Payload: delayedPayload(1)}, toast, Skip{}})

	assert.Equal(t, []Payload{toast.Payload}, got)
}
