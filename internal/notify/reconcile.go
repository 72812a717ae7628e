package notify

import (
	"encoding/json"
	"reflect"

	"github.com/rocjay1/cashflow/internal/models"
)

// Reconcile adapts evaluated actions to what is already stored.
// A Create for an unarchived (eventType, referenceId) becomes an Update, or a
// Skip when message key, severity and params are unchanged. Dismissed rows count
// as stored so their read and dismissed state survives refreshes. An Archive of
// a family with no unarchived notification becomes a Skip. Toasts pass through.
func Reconcile(actions []Action, existing []models.Notification) []Action {
	active := make(map[string]models.Notification, len(existing))
	for _, n := range existing {
		if !n.IsArchived() {
			active[NotificationKey(EventType(n.EventType), n.ReferenceID)] = n
		}
	}

	out := make([]Action, 0, len(actions))
	for _, a := range actions {
		switch act := a.(type) {
		case Create:
			stored, ok := active[act.Payload.Key()]
			switch {
			case !ok:
				out = append(out, act)
			case unchanged(act.Payload, stored):
				out = append(out, Skip{Reason: "unchanged " + act.Payload.Key()})
			default:
				out = append(out, Update(act))
			}
		case Archive:
			if _, ok := active[NotificationKey(act.EventType, act.ReferenceID)]; !ok {
				out = append(out, Skip{Reason: "nothing to archive " + NotificationKey(act.EventType, act.ReferenceID)})
				continue
			}
			out = append(out, act)
		case Update, Toast, Skip:
			out = append(out, act)
		}
	}
	return out
}

func unchanged(p Payload, stored models.Notification) bool {
	if p.MessageKey != stored.MessageKey || string(p.Severity) != stored.Severity {
		return false
	}
	encoded, err := json.Marshal(p.Params)
	if err != nil {
		return false
	}
	return sameJSON(encoded, stored.Params)
}

func sameJSON(a, b []byte) bool {
	var va, vb any
	if err := json.Unmarshal(a, &va); err != nil {
		return false
	}
	if err := json.Unmarshal(b, &vb); err != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}
