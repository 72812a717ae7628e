package notify

import (
	"encoding/json"
)

// ActionType tags an Action on the wire.
type ActionType string

const (
	ActionCreate  ActionType = "CREATE"
	ActionUpdate  ActionType = "UPDATE"
	ActionArchive ActionType = "ARCHIVE"
	ActionToast   ActionType = "TOAST"
	ActionSkip    ActionType = "SKIP"
)

// Action is one of Create, Update, Archive, Toast or Skip.
// The set is closed: consumers switch on the concrete type.
type Action interface {
	Type() ActionType
	sealed()
}

// Create asks the persistence layer to store a new notification.
type Create struct {
	Payload Payload
}

// Update asks the persistence layer to refresh an existing notification.
type Update struct {
	Payload Payload
}

// Archive retires the notification family identified by EventType and ReferenceID.
type Archive struct {
	EventType   EventType
	ReferenceID string
}

// Toast is a transient message that is never stored.
type Toast struct {
	Payload Payload
}

// Skip means nothing needs to be done.
type Skip struct {
	Reason string
}

func (Create) Type() ActionType  { return ActionCreate }
func (Update) Type() ActionType  { return ActionUpdate }
func (Archive) Type() ActionType { return ActionArchive }
func (Toast) Type() ActionType   { return ActionToast }
func (Skip) Type() ActionType    { return ActionSkip }

func (Create) sealed()  {}
func (Update) sealed()  {}
func (Archive) sealed() {}
func (Toast) sealed()   {}
func (Skip) sealed()    {}

type payloadJSON struct {
	Type    ActionType `json:"type"`
	Payload Payload    `json:"payload"`
}

type archiveJSON struct {
	Type        ActionType `json:"type"`
	EventType   EventType  `json:"eventType"`
	ReferenceID string     `json:"referenceId"`
}

type skipJSON struct {
	Type   ActionType `json:"type"`
	Reason string     `json:"reason,omitempty"`
}

func (a Create) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadJSON{Type: ActionCreate, Payload: a.Payload})
}

func (a Update) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadJSON{Type: ActionUpdate, Payload: a.Payload})
}

func (a Toast) MarshalJSON() ([]byte, error) {
	return json.Marshal(payloadJSON{Type: ActionToast, Payload: a.Payload})
}

func (a Archive) MarshalJSON() ([]byte, error) {
	return json.Marshal(archiveJSON{Type: ActionArchive, EventType: a.EventType, ReferenceID: a.ReferenceID})
}

func (a Skip) MarshalJSON() ([]byte, error) {
	return json.Marshal(skipJSON{Type: ActionSkip, Reason: a.Reason})
}

// Toasts returns the toast payloads among actions, in order.
func Toasts(actions []Action) []Payload {
	var out []Payload
	for _, a := range actions {
		if t, ok := a.(Toast); ok {
			out = append(out, t.Payload)
		}
	}
	return out
}
