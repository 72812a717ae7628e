package models

import (
	"encoding/json"
)

// Notification is a stored notification as kept by the persistence layer.
// It is keyed by (EventType, ReferenceID). Params and Metadata are raw JSON as stored.
type Notification struct {
	ID          string          `json:"id"`
	EventType   string          `json:"event_type"`
	ReferenceID string          `json:"reference_id"`
	MessageKey  string          `json:"message_key"`
	Params      json.RawMessage `json:"params,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	Severity    string          `json:"severity"`
	EntityType  string          `json:"entity_type,omitempty"`
	EntityID    string          `json:"entity_id,omitempty"`
	CtaLabelKey string          `json:"cta_label_key,omitempty"`
	CtaTarget   string          `json:"cta_target,omitempty"`
	CreatedAt   string          `json:"created_at,omitempty"`
	UpdatedAt   string          `json:"updated_at,omitempty"`
	ReadAt      string          `json:"read_at,omitempty"`
	DismissedAt string          `json:"dismissed_at,omitempty"`
	ArchivedAt  string          `json:"archived_at,omitempty"`
}

// IsActive reports whether the notification is still shown.
func (n Notification) IsActive() bool {
	return n.ArchivedAt == "" && n.DismissedAt == ""
}

// IsArchived reports whether the condition behind the notification has cleared.
// A dismissed notification is hidden but not archived.
func (n Notification) IsArchived() bool {
	return n.ArchivedAt != ""
}
