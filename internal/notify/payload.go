// Package notify evaluates notification rules over the computed forecast and
// risk assessment and returns the actions the persistence layer should apply.
//
// Nothing here renders text. Every notification carries a message key and a
// bag of parameters that the localization layer turns into copy.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// EventType identifies a notification family.
type EventType string

const (
	EventPaymentDelayed     EventType = "PAYMENT_DELAYED"
	EventMonthAtRisk        EventType = "MONTH_AT_RISK"
	EventMonthAtRiskPreview EventType = "MONTH_AT_RISK_PREVIEW"
	EventCoverageRisk       EventType = "PAYMENT_COVERAGE_RISK"
	EventBalanceNegative    EventType = "BALANCE_TURNED_NEGATIVE"
	EventBalanceRecovered   EventType = "BALANCE_RECOVERED"
)

// Severity drives how prominently a notification is shown.
type Severity string

const (
	SeverityAction  Severity = "action"
	SeverityWarning Severity = "warning"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

// OverdueReferenceID groups every overdue expense under one notification.
const OverdueReferenceID = "overdue-expenses"

// OverdueActionDays is the days-overdue count above which overdue is escalated to action.
const OverdueActionDays = 7

// Message keys resolved by the localization layer.
const (
	KeyPaymentDelayedSingle  = "notifications.payment_delayed.single"
	KeyPaymentDelayedPlural  = "notifications.payment_delayed.plural"
	KeyMonthAtRisk           = "notifications.month_at_risk.full"
	KeyMonthAtRiskPreview    = "notifications.month_at_risk.preview"
	KeyCoverageRisk          = "notifications.coverage_risk"
	KeyToastBalanceNegative  = "toasts.balance_negative"
	KeyToastBalanceRecovered = "toasts.balance_recovered"

	KeyCtaReviewOverdue = "notifications.cta.review_overdue"
	KeyCtaReviewMonth   = "notifications.cta.review_month"
	KeyCtaReviewPayment = "notifications.cta.review_payment"
)

// Entity types referenced by notifications.
const (
	EntityTransaction = "transaction"
	EntityMonth       = "month"
)

// Params is the parameter bag of a message. Values are restricted to JSON
// scalars, strings and id lists; use the typed setters.
type Params map[string]any

// String sets a string value.
func (p Params) String(key, value string) Params {
	p[key] = value
	return p
}

// Int sets an integer value.
func (p Params) Int(key string, value int) Params {
	p[key] = value
	return p
}

// Amount sets a monetary value as an unformatted JSON number.
func (p Params) Amount(key string, value decimal.Decimal) Params {
	p[key] = json.Number(value.String())
	return p
}

// IDs sets a list of ids.
func (p Params) IDs(key string, ids []string) Params {
	p[key] = append([]string{}, ids...)
	return p
}

// Payload is the full description of a notification to upsert or toast.
type Payload struct {
	EventType   EventType `json:"eventType"`
	ReferenceID string    `json:"referenceId"`
	MessageKey  string    `json:"messageKey"`
	Params      Params    `json:"params"`
	Severity    Severity  `json:"severity"`
	EntityType  string    `json:"entityType,omitempty"`
	EntityID    string    `json:"entityId,omitempty"`
	CtaLabelKey string    `json:"ctaLabelKey,omitempty"`
	CtaTarget   string    `json:"ctaTarget,omitempty"`
}

// Key returns the persistence key of the payload.
func (p Payload) Key() string {
	return NotificationKey(p.EventType, p.ReferenceID)
}

// NotificationKey builds the (eventType, referenceId) key notifications are matched by.
func NotificationKey(eventType EventType, referenceID string) string {
	return fmt.Sprintf("%s|%s", eventType, referenceID)
}
