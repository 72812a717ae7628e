package cta

import (
	"github.com/rocjay1/cashflow/internal/models"
)

type eventFilter struct {
	view         string
	status       string
	monthFromRef bool
}

// eventFilters is the fallback used when a notification has no usable target.
var eventFilters = map[string]eventFilter{
	"PAYMENT_DELAYED":         {view: ViewOverdue, status: string(models.StatusPlanned)},
	"MONTH_AT_RISK":           {view: ViewMonthPending, status: string(models.StatusPlanned), monthFromRef: true},
	"MONTH_AT_RISK_PREVIEW":   {view: ViewMonthPending, status: string(models.StatusPlanned), monthFromRef: true},
	"PAYMENT_COVERAGE_RISK":   {view: ViewUpcoming, status: string(models.StatusPlanned)},
	"BALANCE_TURNED_NEGATIVE": {view: ViewMonthPending, status: string(models.StatusPlanned), monthFromRef: true},
	"BALANCE_RECOVERED":       {view: ViewMonth, monthFromRef: true},
}

// FilterForEvent returns the default filter of an event type. Month-keyed events
// take their month from the reference id. Unknown events yield an empty filter.
func FilterForEvent(eventType, referenceID string) Filter {
	ef, ok := eventFilters[eventType]
	if !ok {
		return Filter{}
	}
	f := Filter{View: ef.view, Status: ef.status}
	if ef.monthFromRef && validMonth(referenceID) {
		f.Month = referenceID
	}
	return f
}

// BuildTransactionFiltersFromNotification resolves the filter a stored notification
// points at. The explicit target wins; the event table fills in when the target is
// missing or unusable. Category, subcategory and month gaps are backfilled from the
// notification's params and metadata, metadata taking precedence.
func BuildTransactionFiltersFromNotification(n models.Notification) Filter {
	f := ParseTarget(n.CtaTarget)
	if f.IsEmpty() {
		f = FilterForEvent(n.EventType, n.ReferenceID)
	}

	meta := MergeMetadata(ParseMetadata(n.Params), ParseMetadata(n.Metadata))
	if f.CategoryID == "" {
		f.CategoryID = meta.Get(KeyCategoryID)
	}
	if f.SubcategoryID == "" {
		f.SubcategoryID = meta.Get(KeySubcategoryID)
	}
	if f.Month == "" && f.View == ViewMonthPending {
		if m := meta.Get(KeyMonth); validMonth(m) {
			f.Month = m
		}
	}
	return f
}
