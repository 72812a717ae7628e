// Package cta maps a notification's call-to-action back to a transaction filter.
//
// Parsing never fails: anything unrecognized yields an empty filter.
package cta

import (
	"net/url"
	"strings"

	"github.com/rocjay1/cashflow/internal/models"
)

// TransactionsPath is the listing every call-to-action points at.
const TransactionsPath = "/transactions"

// Views understood by the transaction listing.
const (
	ViewOverdue      = "overdue"
	ViewMonthPending = "month-pending"
	ViewUpcoming     = "upcoming"
	ViewMonth        = "month"
)

// Query parameters recognized in a target.
const (
	ParamView              = "view"
	ParamStatus            = "status"
	ParamCategory          = "category"
	ParamFilterCategory    = "filter_category"
	ParamSubcategory       = "subcategory"
	ParamFilterSubcategory = "filter_subcategory"
	ParamMonth             = "month"
)

// Filter describes a transaction listing.
type Filter struct {
	View          string `json:"view,omitempty"`
	Status        string `json:"status,omitempty"`
	CategoryID    string `json:"categoryId,omitempty"`
	SubcategoryID string `json:"subcategoryId,omitempty"`
	Month         string `json:"month,omitempty"`
}

// IsEmpty reports whether the filter selects nothing in particular.
func (f Filter) IsEmpty() bool {
	return f == Filter{}
}

// Target renders the filter as a target reference that ParseTarget reads back.
func (f Filter) Target() string {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set(ParamView, f.View)
	set(ParamStatus, f.Status)
	set(ParamCategory, f.CategoryID)
	set(ParamSubcategory, f.SubcategoryID)
	set(ParamMonth, f.Month)

	if len(q) == 0 {
		return TransactionsPath
	}
	return TransactionsPath + "?" + q.Encode()
}

// ParseTarget reads a URL-like target reference into a filter.
// A bare query string ("view=overdue&status=planned") is accepted too.
func ParseTarget(target string) Filter {
	target = strings.TrimSpace(target)
	if target == "" {
		return Filter{}
	}

	rawQuery := target
	if i := strings.IndexByte(target, '?'); i >= 0 {
		u, err := url.Parse(target)
		if err != nil {
			return Filter{}
		}
		rawQuery = u.RawQuery
	} else if !strings.Contains(target, "=") {
		return Filter{}
	}

	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Filter{}
	}

	f := Filter{
		View:          strings.TrimSpace(q.Get(ParamView)),
		CategoryID:    firstOf(q, ParamCategory, ParamFilterCategory),
		SubcategoryID: firstOf(q, ParamSubcategory, ParamFilterSubcategory),
	}
	if status := q.Get(ParamStatus); validStatus(status) {
		f.Status = status
	}
	if month := q.Get(ParamMonth); validMonth(month) {
		f.Month = month
	}
	return f
}

func firstOf(q url.Values, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(q.Get(k)); v != "" {
			return v
		}
	}
	return ""
}

func validStatus(s string) bool {
	switch models.Status(s) {
	case models.StatusPlanned, models.StatusConfirmed, models.StatusCancelled:
		return true
	}
	return false
}

func validMonth(s string) bool {
	_, ok := models.ParseMonth(s)
	return ok
}
