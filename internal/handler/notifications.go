package handler

import (
	"log/slog"
	"net/http"

	"github.com/rocjay1/cashflow/internal/cta"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/notify"
)

// HandleNotifications lists the stored notifications of a household.
// Archived and dismissed ones are included only with ?all=true.
func (d *Dependencies) HandleNotifications(w http.ResponseWriter, r *http.Request) {
	household, err := householdID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing household")
		return
	}

	notifications, err := d.Database.ListNotifications(r.Context(), household)
	if err != nil {
		slog.Error("failed to list notifications", "household_id", household, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list notifications: "+err.Error())
		return
	}

	if r.URL.Query().Get("all") != "true" {
		active := make([]models.Notification, 0, len(notifications))
		for _, n := range notifications {
			if n.IsActive() {
				active = append(active, n)
			}
		}
		notifications = active
	}
	WriteJSON(w, http.StatusOK, notifications)
}

// HandleNotificationFilter resolves a call-to-action into a transaction filter,
// either from a raw ?target= or from the stored notification named by
// ?household=&event=&reference=.
func (d *Dependencies) HandleNotificationFilter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if target := q.Get("target"); target != "" {
		WriteJSON(w, http.StatusOK, cta.ParseTarget(target))
		return
	}

	event := q.Get("event")
	if event == "" {
		WriteError(w, http.StatusBadRequest, "Missing target or event")
		return
	}
	reference := q.Get("reference")

	household, err := householdID(r)
	if err != nil {
		WriteJSON(w, http.StatusOK, cta.FilterForEvent(event, reference))
		return
	}

	notifications, err := d.Database.ListNotifications(r.Context(), household)
	if err != nil {
		slog.Error("failed to list notifications", "household_id", household, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to list notifications: "+err.Error())
		return
	}

	key := notify.NotificationKey(notify.EventType(event), reference)
	for _, n := range notifications {
		if notify.NotificationKey(notify.EventType(n.EventType), n.ReferenceID) == key {
			WriteJSON(w, http.StatusOK, cta.BuildTransactionFiltersFromNotification(n))
			return
		}
	}
	WriteJSON(w, http.StatusOK, cta.FilterForEvent(event, reference))
}
