package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocjay1/cashflow/internal/models"
)

// HandleBudget reads (GET) or sets (PUT) the planned variable budget of a month.
func (d *Dependencies) HandleBudget(w http.ResponseWriter, r *http.Request) {
	household, err := householdID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing household")
		return
	}

	switch r.Method {
	case http.MethodGet:
		month, err := monthParam(r)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		if month.IsZero() {
			month = d.now()
		}
		key := models.MonthKey(month)

		variable, err := d.Database.GetPlannedBudget(r.Context(), household, key)
		if err != nil {
			slog.Error("failed to get planned budget", "household_id", household, "month", key, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to get budget: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, models.PlannedBudget{Month: key, Variable: variable})

	case http.MethodPut:
		var budget models.PlannedBudget
		if err := json.NewDecoder(r.Body).Decode(&budget); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if _, ok := models.ParseMonth(budget.Month); !ok {
			WriteError(w, http.StatusBadRequest, errInvalidMonth.Error())
			return
		}
		if budget.Variable.IsNegative() {
			WriteError(w, http.StatusBadRequest, "Budget must not be negative")
			return
		}

		if err := d.Database.SavePlannedBudget(r.Context(), household, budget); err != nil {
			slog.Error("failed to save planned budget", "household_id", household, "month", budget.Month, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to save budget: "+err.Error())
			return
		}
		slog.Info("saved planned budget", "household_id", household, "month", budget.Month, "variable", budget.Variable.String())
		WriteJSON(w, http.StatusOK, budget)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
