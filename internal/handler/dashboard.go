package handler

import (
	"log/slog"
	"net/http"
)

// HandleDashboard runs the pipeline for a household month without persisting anything.
func (d *Dependencies) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	household, err := householdID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing household")
		return
	}
	month, err := monthParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	in, err := d.loadInput(r.Context(), household, month)
	if err != nil {
		slog.Error("failed to load dashboard input", "household_id", household, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to load household: "+err.Error())
		return
	}

	result := d.engine().Run(in)
	slog.Info("dashboard computed", "household_id", household, "month", result.Month, "actions", len(result.Actions))
	WriteJSON(w, http.StatusOK, result)
}
