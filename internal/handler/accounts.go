package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rocjay1/cashflow/internal/models"
)

// HandleAccounts handles GET and POST requests for household accounts.
func (d *Dependencies) HandleAccounts(w http.ResponseWriter, r *http.Request) {
	household, err := householdID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing household")
		return
	}

	switch r.Method {
	case http.MethodGet:
		accounts, err := d.Database.ListAccounts(r.Context(), household)
		if err != nil {
			slog.Error("failed to list accounts", "household_id", household, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to list accounts: "+err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, accounts)

	case http.MethodPost:
		var account models.Account
		if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
			slog.Warn("invalid account request body", "error", err)
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(account.Name) == "" {
			WriteError(w, http.StatusBadRequest, "Missing account name")
			return
		}
		if account.ID == "" {
			account.ID = uuid.New().String()
		}

		if err := d.Database.SaveAccount(r.Context(), household, account); err != nil {
			slog.Error("failed to save account", "household_id", household, "account_id", account.ID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Failed to save account: "+err.Error())
			return
		}
		slog.Info("saved account", "household_id", household, "account_id", account.ID, "is_reserve", account.IsReserve)
		WriteJSON(w, http.StatusOK, account)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
