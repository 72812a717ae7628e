package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/cashflow/internal/engine"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/notify"
)

// ToastMessage is the toast-queue payload delivered to a household's clients.
type ToastMessage struct {
	HouseholdID string           `json:"householdId"`
	Month       string           `json:"month"`
	Toasts      []notify.Payload `json:"toasts"`
}

// RefreshResult is the engine output plus what the refresh did with it.
type RefreshResult struct {
	engine.Result
	Reconciled []notify.Action `json:"reconciled"`
	Applied    int             `json:"applied"`
	ReportBlob string          `json:"reportBlob,omitempty"`
}

// loadInput reads everything one engine run needs for a household month.
func (d *Dependencies) loadInput(ctx context.Context, household string, month time.Time) (engine.Input, error) {
	today := d.now()
	if month.IsZero() {
		month = today
	}
	monthKey := models.MonthKey(models.MonthStart(month))

	transactions, err := d.Database.ListTransactions(ctx, household)
	if err != nil {
		return engine.Input{}, fmt.Errorf("failed to list transactions: %w", err)
	}
	accounts, err := d.Database.ListAccounts(ctx, household)
	if err != nil {
		return engine.Input{}, fmt.Errorf("failed to list accounts: %w", err)
	}
	previous, err := d.Database.GetBalanceState(ctx, household, monthKey)
	if err != nil {
		return engine.Input{}, fmt.Errorf("failed to get balance state: %w", err)
	}
	history, err := d.Database.ListVariableHistory(ctx, household)
	if err != nil {
		return engine.Input{}, fmt.Errorf("failed to list variable history: %w", err)
	}
	budget, err := d.Database.GetPlannedBudget(ctx, household, monthKey)
	if err != nil {
		return engine.Input{}, fmt.Errorf("failed to get planned budget: %w", err)
	}

	return engine.Input{
		Transactions:          transactions,
		Accounts:              accounts,
		PreviousState:         previous,
		VariableHistory:       history,
		PlannedBudgetVariable: budget,
		Month:                 models.MonthStart(month),
		Today:                 today,
	}, nil
}

// refresh runs the engine and persists its outcome: reconciled notification
// actions, the new balance state, queued toasts and a report blob. Toast and
// report failures are logged and do not fail the refresh.
func (d *Dependencies) refresh(ctx context.Context, household string, month time.Time) (*RefreshResult, error) {
	in, err := d.loadInput(ctx, household, month)
	if err != nil {
		return nil, err
	}
	result := d.engine().Run(in)

	existing, err := d.Database.ListNotifications(ctx, household)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	reconciled := notify.Reconcile(result.Actions, existing)

	applied, err := d.Database.ApplyNotificationActions(ctx, household, reconciled)
	if err != nil {
		return nil, fmt.Errorf("failed to apply notification actions: %w", err)
	}

	if err := d.Database.SaveBalanceState(ctx, household, result.Month, result.Forecast.BalanceState); err != nil {
		return nil, fmt.Errorf("failed to save balance state: %w", err)
	}

	out := &RefreshResult{Result: result, Reconciled: reconciled, Applied: applied}

	if toasts := notify.Toasts(reconciled); len(toasts) > 0 && d.Queue != nil {
		msg := ToastMessage{HouseholdID: household, Month: result.Month, Toasts: toasts}
		if err := d.Queue.EnqueueMessage(ctx, ToastQueue, msg); err != nil {
			slog.Error("failed to enqueue toasts", "household_id", household, "count", len(toasts), "error", err)
		}
	}

	if d.Blob != nil {
		blobName := fmt.Sprintf("reports/%s/%s.json", household, result.Month)
		report, err := json.Marshal(out)
		if err != nil {
			slog.Error("failed to encode refresh report", "household_id", household, "error", err)
		} else if err := d.Blob.UploadText(ctx, DataContainer, blobName, string(report)); err != nil {
			slog.Error("failed to store refresh report", "household_id", household, "blob_name", blobName, "error", err)
		} else {
			out.ReportBlob = blobName
		}
	}

	slog.Info("household refreshed",
		"household_id", household,
		"month", result.Month,
		"balance_state", result.Forecast.BalanceState,
		"transition", result.Transition,
		"actions", len(result.Actions),
		"applied", applied,
	)
	return out, nil
}

// HandleRefresh runs the pipeline for a household month and persists the outcome.
func (d *Dependencies) HandleRefresh(w http.ResponseWriter, r *http.Request) {
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

	result, err := d.refresh(r.Context(), household, month)
	if err != nil {
		slog.Error("refresh failed", "household_id", household, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to refresh: "+err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, result)
}
