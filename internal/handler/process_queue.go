package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocjay1/cashflow/internal/csvparse"
	"github.com/rocjay1/cashflow/internal/models"
)

// invokeRequest represents the payload from Azure Functions Custom Handler.
type invokeRequest struct {
	Data     map[string]any `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// ProcessQueue handles the queue trigger that imports an uploaded CSV.
// Rejected rows are emailed; the household is refreshed once new rows are saved.
func (d *Dependencies) ProcessQueue(w http.ResponseWriter, r *http.Request) {
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("failed to read queue request body", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	var invokeReq invokeRequest
	if err := json.Unmarshal(bodyBytes, &invokeReq); err != nil {
		slog.Error("failed to unmarshal queue request", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to unmarshal request")
		return
	}

	queueItemVal, ok := invokeReq.Data["queueItem"]
	if !ok {
		queueItemVal, ok = invokeReq.Data["queueitem"]
		if !ok {
			WriteError(w, http.StatusBadRequest, "Missing queueItem in Data")
			return
		}
	}

	queueItemStr, ok := queueItemVal.(string)
	if !ok {
		WriteError(w, http.StatusBadRequest, "queueItem is not a string")
		return
	}

	var msg ImportMessage
	if err := json.Unmarshal([]byte(queueItemStr), &msg); err != nil {
		slog.Error("failed to unmarshal queueItem", "error", err)
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid queueItem JSON: %v", err))
		return
	}
	if msg.BlobName == "" || msg.HouseholdID == "" {
		slog.Warn("queue message missing blob_name or household_id", "job_id", msg.JobID)
		WriteError(w, http.StatusBadRequest, "Missing blob_name or household_id")
		return
	}

	ctx := r.Context()
	slog.Info("processing import", "job_id", msg.JobID, "household_id", msg.HouseholdID, "blob_name", msg.BlobName)

	csvContent, err := d.Blob.DownloadText(ctx, DataContainer, msg.BlobName)
	if err != nil {
		slog.Error("failed to download CSV from blob", "blob_name", msg.BlobName, "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to download CSV: %v", err))
		return
	}

	transactions, rowErrors := csvparse.ParseCSV(csvContent)
	slog.Info("parsed CSV content", "blob_name", msg.BlobName, "transactions_count", len(transactions), "errors_count", len(rowErrors))

	if len(rowErrors) > 0 {
		d.reportImportErrors(r, msg, rowErrors)
	}
	if len(transactions) == 0 {
		// Consume the message so it doesn't retry forever.
		w.WriteHeader(http.StatusOK)
		return
	}

	newTransactions, err := d.Database.SaveTransactions(ctx, msg.HouseholdID, transactions)
	if err != nil {
		slog.Error("failed to save transactions", "household_id", msg.HouseholdID, "total_count", len(transactions), "error", err)
		WriteError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to save transactions: %v", err))
		return
	}
	slog.Info("saved transactions", "household_id", msg.HouseholdID, "new_count", len(newTransactions), "total_parsed", len(transactions))

	if err := d.rebuildVariableHistory(r, msg.HouseholdID); err != nil {
		slog.Error("failed to rebuild variable history", "household_id", msg.HouseholdID, "error", err)
	}

	if _, err := d.refresh(ctx, msg.HouseholdID, time.Time{}); err != nil {
		slog.Error("post-import refresh failed", "household_id", msg.HouseholdID, "error", err)
	}

	slog.Info("import complete", "job_id", msg.JobID, "new_transactions_count", len(newTransactions))
	w.WriteHeader(http.StatusOK)
}

func (d *Dependencies) reportImportErrors(r *http.Request, msg ImportMessage, rowErrors []string) {
	recipients := userEmails()
	if d.Email == nil || len(recipients) == 0 {
		slog.Warn("import errors not emailed, no recipients configured", "job_id", msg.JobID, "errors_count", len(rowErrors))
		return
	}
	if err := d.Email.SendErrorEmail(r.Context(), recipients, rowErrors); err != nil {
		slog.Error("failed to send import error email", "job_id", msg.JobID, "error", err)
	}
}

// rebuildVariableHistory recomputes the monthly variable-spend totals from the stored transactions.
func (d *Dependencies) rebuildVariableHistory(r *http.Request, household string) error {
	all, err := d.Database.ListTransactions(r.Context(), household)
	if err != nil {
		return err
	}
	history := models.AggregateVariableSpend(all)
	if len(history) == 0 {
		return nil
	}
	return d.Database.SaveVariableHistory(r.Context(), household, history)
}
