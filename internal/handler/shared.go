package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rocjay1/cashflow/internal/engine"
	"github.com/rocjay1/cashflow/internal/models"
)

// Storage names shared by the upload, import and refresh paths.
const (
	DataContainer = "cashflow-data"
	ImportQueue   = "process-queue"
	ToastQueue    = "toast-queue"
)

// Dependencies holds the services required by the handlers.
type Dependencies struct {
	Database DatabaseClient
	Blob     BlobClient
	Queue    QueueClient
	Email    EmailClient
	Engine   *engine.Engine
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

var (
	errMissingHousehold = errors.New("missing household")
	errInvalidMonth     = errors.New("invalid month, expected YYYY-MM")
)

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// engine returns the configured engine. Dependencies is shared across requests,
// so the fallback is never stored.
func (d *Dependencies) engine() *engine.Engine {
	if d.Engine != nil {
		return d.Engine
	}
	return engine.New(nil)
}

// householdID reads the household from the query string or the X-Household-ID header.
func householdID(r *http.Request) (string, error) {
	if id := strings.TrimSpace(r.URL.Query().Get("household")); id != "" {
		return id, nil
	}
	if id := strings.TrimSpace(r.Header.Get("X-Household-ID")); id != "" {
		return id, nil
	}
	return "", errMissingHousehold
}

// monthParam reads the optional month query parameter. Zero means the current month.
func monthParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return time.Time{}, nil
	}
	m, ok := models.ParseMonth(raw)
	if !ok {
		return time.Time{}, errInvalidMonth
	}
	return m, nil
}

// householdIDs returns the nightly refresh targets from HOUSEHOLD_IDS.
func householdIDs() []string {
	var ids []string
	for _, id := range strings.Split(os.Getenv("HOUSEHOLD_IDS"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// userEmails returns the recipients in USER_EMAIL.
func userEmails() []string {
	var emails []string
	for _, e := range strings.Split(os.Getenv("USER_EMAIL"), ",") {
		if e = strings.TrimSpace(e); e != "" {
			emails = append(emails, e)
		}
	}
	return emails
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// WriteError writes an error response.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}
