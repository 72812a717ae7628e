package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
)

// ImportMessage is the process-queue payload describing one uploaded CSV.
type ImportMessage struct {
	JobID       string `json:"job_id"`
	HouseholdID string `json:"household_id"`
	BlobName    string `json:"blob_name"`
	Filename    string `json:"filename"`
}

// HandleUpload stores an uploaded transaction CSV and queues it for import.
func (d *Dependencies) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		slog.Warn("upload attempt with invalid method", "method", r.Method, "path", r.URL.Path)
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	household, err := householdID(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing household")
		return
	}

	// 10MB limit
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		slog.Warn("failed to parse multipart form", "error", err, "max_size_mb", 10)
		WriteError(w, http.StatusBadRequest, "File too large or invalid form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		slog.Warn("failed to get file from form", "error", err)
		WriteError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		slog.Error("failed to read uploaded file", "filename", header.Filename, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	slog.Info("received file upload", "household_id", household, "filename", header.Filename, "size_bytes", len(content))

	filename := filepath.Base(header.Filename)
	jobID := uuid.New().String()
	blobName := fmt.Sprintf("imports/%s/%s-%s-%s", household, d.now().Format("20060102-150405"), jobID[:8], filename)

	if err := d.Blob.UploadText(r.Context(), DataContainer, blobName, string(content)); err != nil {
		slog.Error("failed to upload blob", "blob_name", blobName, "container", DataContainer, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to upload blob: "+err.Error())
		return
	}

	msg := ImportMessage{
		JobID:       jobID,
		HouseholdID: household,
		BlobName:    blobName,
		Filename:    filename,
	}
	if err := d.Queue.EnqueueMessage(r.Context(), ImportQueue, msg); err != nil {
		slog.Error("failed to enqueue message", "queue", ImportQueue, "blob_name", blobName, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to enqueue message: "+err.Error())
		return
	}
	slog.Info("queued import", "queue", ImportQueue, "job_id", jobID, "blob_name", blobName)

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"jobId":    jobID,
		"blobName": blobName,
	})
}
