package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rocjay1/cashflow/internal/engine"
	"github.com/rocjay1/cashflow/internal/handler"
	"github.com/rocjay1/cashflow/internal/logging"
	"github.com/rocjay1/cashflow/internal/services"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	dbService, err := services.NewDatabaseService()
	if err != nil {
		slog.Error("Failed to init DatabaseService", "error", err)
		os.Exit(1)
	}

	blobService, err := services.NewBlobService()
	if err != nil {
		slog.Error("Failed to init BlobService", "error", err)
		os.Exit(1)
	}

	queueService, err := services.NewQueueService()
	if err != nil {
		slog.Error("Failed to init QueueService", "error", err)
		os.Exit(1)
	}

	deps := &handler.Dependencies{
		Database: dbService,
		Blob:     blobService,
		Queue:    queueService,
		Engine:   engine.New(logging.FromEnv()),
	}

	// Email is optional; a nil *EmailService must not end up in the interface.
	if emailService, err := services.NewEmailService(nil); err != nil {
		slog.Warn("Failed to init EmailService (continuing anyway)", "error", err)
	} else {
		deps.Email = emailService
	}

	r := newRouter(deps)

	port := os.Getenv("FUNCTIONS_CUSTOMHANDLER_PORT")
	if port == "" {
		port = "8080"
	}

	slog.Info("Starting server", "port", port)
	if err := http.ListenAndServe(":"+port, r); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newRouter(deps *handler.Dependencies) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})
		r.Get("/dashboard", deps.HandleDashboard)
		r.Post("/refresh", deps.HandleRefresh)
		r.Get("/notifications", deps.HandleNotifications)
		r.Get("/notifications/filter", deps.HandleNotificationFilter)
		r.Get("/accounts", deps.HandleAccounts)
		r.Post("/accounts", deps.HandleAccounts)
		r.Get("/budget", deps.HandleBudget)
		r.Put("/budget", deps.HandleBudget)
		r.Post("/upload", deps.HandleUpload)
	})

	// Function triggers are posted by the host without method guarantees.
	r.HandleFunc("/HttpTrigger", deps.HandleHttpTrigger(r))
	r.HandleFunc("/ProcessQueue", deps.ProcessQueue)
	r.HandleFunc("/NightlyTrigger", deps.HandleNightlyTrigger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		headers := make(map[string]string)
		for k, v := range r.Header {
			headers[k] = strings.Join(v, ", ")
		}
		slog.Warn("UNMATCHED REQUEST",
			"method", r.Method,
			"path", r.URL.Path,
			"headers", headers,
			"content_length", r.ContentLength,
		)
		http.NotFound(w, r)
	})

	return r
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs each request with a body preview and its outcome.
func loggingMiddleware(next http.Handler) http.Handler {
	const previewLimit = 1024

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}
		preview := bodyBytes
		if len(preview) > previewLimit {
			preview = preview[:previewLimit]
		}

		slog.Info("incoming request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"content_type", r.Header.Get("Content-Type"),
			"content_length", r.ContentLength,
			"body_preview", string(preview),
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		slog.Info("request completed",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.status,
			"duration", time.Since(start),
		)
	})
}
