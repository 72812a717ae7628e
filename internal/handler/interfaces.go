package handler

import (
	"context"

	"github.com/rocjay1/cashflow/internal/forecast"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/notify"
	"github.com/rocjay1/cashflow/internal/services"
	"github.com/shopspring/decimal"
)

// DatabaseClient defines the interface for database operations used by handlers.
type DatabaseClient interface {
	ListTransactions(ctx context.Context, householdID string) ([]models.Transaction, error)
	SaveTransactions(ctx context.Context, householdID string, transactions []models.Transaction) ([]models.Transaction, error)
	ListAccounts(ctx context.Context, householdID string) ([]models.Account, error)
	SaveAccount(ctx context.Context, householdID string, account models.Account) error

	GetBalanceState(ctx context.Context, householdID, month string) (forecast.BalanceState, error)
	SaveBalanceState(ctx context.Context, householdID, month string, state forecast.BalanceState) error
	ListVariableHistory(ctx context.Context, householdID string) ([]models.VariableSpendMonth, error)
	SaveVariableHistory(ctx context.Context, householdID string, history []models.VariableSpendMonth) error
	GetPlannedBudget(ctx context.Context, householdID, month string) (decimal.Decimal, error)
	SavePlannedBudget(ctx context.Context, householdID string, budget models.PlannedBudget) error

	ListNotifications(ctx context.Context, householdID string) ([]models.Notification, error)
	ApplyNotificationActions(ctx context.Context, householdID string, actions []notify.Action) (int, error)
}

// BlobClient defines the interface for blob storage operations used by handlers.
type BlobClient interface {
	UploadText(ctx context.Context, containerName, blobName, content string) error
	DownloadText(ctx context.Context, containerName, blobName string) (string, error)
}

// QueueClient defines the interface for queue operations used by handlers.
type QueueClient interface {
	EnqueueMessage(ctx context.Context, queueName string, message any) error
}

// EmailClient defines the interface for email operations used by handlers.
type EmailClient interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
	SendErrorEmail(ctx context.Context, recipients []string, errors []string) error
	SendDigestEmail(ctx context.Context, recipients []string, digest services.Digest) error
}
