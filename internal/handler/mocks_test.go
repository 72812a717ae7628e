package handler

import (
	"context"

	"github.com/rocjay1/cashflow/internal/forecast"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/notify"
	"github.com/rocjay1/cashflow/internal/services"
	"github.com/shopspring/decimal"
)

// MockDatabaseClient is a mock implementation of DatabaseClient
type MockDatabaseClient struct {
	ListTransactionsFunc         func(ctx context.Context, householdID string) ([]models.Transaction, error)
	SaveTransactionsFunc         func(ctx context.Context, householdID string, transactions []models.Transaction) ([]models.Transaction, error)
	ListAccountsFunc             func(ctx context.Context, householdID string) ([]models.Account, error)
	SaveAccountFunc              func(ctx context.Context, householdID string, account models.Account) error
	GetBalanceStateFunc          func(ctx context.Context, householdID, month string) (forecast.BalanceState, error)
	SaveBalanceStateFunc         func(ctx context.Context, householdID, month string, state forecast.BalanceState) error
	ListVariableHistoryFunc      func(ctx context.Context, householdID string) ([]models.VariableSpendMonth, error)
	SaveVariableHistoryFunc      func(ctx context.Context, householdID string, history []models.VariableSpendMonth) error
	GetPlannedBudgetFunc         func(ctx context.Context, householdID, month string) (decimal.Decimal, error)
	SavePlannedBudgetFunc        func(ctx context.Context, householdID string, budget models.PlannedBudget) error
	ListNotificationsFunc        func(ctx context.Context, householdID string) ([]models.Notification, error)
	ApplyNotificationActionsFunc func(ctx context.Context, householdID string, actions []notify.Action) (int, error)
}

func (m *MockDatabaseClient) ListTransactions(ctx context.Context, householdID string) ([]models.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, householdID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveTransactions(ctx context.Context, householdID string, transactions []models.Transaction) ([]models.Transaction, error) {
	if m.SaveTransactionsFunc != nil {
		return m.SaveTransactionsFunc(ctx, householdID, transactions)
	}
	return nil, nil
}

func (m *MockDatabaseClient) ListAccounts(ctx context.Context, householdID string) ([]models.Account, error) {
	if m.ListAccountsFunc != nil {
		return m.ListAccountsFunc(ctx, householdID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveAccount(ctx context.Context, householdID string, account models.Account) error {
	if m.SaveAccountFunc != nil {
		return m.SaveAccountFunc(ctx, householdID, account)
	}
	return nil
}

func (m *MockDatabaseClient) GetBalanceState(ctx context.Context, householdID, month string) (forecast.BalanceState, error) {
	if m.GetBalanceStateFunc != nil {
		return m.GetBalanceStateFunc(ctx, householdID, month)
	}
	return forecast.BalanceUnknown, nil
}

func (m *MockDatabaseClient) SaveBalanceState(ctx context.Context, householdID, month string, state forecast.BalanceState) error {
	if m.SaveBalanceStateFunc != nil {
		return m.SaveBalanceStateFunc(ctx, householdID, month, state)
	}
	return nil
}

func (m *MockDatabaseClient) ListVariableHistory(ctx context.Context, householdID string) ([]models.VariableSpendMonth, error) {
	if m.ListVariableHistoryFunc != nil {
		return m.ListVariableHistoryFunc(ctx, householdID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) SaveVariableHistory(ctx context.Context, householdID string, history []models.VariableSpendMonth) error {
	if m.SaveVariableHistoryFunc != nil {
		return m.SaveVariableHistoryFunc(ctx, householdID, history)
	}
	return nil
}

func (m *MockDatabaseClient) GetPlannedBudget(ctx context.Context, householdID, month string) (decimal.Decimal, error) {
	if m.GetPlannedBudgetFunc != nil {
		return m.GetPlannedBudgetFunc(ctx, householdID, month)
	}
	return decimal.Zero, nil
}

func (m *MockDatabaseClient) SavePlannedBudget(ctx context.Context, householdID string, budget models.PlannedBudget) error {
	if m.SavePlannedBudgetFunc != nil {
		return m.SavePlannedBudgetFunc(ctx, householdID, budget)
	}
	return nil
}

func (m *MockDatabaseClient) ListNotifications(ctx context.Context, householdID string) ([]models.Notification, error) {
	if m.ListNotificationsFunc != nil {
		return m.ListNotificationsFunc(ctx, householdID)
	}
	return nil, nil
}

func (m *MockDatabaseClient) ApplyNotificationActions(ctx context.Context, householdID string, actions []notify.Action) (int, error) {
	if m.ApplyNotificationActionsFunc != nil {
		return m.ApplyNotificationActionsFunc(ctx, householdID, actions)
	}
	return 0, nil
}

// MockBlobClient is a mock implementation of BlobClient
type MockBlobClient struct {
	UploadTextFunc   func(ctx context.Context, containerName, blobName, content string) error
	DownloadTextFunc func(ctx context.Context, containerName, blobName string) (string, error)
}

func (m *MockBlobClient) UploadText(ctx context.Context, containerName, blobName, content string) error {
	if m.UploadTextFunc != nil {
		return m.UploadTextFunc(ctx, containerName, blobName, content)
	}
	return nil
}

func (m *MockBlobClient) DownloadText(ctx context.Context, containerName, blobName string) (string, error) {
	if m.DownloadTextFunc != nil {
		return m.DownloadTextFunc(ctx, containerName, blobName)
	}
	return "", nil
}

// MockQueueClient is a mock implementation of QueueClient
type MockQueueClient struct {
	EnqueueMessageFunc func(ctx context.Context, queueName string, message any) error
}

func (m *MockQueueClient) EnqueueMessage(ctx context.Context, queueName string, message any) error {
	if m.EnqueueMessageFunc != nil {
		return m.EnqueueMessageFunc(ctx, queueName, message)
	}
	return nil
}

// MockEmailClient is a mock implementation of EmailClient
type MockEmailClient struct {
	SendEmailFunc       func(ctx context.Context, to []string, subject, body string) error
	SendErrorEmailFunc  func(ctx context.Context, recipients []string, errors []string) error
	SendDigestEmailFunc func(ctx context.Context, recipients []string, digest services.Digest) error
}

func (m *MockEmailClient) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, to, subject, body)
	}
	return nil
}

func (m *MockEmailClient) SendErrorEmail(ctx context.Context, recipients []string, errors []string) error {
	if m.SendErrorEmailFunc != nil {
		return m.SendErrorEmailFunc(ctx, recipients, errors)
	}
	return nil
}

func (m *MockEmailClient) SendDigestEmail(ctx context.Context, recipients []string, digest services.Digest) error {
	if m.SendDigestEmailFunc != nil {
		return m.SendDigestEmailFunc(ctx, recipients, digest)
	}
	return nil
}
