package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/rocjay1/cashflow/internal/forecast"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/rocjay1/cashflow/internal/notify"
	"github.com/shopspring/decimal"
)

// DatabaseService handles interactions with Azure Table Storage.
// Every table is partitioned by household id.
type DatabaseService struct {
	serviceClient        *aztables.ServiceClient
	transactionsTable    string
	accountsTable        string
	notificationsTable   string
	balanceStateTable    string
	variableHistoryTable string
	budgetsTable         string
	now                  func() time.Time
}

// NewDatabaseService creates a new DatabaseService instance.
func NewDatabaseService() (*DatabaseService, error) {
	endpoint, err := endpointFromEnv("TABLE_SERVICE_URL")
	if err != nil {
		return nil, err
	}

	var client *aztables.ServiceClient
	if endpoint.local() {
		slog.Info("using Azurite credentials for database service")
		name, key := endpoint.sharedKey()
		cred, err := aztables.NewSharedKeyCredential(name, key)
		if err != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", err)
		}
		client, err = aztables.NewServiceClientWithSharedKey(endpoint.url, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client with shared key: %w", err)
		}
	} else {
		slog.Info("using default Azure credentials for database service")
		cred, err := newDefaultAzureCredential()
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = aztables.NewServiceClient(endpoint.url, cred, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create table service client: %w", err)
		}
	}

	svc := &DatabaseService{
		serviceClient:        client,
		transactionsTable:    envOrDefault("TRANSACTIONS_TABLE", "transactions"),
		accountsTable:        envOrDefault("ACCOUNTS_TABLE", "accounts"),
		notificationsTable:   envOrDefault("NOTIFICATIONS_TABLE", "notifications"),
		balanceStateTable:    envOrDefault("BALANCE_STATE_TABLE", "balancestate"),
		variableHistoryTable: envOrDefault("VARIABLE_HISTORY_TABLE", "variablehistory"),
		budgetsTable:         envOrDefault("BUDGETS_TABLE", "budgets"),
		now:                  time.Now,
	}

	if err := svc.CreateTables(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	slog.Info("database service initialized successfully",
		"table_url", endpoint.url,
		"transactions_table", svc.transactionsTable,
		"accounts_table", svc.accountsTable,
		"notifications_table", svc.notificationsTable,
		"balance_state_table", svc.balanceStateTable,
		"variable_history_table", svc.variableHistoryTable,
		"budgets_table", svc.budgetsTable,
	)
	return svc, nil
}

// CreateTables ensures all required tables exist in Azure Table Storage.
func (s *DatabaseService) CreateTables(ctx context.Context) error {
	tables := []string{
		s.transactionsTable,
		s.accountsTable,
		s.notificationsTable,
		s.balanceStateTable,
		s.variableHistoryTable,
		s.budgetsTable,
	}

	for _, tableName := range tables {
		if _, err := s.serviceClient.CreateTable(ctx, tableName, nil); err != nil {
			if isAlreadyExists(err, "TableAlreadyExists") {
				continue
			}
			return fmt.Errorf("failed to create table %s: %w", tableName, err)
		}
	}
	return nil
}

func (s *DatabaseService) getClient(tableName string) *aztables.Client {
	return s.serviceClient.NewClient(tableName)
}

// listPartition decodes every row of a household partition.
func (s *DatabaseService) listPartition(ctx context.Context, tableName, householdID string) ([]entity, error) {
	filter := partitionFilter(householdID)
	pager := s.getClient(tableName).NewListEntitiesPager(&aztables.ListEntitiesOptions{
		Filter: &filter,
	})

	var rows []entity
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list entities in %s: %w", tableName, err)
		}
		for _, raw := range resp.Entities {
			e, err := decodeEntity(raw)
			if err != nil {
				slog.Warn("skipping undecodable entity", "table", tableName, "error", err)
				continue
			}
			rows = append(rows, e)
		}
	}
	return rows, nil
}

// submitBatches submits upserts in chunks of 100, the Table Storage batch limit.
func (s *DatabaseService) submitBatches(ctx context.Context, tableName string, batch []aztables.TransactionAction) error {
	const batchSize = 100
	client := s.getClient(tableName)
	for i := 0; i < len(batch); i += batchSize {
		end := min(i+batchSize, len(batch))
		if _, err := client.SubmitTransaction(ctx, batch[i:end], nil); err != nil {
			return fmt.Errorf("failed to submit batch %d-%d to %s: %w", i, end, tableName, err)
		}
	}
	return nil
}

func upsertAction(row map[string]any) (aztables.TransactionAction, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return aztables.TransactionAction{}, fmt.Errorf("failed to encode entity: %w", err)
	}
	return aztables.TransactionAction{
		ActionType: aztables.TransactionTypeInsertReplace,
		Entity:     raw,
	}, nil
}

// ListTransactions returns every transaction of a household, cancelled ones included.
func (s *DatabaseService) ListTransactions(ctx context.Context, householdID string) ([]models.Transaction, error) {
	rows, err := s.listPartition(ctx, s.transactionsTable, householdID)
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for _, e := range rows {
		transactions = append(transactions, transactionFromEntity(e))
	}
	return transactions, nil
}

// SaveTransactions upserts transactions keyed by id and returns those that were not stored before.
func (s *DatabaseService) SaveTransactions(ctx context.Context, householdID string, transactions []models.Transaction) ([]models.Transaction, error) {
	if len(transactions) == 0 {
		return []models.Transaction{}, nil
	}

	rows, err := s.listPartition(ctx, s.transactionsTable, householdID)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(rows))
	for _, e := range rows {
		existing[e.str("RowKey")] = true
	}

	// A batch may not touch the same row twice; the last occurrence of an id wins.
	latest := make(map[string]int, len(transactions))
	for i, t := range transactions {
		latest[t.ID] = i
	}

	timestamp := s.now().UTC().Format(time.RFC3339)
	newTransactions := []models.Transaction{}
	var batch []aztables.TransactionAction
	for i, t := range transactions {
		if latest[t.ID] != i {
			continue
		}
		if !existing[t.ID] {
			newTransactions = append(newTransactions, t)
		}
		action, err := upsertAction(transactionEntity(householdID, t, timestamp))
		if err != nil {
			return nil, err
		}
		batch = append(batch, action)
	}

	if err := s.submitBatches(ctx, s.transactionsTable, batch); err != nil {
		return nil, err
	}
	return newTransactions, nil
}

func transactionEntity(householdID string, t models.Transaction, importedAt string) map[string]any {
	return map[string]any{
		"PartitionKey":    householdID,
		"RowKey":          t.ID,
		"Kind":            string(t.Kind),
		"Description":     t.Description,
		"Amount":          t.Amount.String(),
		"Date":            t.Date,
		"DueDate":         t.DueDate,
		"Status":          string(t.Status),
		"CancelledAt":     t.CancelledAt,
		"AccountID":       t.AccountID,
		"ToAccountID":     t.ToAccountID,
		"CategoryID":      t.CategoryID,
		"CategoryName":    t.CategoryName,
		"SubcategoryID":   t.SubcategoryID,
		"SubcategoryName": t.SubcategoryName,
		"ExpenseType":     string(t.ExpenseType),
		"ImportedAt":      importedAt,
	}
}

func transactionFromEntity(e entity) models.Transaction {
	return models.Transaction{
		ID:              e.str("RowKey"),
		Kind:            models.Kind(e.str("Kind")),
		Description:     e.str("Description"),
		Amount:          e.dec("Amount"),
		Date:            e.str("Date"),
		DueDate:         e.str("DueDate"),
		Status:          models.Status(e.str("Status")),
		CancelledAt:     e.str("CancelledAt"),
		AccountID:       e.str("AccountID"),
		ToAccountID:     e.str("ToAccountID"),
		CategoryID:      e.str("CategoryID"),
		CategoryName:    e.str("CategoryName"),
		SubcategoryID:   e.str("SubcategoryID"),
		SubcategoryName: e.str("SubcategoryName"),
		ExpenseType:     models.ExpenseType(e.str("ExpenseType")),
	}
}

// ListAccounts returns the accounts of a household.
func (s *DatabaseService) ListAccounts(ctx context.Context, householdID string) ([]models.Account, error) {
	rows, err := s.listPartition(ctx, s.accountsTable, householdID)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(rows))
	for _, e := range rows {
		accounts = append(accounts, models.Account{
			ID:        e.str("RowKey"),
			Name:      e.str("Name"),
			IsReserve: e.boolean("IsReserve"),
			IsActive:  e.boolean("IsActive"),
		})
	}
	return accounts, nil
}

// SaveAccount upserts an account.
func (s *DatabaseService) SaveAccount(ctx context.Context, householdID string, account models.Account) error {
	raw, err := json.Marshal(map[string]any{
		"PartitionKey": householdID,
		"RowKey":       account.ID,
		"Name":         account.Name,
		"IsReserve":    account.IsReserve,
		"IsActive":     account.IsActive,
	})
	if err != nil {
		return fmt.Errorf("failed to encode account: %w", err)
	}
	_, err = s.getClient(s.accountsTable).UpsertEntity(ctx, raw, nil)
	return err
}

// GetBalanceState returns the state persisted by the previous refresh of a month,
// or forecast.BalanceUnknown when there was none.
func (s *DatabaseService) GetBalanceState(ctx context.Context, householdID, month string) (forecast.BalanceState, error) {
	resp, err := s.getClient(s.balanceStateTable).GetEntity(ctx, householdID, month, nil)
	if err != nil {
		if isNotFound(err) {
			return forecast.BalanceUnknown, nil
		}
		return forecast.BalanceUnknown, fmt.Errorf("failed to get balance state: %w", err)
	}
	e, err := decodeEntity(resp.Value)
	if err != nil {
		return forecast.BalanceUnknown, err
	}
	return forecast.BalanceState(e.str("State")), nil
}

// SaveBalanceState persists the state computed by this refresh.
func (s *DatabaseService) SaveBalanceState(ctx context.Context, householdID, month string, state forecast.BalanceState) error {
	raw, err := json.Marshal(map[string]any{
		"PartitionKey": householdID,
		"RowKey":       month,
		"State":        string(state),
		"UpdatedAt":    s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode balance state: %w", err)
	}
	_, err = s.getClient(s.balanceStateTable).UpsertEntity(ctx, raw, nil)
	return err
}

// ListVariableHistory returns the monthly variable-spend totals of a household.
func (s *DatabaseService) ListVariableHistory(ctx context.Context, householdID string) ([]models.VariableSpendMonth, error) {
	rows, err := s.listPartition(ctx, s.variableHistoryTable, householdID)
	if err != nil {
		return nil, err
	}

	history := make([]models.VariableSpendMonth, 0, len(rows))
	for _, e := range rows {
		history = append(history, models.VariableSpendMonth{
			Month: e.str("RowKey"),
			Total: e.dec("Total"),
		})
	}
	return history, nil
}

// SaveVariableHistory upserts monthly variable-spend totals.
func (s *DatabaseService) SaveVariableHistory(ctx context.Context, householdID string, history []models.VariableSpendMonth) error {
	var batch []aztables.TransactionAction
	for _, h := range history {
		action, err := upsertAction(map[string]any{
			"PartitionKey": householdID,
			"RowKey":       h.Month,
			"Total":        h.Total.String(),
		})
		if err != nil {
			return err
		}
		batch = append(batch, action)
	}
	return s.submitBatches(ctx, s.variableHistoryTable, batch)
}

// GetPlannedBudget returns the planned variable budget of a month, zero when unset.
func (s *DatabaseService) GetPlannedBudget(ctx context.Context, householdID, month string) (decimal.Decimal, error) {
	resp, err := s.getClient(s.budgetsTable).GetEntity(ctx, householdID, month, nil)
	if err != nil {
		if isNotFound(err) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get planned budget: %w", err)
	}
	e, err := decodeEntity(resp.Value)
	if err != nil {
		return decimal.Zero, err
	}
	return e.dec("Variable"), nil
}

// notificationRowKey derives a stable row key from (eventType, referenceId).
func notificationRowKey(eventType notify.EventType, referenceID string) string {
	hash := sha256.Sum256([]byte(notify.NotificationKey(eventType, referenceID)))
	return hex.EncodeToString(hash[:])
}

// ListNotifications returns every stored notification of a household, archived ones included.
func (s *DatabaseService) ListNotifications(ctx context.Context, householdID string) ([]models.Notification, error) {
	rows, err := s.listPartition(ctx, s.notificationsTable, householdID)
	if err != nil {
		return nil, err
	}

	notifications := make([]models.Notification, 0, len(rows))
	for _, e := range rows {
		notifications = append(notifications, models.Notification{
			ID:          e.str("RowKey"),
			EventType:   e.str("EventType"),
			ReferenceID: e.str("ReferenceID"),
			MessageKey:  e.str("MessageKey"),
			Params:      e.raw("Params"),
			Metadata:    e.raw("Metadata"),
			Severity:    e.str("Severity"),
			EntityType:  e.str("EntityType"),
			EntityID:    e.str("EntityID"),
			CtaLabelKey: e.str("CtaLabelKey"),
			CtaTarget:   e.str("CtaTarget"),
			CreatedAt:   e.str("CreatedAt"),
			UpdatedAt:   e.str("UpdatedAt"),
			ReadAt:      e.str("ReadAt"),
			DismissedAt: e.str("DismissedAt"),
			ArchivedAt:  e.str("ArchivedAt"),
		})
	}
	return notifications, nil
}

// ApplyNotificationActions writes reconciled actions to the notifications table.
// Create and Update upsert by (eventType, referenceId); Archive stamps ArchivedAt.
// Toast and Skip are not stored. It returns the number of rows written.
func (s *DatabaseService) ApplyNotificationActions(ctx context.Context, householdID string, actions []notify.Action) (int, error) {
	client := s.getClient(s.notificationsTable)
	timestamp := s.now().UTC().Format(time.RFC3339)
	merge := &aztables.UpsertEntityOptions{UpdateMode: aztables.UpdateModeMerge}

	written := 0
	for _, a := range actions {
		switch act := a.(type) {
		case notify.Create:
			row, err := notificationEntity(householdID, act.Payload)
			if err != nil {
				return written, err
			}
			row["CreatedAt"] = timestamp
			row["UpdatedAt"] = timestamp
			row["ArchivedAt"] = ""
			row["DismissedAt"] = ""
			row["ReadAt"] = ""
			if err := upsert(ctx, client, row, merge); err != nil {
				return written, fmt.Errorf("failed to create notification %s: %w", act.Payload.Key(), err)
			}
			written++

		case notify.Update:
			row, err := notificationEntity(householdID, act.Payload)
			if err != nil {
				return written, err
			}
			row["UpdatedAt"] = timestamp
			if err := upsert(ctx, client, row, merge); err != nil {
				return written, fmt.Errorf("failed to update notification %s: %w", act.Payload.Key(), err)
			}
			written++

		case notify.Archive:
			row := map[string]any{
				"PartitionKey": householdID,
				"RowKey":       notificationRowKey(act.EventType, act.ReferenceID),
				"ArchivedAt":   timestamp,
			}
			raw, err := json.Marshal(row)
			if err != nil {
				return written, fmt.Errorf("failed to encode archive: %w", err)
			}
			_, err = client.UpdateEntity(ctx, raw, &aztables.UpdateEntityOptions{UpdateMode: aztables.UpdateModeMerge})
			if err != nil {
				if isNotFound(err) {
					slog.Info("nothing to archive", "household_id", householdID, "event_type", act.EventType, "reference_id", act.ReferenceID)
					continue
				}
				return written, fmt.Errorf("failed to archive notification %s: %w", notify.NotificationKey(act.EventType, act.ReferenceID), err)
			}
			written++

		case notify.Toast, notify.Skip:
			continue
		}
	}
	return written, nil
}

func upsert(ctx context.Context, client *aztables.Client, row map[string]any, opts *aztables.UpsertEntityOptions) error {
	raw, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}
	_, err = client.UpsertEntity(ctx, raw, opts)
	return err
}

func notificationEntity(householdID string, p notify.Payload) (map[string]any, error) {
	params, err := json.Marshal(p.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode params: %w", err)
	}
	return map[string]any{
		"PartitionKey": householdID,
		"RowKey":       notificationRowKey(p.EventType, p.ReferenceID),
		"EventType":    string(p.EventType),
		"ReferenceID":  p.ReferenceID,
		"MessageKey":   p.MessageKey,
		"Params":       string(params),
		"Severity":     string(p.Severity),
		"EntityType":   p.EntityType,
		"EntityID":     p.EntityID,
		"CtaLabelKey":  p.CtaLabelKey,
		"CtaTarget":    p.CtaTarget,
	}, nil
}

// SavePlannedBudget sets the planned variable budget of a month.
func (s *DatabaseService) SavePlannedBudget(ctx context.Context, householdID string, budget models.PlannedBudget) error {
	raw, err := json.Marshal(map[string]any{
		"PartitionKey": householdID,
		"RowKey":       budget.Month,
		"Variable":     budget.Variable.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode planned budget: %w", err)
	}
	_, err = s.getClient(s.budgetsTable).UpsertEntity(ctx, raw, nil)
	return err
}
