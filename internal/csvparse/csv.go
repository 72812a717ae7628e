// Package csvparse reads household transaction exports.
package csvparse

import (
	"encoding/csv"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocjay1/cashflow/internal/models"
	"github.com/shopspring/decimal"
)

// Column names. Matching is case-insensitive.
const (
	ColID          = "ID"
	ColDate        = "Date"
	ColDueDate     = "Due Date"
	ColKind        = "Kind"
	ColDescription = "Description"
	ColAmount      = "Amount"
	ColStatus      = "Status"
	ColAccount     = "Account"
	ColToAccount   = "To Account"
	ColCategory    = "Category"
	ColSubcategory = "Subcategory"
	ColExpenseType = "Expense Type"
)

var required = []string{ColDate, ColKind, ColAmount, ColAccount}

// rowNamespace seeds the ids derived for rows that carry none, so that
// importing the same file twice yields the same ids.
var rowNamespace = uuid.MustParse("6f1c1f9e-3b1a-4a57-9a55-2f0f5d1b7c21")

// ParseCSV parses transactions from a CSV string.
// It returns the valid transactions and an error message for every rejected row.
func ParseCSV(content string) ([]models.Transaction, []string) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, []string{fmt.Sprintf("Failed to read CSV: %v", err)}
	}

	if len(records) < 2 {
		return []models.Transaction{}, nil
	}

	headers := parseHeaders(records[0])
	var missing []string
	for _, col := range required {
		if !containsHeader(headers, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, []string{fmt.Sprintf("Missing required columns: %s", strings.Join(missing, ", "))}
	}

	var transactions []models.Transaction
	var errors []string
	for i, record := range records[1:] {
		rowNum := i + 2
		if len(record) < len(headers) {
			errors = append(errors, fmt.Sprintf("Row %d: Not enough fields", rowNum))
			continue
		}

		row := make(map[string]string, len(headers))
		for j, header := range headers {
			row[header] = strings.TrimSpace(record[j])
		}

		t, err := mapToTransaction(row)
		if err != nil {
			errors = append(errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}
		if t.ID == "" {
			t.ID = deriveID(rowNum, record)
		}
		transactions = append(transactions, t)
	}

	return transactions, errors
}

func parseHeaders(row []string) []string {
	headers := make([]string, len(row))
	for i, h := range row {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return headers
}

func containsHeader(headers []string, col string) bool {
	for _, h := range headers {
		if h == strings.ToLower(col) {
			return true
		}
	}
	return false
}

func get(row map[string]string, col string) string {
	return row[strings.ToLower(col)]
}

func deriveID(rowNum int, record []string) string {
	name := fmt.Sprintf("%d|%s", rowNum, strings.Join(record, "|"))
	return uuid.NewSHA1(rowNamespace, []byte(name)).String()
}

func parseDate(col, value string) (string, error) {
	if _, err := time.Parse(models.DateLayout, value); err != nil {
		return "", fmt.Errorf("invalid %s format: %s", col, value)
	}
	return value, nil
}

func mapToTransaction(row map[string]string) (models.Transaction, error) {
	var t models.Transaction

	dateStr := get(row, ColDate)
	if dateStr == "" {
		return t, fmt.Errorf("missing Date")
	}
	date, err := parseDate(ColDate, dateStr)
	if err != nil {
		return t, err
	}

	var dueDate string
	if s := get(row, ColDueDate); s != "" {
		if dueDate, err = parseDate(ColDueDate, s); err != nil {
			return t, err
		}
	}

	kind := models.Kind(strings.ToUpper(get(row, ColKind)))
	switch kind {
	case models.KindIncome, models.KindExpense, models.KindTransfer:
	case "":
		return t, fmt.Errorf("missing Kind")
	default:
		return t, fmt.Errorf("invalid Kind: %s", get(row, ColKind))
	}

	amountStr := get(row, ColAmount)
	if amountStr == "" {
		return t, fmt.Errorf("missing Amount")
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return t, fmt.Errorf("invalid Amount: %s", amountStr)
	}
	if amount.IsNegative() {
		return t, fmt.Errorf("negative Amount: %s", amountStr)
	}

	status := models.Status(strings.ToLower(get(row, ColStatus)))
	switch status {
	case models.StatusPlanned, models.StatusConfirmed, models.StatusCancelled:
	case "":
		status = models.StatusConfirmed
	default:
		return t, fmt.Errorf("invalid Status: %s", get(row, ColStatus))
	}

	account := get(row, ColAccount)
	if account == "" {
		return t, fmt.Errorf("missing Account")
	}

	toAccount := get(row, ColToAccount)
	if kind == models.KindTransfer {
		if toAccount == "" {
			return t, fmt.Errorf("transfer without To Account")
		}
		if toAccount == account {
			return t, fmt.Errorf("transfer to the same account: %s", account)
		}
	}

	expenseType := models.ExpenseType(strings.ToLower(get(row, ColExpenseType)))
	switch expenseType {
	case "", models.ExpenseFixed, models.ExpenseVariable:
	default:
		return t, fmt.Errorf("invalid Expense Type: %s", get(row, ColExpenseType))
	}
	if kind != models.KindExpense {
		expenseType = ""
	}

	category := get(row, ColCategory)
	subcategory := get(row, ColSubcategory)
	return models.Transaction{
		ID:              get(row, ColID),
		Kind:            kind,
		Description:     get(row, ColDescription),
		Amount:          amount,
		Date:            date,
		DueDate:         dueDate,
		Status:          status,
		AccountID:       account,
		ToAccountID:     toAccount,
		CategoryID:      slug(category),
		CategoryName:    category,
		SubcategoryID:   slug(subcategory),
		SubcategoryName: subcategory,
		ExpenseType:     expenseType,
	}, nil
}

// slug derives a stable id from a display name.
func slug(name string) string {
	if name == "" {
		return ""
	}
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}
