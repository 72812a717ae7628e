package models

import (
	"github.com/shopspring/decimal"
)

// Kind is the direction of a transaction.
type Kind string

const (
	KindIncome   Kind = "INCOME"
	KindExpense  Kind = "EXPENSE"
	KindTransfer Kind = "TRANSFER"
)

// Status is the lifecycle state of a transaction.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ExpenseType separates recurring obligations from discretionary spending.
type ExpenseType string

const (
	ExpenseFixed    ExpenseType = "fixed"
	ExpenseVariable ExpenseType = "variable"
)

// Transaction represents a single household transaction as delivered by the persistence layer.
// Dates are ISO 8601 strings (YYYY-MM-DD, a time suffix is tolerated).
type Transaction struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"kind"`
	Description     string          `json:"description,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	DueDate         string          `json:"due_date,omitempty"`
	Status          Status          `json:"status"`
	CancelledAt     string          `json:"cancelled_at,omitempty"`
	AccountID       string          `json:"account_id"`
	ToAccountID     string          `json:"to_account_id,omitempty"`
	CategoryID      string          `json:"category_id,omitempty"`
	CategoryName    string          `json:"category_name,omitempty"`
	SubcategoryID   string          `json:"subcategory_id,omitempty"`
	SubcategoryName string          `json:"subcategory_name,omitempty"`
	ExpenseType     ExpenseType     `json:"expense_type,omitempty"`
}

// EffectiveDate returns the accounting date of the transaction.
// An expense with a due date is booked on its due date; everything else on its entry date.
func (t Transaction) EffectiveDate() string {
	if t.Kind == KindExpense && t.DueDate != "" {
		return DateOnly(t.DueDate)
	}
	return DateOnly(t.Date)
}

// IsCancelled reports whether the transaction is excluded from every calculation.
func (t Transaction) IsCancelled() bool {
	return t.Status == StatusCancelled || t.CancelledAt != ""
}

// IsPlanned reports whether the transaction is pending.
func (t Transaction) IsPlanned() bool {
	return !t.IsCancelled() && t.Status == StatusPlanned
}

// IsConfirmed reports whether the transaction is realized.
func (t Transaction) IsConfirmed() bool {
	return !t.IsCancelled() && t.Status == StatusConfirmed
}

// Active returns the transactions that are not cancelled, preserving order.
func Active(transactions []Transaction) []Transaction {
	active := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.IsCancelled() {
			continue
		}
		active = append(active, t)
	}
	return active
}

// SumAmounts adds up the amounts of the given transactions.
func SumAmounts(transactions []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(t.Amount)
	}
	return total
}
