package csvparse

import (
	"strings"
	"testing"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/shopspring/decimal"
)

const header = "ID,Date,Due Date,Kind,Description,Amount,Status,Account,To Account,Category,Subcategory,Expense Type"

func TestParseCSV_Valid(t *testing.T) {
	content := header + `
tx-1,2026-10-01,,income,Salary,4000,confirmed,checking,,Work,,
tx-2,2026-10-01,2026-10-10,EXPENSE,Rent,1500.00,planned,checking,,Home & Living,Rent,fixed
tx-3,2026-10-02,,transfer,Stash,250,,checking,savings,,,`

	transactions, errors := ParseCSV(content)

	if len(errors) != 0 {
		t.Fatalf("Expected no errors, got: %v", errors)
	}
	if len(transactions) != 3 {
		t.Fatalf("Expected 3 transactions, got %d", len(transactions))
	}

	t1 := transactions[0]
	if t1.ID != "tx-1" || t1.Kind != models.KindIncome {
		t.Errorf("Expected income tx-1, got %s %s", t1.Kind, t1.ID)
	}
	if t1.ExpenseType != "" {
		t.Errorf("Expected no expense type on income, got '%s'", t1.ExpenseType)
	}

	t2 := transactions[1]
	if !t2.Amount.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected Amount 1500, got %s", t2.Amount)
	}
	if t2.EffectiveDate() != "2026-10-10" {
		t.Errorf("Expected effective date 2026-10-10, got %s", t2.EffectiveDate())
	}
	if t2.Status != models.StatusPlanned || t2.ExpenseType != models.ExpenseFixed {
		t.Errorf("Expected planned fixed expense, got %s %s", t2.Status, t2.ExpenseType)
	}
	if t2.CategoryID != "home-living" || t2.CategoryName != "Home & Living" {
		t.Errorf("Expected category home-living, got '%s' '%s'", t2.CategoryID, t2.CategoryName)
	}
	if t2.SubcategoryID != "rent" {
		t.Errorf("Expected subcategory rent, got '%s'", t2.SubcategoryID)
	}

	t3 := transactions[2]
	if t3.Status != models.StatusConfirmed {
		t.Errorf("Expected default status confirmed, got '%s'", t3.Status)
	}
	if t3.ToAccountID != "savings" {
		t.Errorf("Expected To Account savings, got '%s'", t3.ToAccountID)
	}
}

func TestParseCSV_DerivesStableIDs(t *testing.T) {
	content := `Date,Kind,Amount,Account
2026-10-01,expense,12.5,checking`

	first, errors := ParseCSV(content)
	if len(errors) != 0 || len(first) != 1 {
		t.Fatalf("Expected 1 transaction and no errors, got %d / %v", len(first), errors)
	}
	second, _ := ParseCSV(content)

	if first[0].ID == "" {
		t.Fatal("Expected a derived ID")
	}
	if first[0].ID != second[0].ID {
		t.Errorf("Expected the same ID on re-import, got %s and %s", first[0].ID, second[0].ID)
	}
}

func TestParseCSV_Whitespace(t *testing.T) {
	content := ` Date , Kind , Amount , Account , Description
 2026-10-01 , Expense , 42.5 , checking , Lunch `

	transactions, errors := ParseCSV(content)

	if len(errors) != 0 {
		t.Fatalf("Expected no errors, got: %v", errors)
	}
	if len(transactions) != 1 {
		t.Fatalf("Expected 1 transaction, got %d", len(transactions))
	}
	if transactions[0].Description != "Lunch" {
		t.Errorf("Expected Description 'Lunch', got '%s'", transactions[0].Description)
	}
	if !transactions[0].Amount.Equal(decimal.NewFromFloat(42.5)) {
		t.Errorf("Expected Amount 42.5, got %s", transactions[0].Amount)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	content := header + `
tx-1,2026-10-01,,expense,Ok,10,confirmed,checking,,,,
tx-2,bad-date,,expense,Bad date,10,confirmed,checking,,,,
tx-3,2026-10-01,,refund,Bad kind,10,confirmed,checking,,,,
tx-4,2026-10-01,,expense,Bad amount,abc,confirmed,checking,,,,
tx-5,2026-10-01,,expense,Negative,-10,confirmed,checking,,,,
tx-6,2026-10-01,,expense,Bad status,10,done,checking,,,,
tx-7,2026-10-01,,transfer,No target,10,confirmed,checking,,,,
tx-8,2026-10-01,,transfer,Same account,10,confirmed,checking,checking,,,
tx-9,2026-10-01,,expense,Bad type,10,confirmed,checking,,,,rare
tx-10,2026-10-01,31-10-2026,expense,Bad due date,10,confirmed,checking,,,,`

	transactions, errors := ParseCSV(content)

	if len(transactions) != 1 {
		t.Errorf("Expected 1 valid transaction, got %d", len(transactions))
	}
	if len(errors) != 9 {
		t.Fatalf("Expected 9 errors, got %d: %v", len(errors), errors)
	}
	if !strings.HasPrefix(errors[0], "Row 3: invalid Date") {
		t.Errorf("Expected row number in error, got '%s'", errors[0])
	}
}

func TestParseCSV_MissingColumns(t *testing.T) {
	content := `Date,Description,Amount
2026-10-01,Lunch,12`

	transactions, errors := ParseCSV(content)

	if len(transactions) != 0 {
		t.Errorf("Expected 0 transactions, got %d", len(transactions))
	}
	if len(errors) != 1 || !strings.Contains(errors[0], "Kind, Account") {
		t.Errorf("Expected missing column error, got %v", errors)
	}
}

func TestParseCSV_ShortRow(t *testing.T) {
	content := `Date,Kind,Amount,Account
2026-10-01,expense,12`

	_, errors := ParseCSV(content)

	if len(errors) != 1 || !strings.Contains(errors[0], "Not enough fields") {
		t.Errorf("Expected short row error, got %v", errors)
	}
}

func TestParseCSV_Empty(t *testing.T) {
	transactions, errors := ParseCSV("")

	if len(transactions) != 0 {
		t.Errorf("Expected 0 transactions, got %d", len(transactions))
	}
	if len(errors) != 0 {
		t.Errorf("Expected 0 errors, got %d", len(errors))
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	transactions, errors := ParseCSV(header)

	if len(transactions) != 0 {
		t.Errorf("Expected 0 transactions, got %d", len(transactions))
	}
	if len(errors) != 0 {
		t.Errorf("Expected 0 errors, got %d", len(errors))
	}
}
