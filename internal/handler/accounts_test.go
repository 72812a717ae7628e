package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocjay1/cashflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAccounts_Get(t *testing.T) {
	mockDb := &MockDatabaseClient{
		ListAccountsFunc: func(ctx context.Context, householdID string) ([]models.Account, error) {
			assert.Equal(t, "h1", householdID)
			return []models.Account{{ID: "checking", Name: "Checking", IsActive: true}}, nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	req := httptest.NewRequest(http.MethodGet, "/api/accounts?household=h1", nil)
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var got []models.Account
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "checking", got[0].ID)
}

func TestHandleAccounts_PostAssignsID(t *testing.T) {
	var saved models.Account
	mockDb := &MockDatabaseClient{
		SaveAccountFunc: func(ctx context.Context, householdID string, account models.Account) error {
			saved = account
			return nil
		},
	}
	deps := &Dependencies{Database: mockDb}

	body, _ := json.Marshal(models.Account{Name: "Emergency fund", IsReserve: true, IsActive: true})
	req := httptest.NewRequest(http.MethodPost, "/api/accounts?household=h1", bytes.NewBuffer(body))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, saved.ID)
	assert.True(t, saved.IsReserve)
}

func TestHandleAccounts_PostValidation(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{}}

	req := httptest.NewRequest(http.MethodPost, "/api/accounts?household=h1", bytes.NewBufferString(`{"id":"x"}`))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/accounts?household=h1", bytes.NewBufferString(`not json`))
	w = httptest.NewRecorder()
	deps.HandleAccounts(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAccounts_SaveError(t *testing.T) {
	deps := &Dependencies{Database: &MockDatabaseClient{
		SaveAccountFunc: func(ctx context.Context, householdID string, account models.Account) error {
			return errors.New("conflict")
		},
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/accounts?household=h1", bytes.NewBufferString(`{"name":"Checking"}`))
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleAccounts_MethodNotAllowed(t *testing.T) {
	deps := &Dependencies{}
	req := httptest.NewRequest(http.MethodDelete, "/api/accounts?household=h1", nil)
	w := httptest.NewRecorder()
	deps.HandleAccounts(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
