package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/handler/dto"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spendlens/spendlens/internal/testutil"
)

const testOwnerID = "user-alice"

func newTransactionHandler(t *testing.T) *TransactionHandler {
	t.Helper()

	store := testutil.NewMemStore()
	store.AddTransaction(testutil.NewTestTransaction(t, testOwnerID, "food", 50,
		time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)))
	store.AddTransaction(testutil.NewTestTransaction(t, testOwnerID, "food", 30,
		time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)))
	store.AddTransaction(testutil.NewTestTransaction(t, testOwnerID, "rent", 100,
		time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)))
	store.AddTransaction(testutil.NewTestTransaction(t, "user-bob", "food", 999,
		time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)))

	svc := service.NewLedgerService(store, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewTransactionHandler(svc, logger, 500)
}

func doAuthedRequest(t *testing.T, handler http.HandlerFunc, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := auth.ContextWithAuth(req.Context(), &model.AuthContext{
		UserID:   testOwnerID,
		Username: "alice",
	})
	rec := httptest.NewRecorder()
	handler(rec, req.WithContext(ctx))
	return rec
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) dto.TransactionListResponse {
	t.Helper()

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp dto.TransactionListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestTransactionHandler_List_NoFilter(t *testing.T) {
	h := newTransactionHandler(t)

	resp := decodeList(t, doAuthedRequest(t, h.List, "/api/v1/transactions"))

	if resp.Count != 3 {
		t.Fatalf("count = %d, want 3", resp.Count)
	}
	// Date-ascending order, other users' rows excluded.
	wantAmounts := []float64{50, 30, 100}
	for i, txn := range resp.Data {
		if txn.Amount != wantAmounts[i] {
			t.Errorf("data[%d].amount = %v, want %v", i, txn.Amount, wantAmounts[i])
		}
	}
}

func TestTransactionHandler_List_Filtered(t *testing.T) {
	h := newTransactionHandler(t)

	resp := decodeList(t, doAuthedRequest(t, h.List,
		"/api/v1/transactions?categories=food&start_date=2024-01-02"))

	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Data[0].Amount != 30 {
		t.Errorf("amount = %v, want 30", resp.Data[0].Amount)
	}
}

func TestTransactionHandler_List_Pagination(t *testing.T) {
	h := newTransactionHandler(t)

	resp := decodeList(t, doAuthedRequest(t, h.List, "/api/v1/transactions?skip=1&limit=1"))

	if resp.Count != 1 {
		t.Fatalf("count = %d, want 1", resp.Count)
	}
	if resp.Data[0].Amount != 30 {
		t.Errorf("amount = %v, want 30", resp.Data[0].Amount)
	}
	if resp.Skip != 1 || resp.Limit != 1 {
		t.Errorf("echo skip/limit = %d/%d, want 1/1", resp.Skip, resp.Limit)
	}
}

func TestTransactionHandler_List_InvertedRange(t *testing.T) {
	h := newTransactionHandler(t)

	resp := decodeList(t, doAuthedRequest(t, h.List,
		"/api/v1/transactions?start_date=2024-02-01&end_date=2024-01-01"))

	if resp.Count != 0 {
		t.Fatalf("count = %d, want 0", resp.Count)
	}
	if resp.Data == nil {
		t.Error("data should be an empty array, not null")
	}
}

func TestTransactionHandler_List_BadDate(t *testing.T) {
	h := newTransactionHandler(t)

	rec := doAuthedRequest(t, h.List, "/api/v1/transactions?start_date=not-a-date")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != "INVALID_DATE" {
		t.Errorf("code = %q, want INVALID_DATE", resp.Code)
	}
}

func TestTransactionHandler_List_BadPagination(t *testing.T) {
	h := newTransactionHandler(t)

	for _, target := range []string{
		"/api/v1/transactions?skip=-1",
		"/api/v1/transactions?limit=-5",
		"/api/v1/transactions?skip=abc",
	} {
		rec := doAuthedRequest(t, h.List, target)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, rec.Code)
		}
	}
}

func TestTransactionHandler_List_LimitClamped(t *testing.T) {
	h := newTransactionHandler(t)

	resp := decodeList(t, doAuthedRequest(t, h.List, "/api/v1/transactions?limit=100000"))

	if resp.Limit != 500 {
		t.Errorf("limit = %d, want clamped to 500", resp.Limit)
	}
}

func TestTransactionHandler_List_Unauthenticated(t *testing.T) {
	h := newTransactionHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}

func TestTransactionHandler_Metrics(t *testing.T) {
	h := newTransactionHandler(t)

	rec := doAuthedRequest(t, h.Metrics, "/api/v1/transactions/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.MetricsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.TotalSpent != 180 {
		t.Errorf("total_spent = %v, want 180", resp.TotalSpent)
	}
	if resp.AverageTransaction != 60 {
		t.Errorf("average_transaction = %v, want 60", resp.AverageTransaction)
	}
	if resp.SpendingByCategory["food"] != 80 || resp.SpendingByCategory["rent"] != 100 {
		t.Errorf("unexpected spending_by_category: %v", resp.SpendingByCategory)
	}
}

func TestTransactionHandler_Metrics_EmptySet(t *testing.T) {
	h := newTransactionHandler(t)

	rec := doAuthedRequest(t, h.Metrics, "/api/v1/transactions/metrics?categories=travel")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp dto.MetricsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.TotalSpent != 0 || resp.AverageTransaction != 0 {
		t.Errorf("expected zero totals, got %+v", resp)
	}
	if resp.SpendingByCategory == nil {
		t.Error("spending_by_category should be an empty object, not null")
	}
}

func TestTransactionHandler_Metrics_BadDate(t *testing.T) {
	h := newTransactionHandler(t)

	rec := doAuthedRequest(t, h.Metrics, "/api/v1/transactions/metrics?end_date=garbage")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}
