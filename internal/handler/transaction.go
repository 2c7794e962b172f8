package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/handler/dto"
	"github.com/spendlens/spendlens/internal/query"
	"github.com/spendlens/spendlens/internal/service"
)

// TransactionHandler handles HTTP requests for ledger queries.
type TransactionHandler struct {
	svc         *service.LedgerService
	logger      *slog.Logger
	maxPageSize int
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(svc *service.LedgerService, logger *slog.Logger, maxPageSize int) *TransactionHandler {
	return &TransactionHandler{
		svc:         svc,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
}

// List handles GET /api/v1/transactions.
// Filters: start_date, end_date, categories (comma-separated).
// Pagination: skip, limit.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}

	q := r.URL.Query()

	filter, err := query.ParseFilter(q.Get("start_date"), q.Get("end_date"), q.Get("categories"))
	if err != nil {
		h.handleQueryError(w, err)
		return
	}

	page, err := query.ParsePage(q.Get("skip"), q.Get("limit"), h.maxPageSize)
	if err != nil {
		h.handleQueryError(w, err)
		return
	}

	txns, err := h.svc.ListTransactions(r.Context(), authCtx.UserID, filter, page)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTransactionListResponse(txns, page.Skip, page.Limit))
}

// Metrics handles GET /api/v1/transactions/metrics.
// Accepts the same filters as List; pagination does not apply, the numbers
// always describe the full filtered population.
func (h *TransactionHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}

	q := r.URL.Query()

	filter, err := query.ParseFilter(q.Get("start_date"), q.Get("end_date"), q.Get("categories"))
	if err != nil {
		h.handleQueryError(w, err)
		return
	}

	result, err := h.svc.ComputeMetrics(r.Context(), authCtx.UserID, filter)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToMetricsResponse(result))
}

// handleQueryError maps filter/pagination parse errors to HTTP responses.
func (h *TransactionHandler) handleQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, query.ErrBadDate):
		writeError(w, http.StatusBadRequest, "INVALID_DATE", "Invalid date format")
	case errors.Is(err, query.ErrBadPage):
		writeError(w, http.StatusBadRequest, "INVALID_PAGINATION", "Skip and limit must be non-negative integers")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
