package service

import (
	"context"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/metrics"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/query"
	"github.com/spendlens/spendlens/internal/repository"
)

// TransactionStore is the subset of the repository the ledger service needs.
type TransactionStore interface {
	ListTransactions(ctx context.Context, ownerID string, f query.Filter, p query.Page) ([]*model.Transaction, error)
	AggregateByCategory(ctx context.Context, ownerID string, f query.Filter) ([]repository.CategoryTotal, error)
}

// LedgerService answers read-only queries over a user's transaction ledger.
type LedgerService struct {
	store   TransactionStore
	metrics metrics.Recorder
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store TransactionStore, recorder metrics.Recorder) *LedgerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LedgerService{
		store:   store,
		metrics: recorder,
	}
}

// ListTransactions returns the owner's transactions matching the filter,
// ordered by occurred_at then id ascending. An empty result is a valid
// success, not an error.
func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string, f query.Filter, p query.Page) ([]*model.Transaction, error) {
	start := time.Now()

	txns, err := s.store.ListTransactions(ctx, ownerID, f, p)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	s.metrics.IncTransactionsListed()
	s.metrics.ObserveQueryDuration(time.Since(start))

	if txns == nil {
		txns = []*model.Transaction{}
	}
	return txns, nil
}

// ComputeMetrics derives spending metrics for the owner's transactions
// matching the filter. Total, average and per-category sums all come from the
// same aggregation scan, so they always describe the same row set. An empty
// filtered set yields zeros and an empty breakdown, not an error.
func (s *LedgerService) ComputeMetrics(ctx context.Context, ownerID string, f query.Filter) (*model.MetricsResult, error) {
	start := time.Now()

	totals, err := s.store.AggregateByCategory(ctx, ownerID, f)
	if err != nil {
		return nil, fmt.Errorf("aggregate transactions: %w", err)
	}

	result := &model.MetricsResult{
		SpendingByCategory: make(map[string]float64, len(totals)),
	}

	var count int64
	for _, ct := range totals {
		result.TotalSpent += ct.Total
		result.SpendingByCategory[ct.Category] = ct.Total
		count += ct.Count
	}

	if count > 0 {
		result.AverageTransaction = result.TotalSpent / float64(count)
	}

	s.metrics.IncMetricsComputed()
	s.metrics.ObserveQueryDuration(time.Since(start))

	return result, nil
}
