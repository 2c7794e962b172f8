package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/query"
	"github.com/spendlens/spendlens/internal/repository"
)

// MemStore is an in-memory stand-in for the Postgres repository.
// It mirrors the repository's filter predicate and ordering so unit tests can
// exercise services and handlers without a database.
type MemStore struct {
	mu           sync.RWMutex
	users        map[string]*model.User
	transactions []*model.Transaction

	// FailWith, when set, is returned by every store method.
	FailWith error
}

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{users: make(map[string]*model.User)}
}

// AddUser registers a user.
func (s *MemStore) AddUser(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

// AddTransaction appends a ledger row.
func (s *MemStore) AddTransaction(txn *model.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txn)
}

// GetUserByUsername implements the user store contract.
func (s *MemStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// ListTransactions implements the transaction store contract with the same
// predicate, ordering and pagination as the SQL implementation.
func (s *MemStore) ListTransactions(ctx context.Context, ownerID string, f query.Filter, p query.Page) ([]*model.Transaction, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	matched := s.filtered(ownerID, f)

	if p.Skip >= len(matched) {
		return nil, nil
	}
	matched = matched[p.Skip:]
	if p.Limit < len(matched) {
		matched = matched[:p.Limit]
	}

	return matched, nil
}

// AggregateByCategory implements the aggregation contract, grouping the
// filtered set by category with sums and counts, ordered by category.
func (s *MemStore) AggregateByCategory(ctx context.Context, ownerID string, f query.Filter) ([]repository.CategoryTotal, error) {
	if s.FailWith != nil {
		return nil, s.FailWith
	}

	sums := make(map[string]*repository.CategoryTotal)
	for _, txn := range s.filtered(ownerID, f) {
		ct, ok := sums[txn.Category]
		if !ok {
			ct = &repository.CategoryTotal{Category: txn.Category}
			sums[txn.Category] = ct
		}
		ct.Total += txn.Amount
		ct.Count++
	}

	totals := make([]repository.CategoryTotal, 0, len(sums))
	for _, ct := range sums {
		totals = append(totals, *ct)
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Category < totals[j].Category
	})

	return totals, nil
}

func (s *MemStore) filtered(ownerID string, f query.Filter) []*model.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*model.Transaction
	for _, txn := range s.transactions {
		if txn.OwnerID != ownerID {
			continue
		}
		if f.Start != nil && txn.OccurredAt.Before(*f.Start) {
			continue
		}
		if f.End != nil && txn.OccurredAt.After(*f.End) {
			continue
		}
		if len(f.Categories) > 0 && !containsCategory(f.Categories, txn.Category) {
			continue
		}
		matched = append(matched, txn)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].OccurredAt.Equal(matched[j].OccurredAt) {
			return matched[i].OccurredAt.Before(matched[j].OccurredAt)
		}
		return matched[i].ID < matched[j].ID
	})

	return matched
}

func containsCategory(categories []string, category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}
