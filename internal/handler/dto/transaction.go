// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/spendlens/spendlens/internal/model"
)

// LoginRequest represents the request body for obtaining a token.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse represents a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// UserResponse represents the authenticated user in API responses.
type UserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionResponse represents a single ledger entry in API responses.
type TransactionResponse struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionListResponse represents a page of transactions.
type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Skip  int                   `json:"skip"`
	Limit int                   `json:"limit"`
	Count int                   `json:"count"`
}

// MetricsResponse represents aggregate spending metrics.
type MetricsResponse struct {
	TotalSpent         float64            `json:"total_spent"`
	AverageTransaction float64            `json:"average_transaction"`
	SpendingByCategory map[string]float64 `json:"spending_by_category"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// ToTransactionResponse converts a Transaction model to its DTO.
func ToTransactionResponse(t *model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  t.OccurredAt,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTransactionListResponse converts a page of transactions to its DTO.
// A nil or empty slice yields an empty data array, never null.
func ToTransactionListResponse(txns []*model.Transaction, skip, limit int) *TransactionListResponse {
	data := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		data = append(data, ToTransactionResponse(t))
	}
	return &TransactionListResponse{
		Data:  data,
		Skip:  skip,
		Limit: limit,
		Count: len(data),
	}
}

// ToMetricsResponse converts a MetricsResult to its DTO.
func ToMetricsResponse(m *model.MetricsResult) *MetricsResponse {
	byCategory := m.SpendingByCategory
	if byCategory == nil {
		byCategory = map[string]float64{}
	}
	return &MetricsResponse{
		TotalSpent:         m.TotalSpent,
		AverageTransaction: m.AverageTransaction,
		SpendingByCategory: byCategory,
	}
}
