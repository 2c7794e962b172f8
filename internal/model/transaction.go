package model

import "time"

// Transaction represents a single ledger entry.
// The ledger is append-only: rows are ingested externally and never mutated or
// deleted by this service. Amount may carry any sign; the caller decides
// whether negative values mean refunds, credits, or something else.
type Transaction struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// MetricsResult holds spending metrics derived from a filtered transaction set.
// All three fields are computed from the same scan, so they always describe the
// same underlying rows. Computed fresh per request, never cached.
type MetricsResult struct {
	TotalSpent         float64            `json:"total_spent"`
	AverageTransaction float64            `json:"average_transaction"`
	SpendingByCategory map[string]float64 `json:"spending_by_category"`
}
