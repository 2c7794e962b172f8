package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/query"
)

// CategoryTotal is one row of the per-category aggregation scan.
type CategoryTotal struct {
	Category string
	Total    float64
	Count    int64
}

// ListTransactions retrieves a page of a user's transactions matching the
// filter. Ordering is occurred_at ascending with id as the tie-break, so
// repeated calls with the same filter and page return identical results even
// as unrelated rows are appended elsewhere.
func (r *Repository) ListTransactions(ctx context.Context, ownerID string, f query.Filter, p query.Page) ([]*model.Transaction, error) {
	sql := `
		SELECT id, owner_id, amount, category, COALESCE(description, ''), occurred_at, created_at
		FROM transactions
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	sql, args = appendFilter(sql, args, f)

	sql += fmt.Sprintf(" ORDER BY occurred_at ASC, id ASC OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, p.Skip, p.Limit)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*model.Transaction
	for rows.Next() {
		var txn model.Transaction
		err := rows.Scan(
			&txn.ID,
			&txn.OwnerID,
			&txn.Amount,
			&txn.Category,
			&txn.Description,
			&txn.OccurredAt,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return txns, nil
}

// AggregateByCategory returns per-category amount sums and row counts for a
// user's transactions matching the filter. Everything the metrics endpoint
// reports (total, average, per-category breakdown) is derived from this single
// scan, which is what keeps the three values consistent with each other.
func (r *Repository) AggregateByCategory(ctx context.Context, ownerID string, f query.Filter) ([]CategoryTotal, error) {
	sql := `
		SELECT category, SUM(amount), COUNT(*)
		FROM transactions
		WHERE owner_id = $1
	`
	args := []any{ownerID}
	sql, args = appendFilter(sql, args, f)

	sql += " GROUP BY category ORDER BY category ASC"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		totals = append(totals, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}

	return totals, nil
}

// CreateTransaction inserts a ledger row. Ingestion happens out of band; this
// exists for the bootstrap script and tests, not for any request path.
func (r *Repository) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	sql := `
		INSERT INTO transactions (id, owner_id, amount, category, description, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, sql,
		txn.ID,
		txn.OwnerID,
		txn.Amount,
		txn.Category,
		nullableString(txn.Description),
		txn.OccurredAt,
		txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// appendFilter extends a WHERE clause with the optional filter predicates.
func appendFilter(sql string, args []any, f query.Filter) (string, []any) {
	if f.Start != nil {
		sql += fmt.Sprintf(" AND occurred_at >= $%d", len(args)+1)
		args = append(args, *f.Start)
	}

	if f.End != nil {
		sql += fmt.Sprintf(" AND occurred_at <= $%d", len(args)+1)
		args = append(args, *f.End)
	}

	if len(f.Categories) > 0 {
		sql += fmt.Sprintf(" AND category = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(f.Categories))
	}

	return sql, args
}
