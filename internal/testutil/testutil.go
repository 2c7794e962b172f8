// Package testutil provides shared helpers for integration and unit tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/spendlens/spendlens/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 840840

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetLedgerSchema drops and recreates the users and transactions schemas.
// Transactions are dropped first because of the owner foreign key.
func ResetLedgerSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	steps := []string{
		filepath.Join(root, "migrations", "000002_transactions.down.sql"),
		filepath.Join(root, "migrations", "000001_users.down.sql"),
		filepath.Join(root, "migrations", "000001_users.up.sql"),
		filepath.Join(root, "migrations", "000002_transactions.up.sql"),
	}

	for _, path := range steps {
		sql, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
		}
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
// PasswordHash is an opaque placeholder; use auth.HashPassword when the test
// exercises credential verification.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           fmt.Sprintf("user-%s-%d", username, now.UnixNano()),
		Username:     username,
		PasswordHash: fmt.Sprintf("hash-%d", now.UnixNano()),
		DisplayName:  username,
		CreatedAt:    now,
	}
}

// NewTestTransaction creates a test transaction with sensible defaults.
func NewTestTransaction(t testing.TB, ownerID, category string, amount float64, occurredAt time.Time) *model.Transaction {
	t.Helper()
	return &model.Transaction{
		ID:         fmt.Sprintf("txn-%d-%s", occurredAt.UnixNano(), category),
		OwnerID:    ownerID,
		Amount:     amount,
		Category:   category,
		OccurredAt: occurredAt,
		CreatedAt:  time.Now().UTC(),
	}
}
