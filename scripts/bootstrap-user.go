package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Seeded   int    `json:"seeded_transactions"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Username for the new account")
		password    = flag.String("password", "", "Password (generated if empty)")
		displayName = flag.String("display-name", "", "Optional display name")
		seed        = flag.Bool("seed", false, "Seed a few demo transactions")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	plaintext := *password
	if plaintext == "" {
		generated, err := randomPassword()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate password:", err)
			os.Exit(1)
		}
		plaintext = generated
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	hash, err := auth.HashPassword(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash password:", err)
		os.Exit(1)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     *username,
		PasswordHash: hash,
		DisplayName:  *displayName,
		CreatedAt:    time.Now().UTC(),
	}

	if err := repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			fmt.Fprintf(os.Stderr, "username %s already exists\n", *username)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "create user:", err)
		os.Exit(1)
	}

	seeded := 0
	if *seed {
		seeded, err = seedTransactions(ctx, repo, user.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "seed transactions:", err)
			os.Exit(1)
		}
	}

	out := output{
		UserID:   user.ID,
		Username: user.Username,
		Password: plaintext,
		Seeded:   seeded,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("user_id=%s username=%s password=%s\n", out.UserID, out.Username, out.Password)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// seedTransactions inserts a small recognizable ledger for demos and
// local development.
func seedTransactions(ctx context.Context, repo *repository.Repository, ownerID string) (int, error) {
	now := time.Now().UTC()
	rows := []struct {
		amount   float64
		category string
		desc     string
		daysAgo  int
	}{
		{42.50, "food", "groceries", 14},
		{12.00, "food", "lunch", 7},
		{900.00, "rent", "monthly rent", 5},
		{29.99, "entertainment", "streaming subscription", 3},
		{60.00, "transport", "fuel", 1},
	}

	for _, row := range rows {
		txn := &model.Transaction{
			ID:          ulid.Make().String(),
			OwnerID:     ownerID,
			Amount:      row.amount,
			Category:    row.category,
			Description: row.desc,
			OccurredAt:  now.AddDate(0, 0, -row.daysAgo),
			CreatedAt:   now,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

// randomPassword returns a URL-safe random password.
func randomPassword() (string, error) {
	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
