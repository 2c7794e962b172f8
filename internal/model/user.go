// Package model defines domain entities for the application.
package model

import "time"

// User represents an account that owns a transaction ledger.
// Users are provisioned out of band (see scripts/bootstrap-user.go) and are
// immutable as far as this service is concerned.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
