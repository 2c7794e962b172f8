// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/metrics"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/repository"
)

// ErrBadCredentials is returned for every login failure.
// Unknown username and wrong password are deliberately indistinguishable so
// callers cannot enumerate accounts.
var ErrBadCredentials = errors.New("incorrect username or password")

// UserStore is the subset of the repository the auth service needs.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// dummyHash is a throwaway argon2id hash verified when the username does not
// exist, so both failure paths cost roughly the same amount of work.
const dummyHash = "$argon2id$v=19$m=65536,t=3,p=4$c3BlbmRsZW5zLWR1bW15$m0Ckr6ZK0GLbnhhVYnGh3cRaZRzbdbzPZQZkamQqj+k"

// AuthService verifies credentials and issues bearer tokens.
type AuthService struct {
	users   UserStore
	tokens  *auth.TokenService
	metrics metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens *auth.TokenService, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:   users,
		tokens:  tokens,
		metrics: recorder,
	}
}

// Login verifies the username/password pair and returns a signed access token.
// Both unknown-user and wrong-password failures surface as ErrBadCredentials;
// store failures are wrapped and surface as 500 at the boundary.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn the same verification work as the found-user path.
			_, _ = auth.VerifyPassword(password, dummyHash)
			s.metrics.IncLoginFailure()
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		s.metrics.IncLoginFailure()
		return "", ErrBadCredentials
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()
	return token, nil
}

// TokenTTL returns the lifetime of tokens this service issues.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// CurrentUser returns the full profile of the authenticated principal.
func (s *AuthService) CurrentUser(ctx context.Context, authCtx *model.AuthContext) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, authCtx.Username)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
