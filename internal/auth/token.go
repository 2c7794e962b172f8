package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token verification failures. Handlers map all of these to 401.
var (
	// ErrTokenMalformed indicates the token could not be parsed or its
	// signature did not validate.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrTokenExpired indicates the token's expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenNoSubject indicates the token carries no subject claim.
	ErrTokenNoSubject = errors.New("token has no subject")
)

// DefaultTokenTTL is used when no TTL is configured.
const DefaultTokenTTL = 30 * time.Minute

// TokenService issues and verifies signed, time-bound bearer tokens.
// Tokens are stateless HS256 JWTs carrying a subject claim; there is no
// server-side revocation list, a token dies only by expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService signing with the given secret.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue creates a signed token for the given username.
// The subject claim is the username; expiry is now + the configured TTL.
func (s *TokenService) Issue(username string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a token string and returns its subject.
// Fails with ErrTokenExpired for expired tokens, ErrTokenNoSubject when the
// subject claim is absent, and ErrTokenMalformed for everything else
// (garbage input, wrong signature, unexpected algorithm).
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}

	if !token.Valid {
		return "", ErrTokenMalformed
	}

	if claims.Subject == "" {
		return "", ErrTokenNoSubject
	}

	return claims.Subject, nil
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// SetNow overrides the service clock. Used by tests to control expiry.
func (s *TokenService) SetNow(now func() time.Time) {
	s.now = now
}
