package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/metrics"
	"github.com/spendlens/spendlens/internal/model"
)

// UserResolver resolves a verified token subject to a user record.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// PrincipalCache caches resolved principals between requests.
type PrincipalCache interface {
	GetPrincipal(ctx context.Context, cacheKey string) (*model.AuthContext, error)
	SetPrincipal(ctx context.Context, cacheKey string, authCtx *model.AuthContext) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Tokens  *auth.TokenService
	Users   UserResolver
	Cache   PrincipalCache // optional
	Metrics metrics.Recorder
}

// Auth returns a middleware that authenticates requests via bearer token.
// It extracts the token from the Authorization header, verifies signature and
// expiry, resolves the subject to a user, and injects the auth context into
// the request. Token verification is pure computation; only the subject
// lookup touches the store, and a short-lived cache absorbs most of those.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			username, err := cfg.Tokens.Verify(token)
			if err != nil {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", tokenFailureReason(err)),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache before hitting the store.
			cacheKey := auth.QuickHash(username)
			var authCtx *model.AuthContext
			if cfg.Cache != nil {
				authCtx, _ = cfg.Cache.GetPrincipal(r.Context(), cacheKey)
			}

			if authCtx != nil {
				recorder.IncAuthCacheHit()
			} else {
				recorder.IncAuthCacheMiss()

				user, err := cfg.Users.GetUserByUsername(r.Context(), username)
				if err != nil {
					// Unknown subject and store errors both surface as 401;
					// the store error is additionally logged.
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "unknown_subject"),
						slog.String("error", err.Error()),
						slog.String("ip", r.RemoteAddr),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}

				authCtx = &model.AuthContext{
					UserID:   user.ID,
					Username: user.Username,
				}

				if cfg.Cache != nil {
					_ = cfg.Cache.SetPrincipal(r.Context(), cacheKey, authCtx)
				}
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// tokenFailureReason maps token verification errors to log labels.
func tokenFailureReason(err error) string {
	switch err {
	case auth.ErrTokenExpired:
		return "token_expired"
	case auth.ErrTokenNoSubject:
		return "token_no_subject"
	default:
		return "token_malformed"
	}
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration, and
// carries the WWW-Authenticate hint for bearer-token clients.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Could not validate credentials","code":"UNAUTHORIZED"}`))
}
