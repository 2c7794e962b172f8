package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/metrics"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/repository"
)

type fakeResolver struct {
	users map[string]*model.User
}

func (f *fakeResolver) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakePrincipalCache struct {
	entries map[string]*model.AuthContext
	sets    int
}

func (f *fakePrincipalCache) GetPrincipal(_ context.Context, key string) (*model.AuthContext, error) {
	return f.entries[key], nil
}

func (f *fakePrincipalCache) SetPrincipal(_ context.Context, key string, authCtx *model.AuthContext) error {
	f.entries[key] = authCtx
	f.sets++
	return nil
}

func newAuthTestConfig(t *testing.T) (AuthConfig, *auth.TokenService, *metrics.InMemoryRecorder, *fakePrincipalCache) {
	t.Helper()

	tokens := auth.NewTokenService("middleware-test-secret", 30*time.Minute)
	recorder := metrics.NewInMemory()
	cache := &fakePrincipalCache{entries: make(map[string]*model.AuthContext)}

	cfg := AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: tokens,
		Users: &fakeResolver{users: map[string]*model.User{
			"alice": {ID: "user-alice", Username: "alice"},
		}},
		Cache:   cache,
		Metrics: recorder,
	}
	return cfg, tokens, recorder, cache
}

func authedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authCtx := auth.AuthFromContext(r.Context())
		if authCtx == nil {
			t.Error("expected auth context in request")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("X-User-ID", authCtx.UserID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	cfg, tokens, _, cache := newAuthTestConfig(t)
	handler := Auth(cfg)(authedEcho(t))

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("X-User-ID"); got != "user-alice" {
		t.Errorf("user ID = %q, want %q", got, "user-alice")
	}
	if cache.sets != 1 {
		t.Errorf("cache sets = %d, want 1", cache.sets)
	}
}

func TestAuth_MissingToken(t *testing.T) {
	cfg, _, _, _ := newAuthTestConfig(t)
	handler := Auth(cfg)(authedEcho(t))

	for _, header := range []string{"", "Basic dXNlcjpwYXNz", "Bearertoken"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want %d", header, rec.Code, http.StatusUnauthorized)
		}
		if got := rec.Header().Get("WWW-Authenticate"); got != "Bearer" {
			t.Errorf("header %q: WWW-Authenticate = %q, want %q", header, got, "Bearer")
		}
	}
}

func TestAuth_MalformedToken(t *testing.T) {
	cfg, _, _, _ := newAuthTestConfig(t)
	handler := Auth(cfg)(authedEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	cfg, _, _, _ := newAuthTestConfig(t)

	// Issue with a service whose clock is in the past, verify with the
	// middleware's service at the current time.
	expired := auth.NewTokenService("middleware-test-secret", time.Minute)
	expired.SetNow(func() time.Time { return time.Now().Add(-time.Hour) })
	token, err := expired.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	handler := Auth(cfg)(authedEcho(t))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_UnknownSubject(t *testing.T) {
	cfg, tokens, _, _ := newAuthTestConfig(t)
	handler := Auth(cfg)(authedEcho(t))

	token, err := tokens.Issue("ghost")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuth_PrincipalCacheHit(t *testing.T) {
	cfg, tokens, recorder, _ := newAuthTestConfig(t)
	handler := Auth(cfg)(authedEcho(t))

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i, rec.Code, http.StatusOK)
		}
	}

	snap := recorder.Snapshot()
	if snap.AuthCacheMisses != 1 {
		t.Errorf("cache misses = %d, want 1", snap.AuthCacheMisses)
	}
	if snap.AuthCacheHits != 2 {
		t.Errorf("cache hits = %d, want 2", snap.AuthCacheHits)
	}
}

func TestAuth_NoCacheConfigured(t *testing.T) {
	cfg, tokens, _, _ := newAuthTestConfig(t)
	cfg.Cache = nil
	handler := Auth(cfg)(authedEcho(t))

	token, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
