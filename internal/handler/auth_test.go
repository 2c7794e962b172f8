package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/handler/dto"
	"github.com/spendlens/spendlens/internal/model"
	"github.com/spendlens/spendlens/internal/service"
	"github.com/spendlens/spendlens/internal/testutil"
)

func newAuthHandler(t *testing.T) (*AuthHandler, *auth.TokenService) {
	t.Helper()

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	store := testutil.NewMemStore()
	store.AddUser(&model.User{
		ID:           "user-alice",
		Username:     "alice",
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	})

	tokens := auth.NewTokenService("handler-test-secret", 30*time.Minute)
	svc := service.NewAuthService(store, tokens, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthHandler(svc, logger), tokens
}

func TestAuthHandler_Login_JSON(t *testing.T) {
	h, tokens := newAuthHandler(t)

	body := `{"username":"alice","password":"correct horse"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.TokenType != "bearer" {
		t.Errorf("token_type = %q, want %q", resp.TokenType, "bearer")
	}
	if resp.ExpiresIn != int64((30 * time.Minute).Seconds()) {
		t.Errorf("expires_in = %d, want %d", resp.ExpiresIn, 1800)
	}

	subject, err := tokens.Verify(resp.AccessToken)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if subject != "alice" {
		t.Errorf("token subject = %q, want %q", subject, "alice")
	}
}

func TestAuthHandler_Login_Form(t *testing.T) {
	h, _ := newAuthHandler(t)

	form := url.Values{}
	form.Set("username", "alice")
	form.Set("password", "correct horse")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h, _ := newAuthHandler(t)

	// Unknown user and wrong password must produce identical responses.
	bodies := []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"nobody","password":"whatever"}`,
	}

	var responses []string
	for _, body := range bodies {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("body %s: expected status 401, got %d", body, rec.Code)
		}
		responses = append(responses, rec.Body.String())
	}

	if responses[0] != responses[1] {
		t.Errorf("failure responses differ: %q vs %q", responses[0], responses[1])
	}
}

func TestAuthHandler_Login_MissingCredentials(t *testing.T) {
	h, _ := newAuthHandler(t)

	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"x"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		h.Login(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected status 400, got %d", body, rec.Code)
		}
	}
}

func TestAuthHandler_Login_InvalidBody(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.Login(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	ctx := auth.ContextWithAuth(req.Context(), &model.AuthContext{
		UserID:   "user-alice",
		Username: "alice",
	})
	rec := httptest.NewRecorder()

	h.Me(rec, req.WithContext(ctx))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.UserResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.ID != "user-alice" || resp.Username != "alice" {
		t.Errorf("unexpected user: %+v", resp)
	}
}

func TestAuthHandler_Me_NoAuthContext(t *testing.T) {
	h, _ := newAuthHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	rec := httptest.NewRecorder()

	h.Me(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
