package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/spendlens/spendlens/internal/auth"
	"github.com/spendlens/spendlens/internal/handler/dto"
	"github.com/spendlens/spendlens/internal/service"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Login handles POST /api/v1/login.
// Accepts credentials as JSON or as a url-encoded form so both API clients
// and browser form posts work against the same endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := parseCredentials(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, "MISSING_CREDENTIALS", "Username and password are required")
		return
	}

	token, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			// Same message regardless of which check failed.
			writeError(w, http.StatusUnauthorized, "BAD_CREDENTIALS", "Incorrect username or password")
			return
		}
		h.logger.Error("login_failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	h.logger.Info("login_succeeded", "username", username)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.svc.TokenTTL().Seconds()),
	})
}

// Me handles GET /api/v1/users/me.
// Requires auth middleware upstream.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.AuthFromContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Could not validate credentials")
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), authCtx)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// parseCredentials extracts a username/password pair from the request body.
// Content type decides the decoding; an unparseable body returns ok=false.
func parseCredentials(r *http.Request) (username, password string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return "", "", false
		}
		return r.PostFormValue("username"), r.PostFormValue("password"), true
	case "multipart/form-data":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return "", "", false
		}
		return r.PostFormValue("username"), r.PostFormValue("password"), true
	default:
		var req dto.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", false
		}
		return req.Username, req.Password, true
	}
}
