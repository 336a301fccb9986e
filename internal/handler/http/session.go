package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/tiwac100/hydrogen/internal/session"
	apperrors "github.com/tiwac100/hydrogen/pkg/errors"
	"github.com/tiwac100/hydrogen/pkg/httputil"
	"github.com/tiwac100/hydrogen/pkg/validator"
)

// SessionHandler turns a customer access token into a signed session cookie.
type SessionHandler struct {
	sessions *session.Manager
	maxTTL   time.Duration
	logger   *slog.Logger
}

// NewSessionHandler creates a session handler. Sessions never outlive maxTTL.
func NewSessionHandler(sessions *session.Manager, maxTTL time.Duration, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		maxTTL:   maxTTL,
		logger:   logger,
	}
}

// CreateSessionRequest is the JSON request body for starting a session.
type CreateSessionRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
	// ExpiresIn is the access token lifetime in seconds; zero means maxTTL.
	ExpiresIn int `json:"expires_in" validate:"gte=0"`
}

// CreateSession handles POST /account/session
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput(err.Error()), h.logger)
		return
	}

	ttl := h.maxTTL
	// Compared in seconds so large values cannot overflow the Duration.
	if req.ExpiresIn > 0 && int64(req.ExpiresIn) < int64(h.maxTTL/time.Second) {
		ttl = time.Duration(req.ExpiresIn) * time.Second
	}

	value, err := h.sessions.Issue(req.AccessToken, ttl)
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), h.logger)
		return
	}

	http.SetCookie(w, h.sessions.Cookie(value, ttl))
	w.WriteHeader(http.StatusNoContent)
}

// DeleteSession handles DELETE /account/session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, h.sessions.ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}
