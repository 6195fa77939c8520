package guildhandlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/parlor-gg/guildboard/app/modules/session"
)

// ServiceTokenHeader authenticates the web collaborator on the session
// exchange endpoint.
const ServiceTokenHeader = "X-Service-Token"

// AuthHandlers issues and revokes dashboard sessions. The login flow itself
// (Discord OAuth) lives in the web collaborator; once it knows who the user
// is, it exchanges the user id for a session cookie here, authenticated by a
// shared service token. With no token configured the endpoint stays disabled.
type AuthHandlers struct {
	sessions     session.Store
	tokens       *session.TokenProvider
	ttl          time.Duration
	serviceToken string
	logger       *slog.Logger
}

// NewAuthHandlers creates the session exchange handlers.
func NewAuthHandlers(sessions session.Store, tokens *session.TokenProvider, ttl time.Duration, serviceToken string, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		sessions:     sessions,
		tokens:       tokens,
		ttl:          ttl,
		serviceToken: serviceToken,
		logger:       logger,
	}
}

func (h *AuthHandlers) callerAuthorized(r *http.Request) bool {
	if h.serviceToken == "" {
		return false
	}
	given := r.Header.Get(ServiceTokenHeader)
	return subtle.ConstantTimeCompare([]byte(given), []byte(h.serviceToken)) == 1
}

// HandleIssueSession exchanges an authenticated user id for a session cookie.
func (h *AuthHandlers) HandleIssueSession(w http.ResponseWriter, r *http.Request) {
	if !h.callerAuthorized(r) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	sess, err := h.sessions.Create(r.Context(), body.UserID, h.ttl)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "create session", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	token, err := h.tokens.Generate(sess)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "sign session token", slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		UserID    string    `json:"userId"`
		ExpiresAt time.Time `json:"expiresAt"`
	}{sess.UserID, sess.ExpiresAt})
}

// HandleRevokeSession logs the caller out: the server-side session is deleted
// and the cookie cleared. Always succeeds; revoking a dead session is a no-op.
func (h *AuthHandlers) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if sid, err := h.tokens.Validate(cookie.Value); err == nil {
			if err := h.sessions.Delete(r.Context(), sid); err != nil {
				h.logger.WarnContext(r.Context(), "delete session", slog.Any("error", err))
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
