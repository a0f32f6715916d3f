package http

import (
	"log/slog"
	"net/http"

	"syndicate/internal/auth"
)

// IdentityHandler serves the dashboard's "who am I" endpoint.
type IdentityHandler struct {
	sessionSecret string
	logger        *slog.Logger
}

// NewIdentityHandler creates a new IdentityHandler.
func NewIdentityHandler(sessionSecret string, logger *slog.Logger) *IdentityHandler {
	return &IdentityHandler{sessionSecret: sessionSecret, logger: logger}
}

// Me handles GET /api/auth/me
// Verifies the bearer session token and returns the Discord identity it
// carries. Verification failures all read the same to the client; the log
// line tells missing, invalid, and expired tokens apart.
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.sessionSecret == "" {
		writeError(w, http.StatusInternalServerError, "session secret is not configured")
		return
	}

	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	claims, err := auth.VerifySession(token, h.sessionSecret)
	if err != nil {
		h.logger.Warn("identity check failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	id := claims.ID
	if id == "" {
		id = claims.Subject
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":          id,
		"username":    claims.Username,
		"global_name": claims.GlobalName,
		"avatar":      claims.Avatar,
		"exp":         claims.ExpiresAt,
	})
}
