package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"syndicate/internal/stats"
)

// StatsHandler exposes the read-only statistics endpoints.
type StatsHandler struct {
	service *stats.Service
	logger  *slog.Logger
}

// NewStatsHandler creates a handler. A nil service means no statistics
// database was configured; the endpoints then report that instead of data.
func NewStatsHandler(service *stats.Service, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{service: service, logger: logger}
}

// Global handles GET /api/stats/global
func (h *StatsHandler) Global(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, "statistics database is not configured")
		return
	}

	data, err := h.service.GlobalStats(r.Context())
	if err != nil {
		h.logger.Error("global stats", "error", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Leaderboard handles GET /api/stats/leaderboard?type=net_worth&limit=100
func (h *StatsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, "statistics database is not configured")
		return
	}

	kind := strings.TrimSpace(r.URL.Query().Get("type"))

	limit := 0
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		value, err := strconv.Atoi(rawLimit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = value
	}

	rows, err := h.service.Leaderboard(r.Context(), kind, limit)
	if err != nil {
		if errors.Is(err, stats.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("leaderboard", "error", err)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

// User handles GET /api/stats/user
// Requires the session auth middleware; the user id comes from the verified
// token, never from the query string.
func (h *StatsHandler) User(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeError(w, http.StatusInternalServerError, "statistics database is not configured")
		return
	}

	claims := ClaimsFromContext(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	userID := claims.ID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	fallbackUsername := claims.Username
	if fallbackUsername == "" {
		fallbackUsername = claims.GlobalName
	}

	profile, err := h.service.UserStats(r.Context(), userID, fallbackUsername)
	if err != nil {
		h.logger.Error("user stats", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// Health handles GET /api/stats/health
func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"error": "statistics database is not configured",
		})
		return
	}

	if err := h.service.Health(r.Context()); err != nil {
		h.logger.Error("stats health", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"error": "database unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "database": "connected"})
}
