package http

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"syndicate/internal/auth"
	"syndicate/internal/config"
)

const (
	oauthStateCookieName = "syndicate_oauth_state"
	oauthStateCookieTTL  = 10 * time.Minute
	oauthStateCookiePath = "/api/auth/discord"
)

type discordAuthenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
	FetchIdentity(ctx context.Context, accessToken string) (*auth.Identity, error)
}

// OAuthHandler handles the Discord OAuth login endpoints.
type OAuthHandler struct {
	discord       discordAuthenticator
	siteURL       string
	sessionSecret string
	sessionTTL    time.Duration
	configured    bool
	secureCookie  bool
	logger        *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(discord discordAuthenticator, cfg config.Config, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		discord:       discord,
		siteURL:       cfg.SiteURL,
		sessionSecret: cfg.SessionSecret,
		sessionTTL:    cfg.SessionTTL,
		configured:    cfg.HasDiscordOAuth(),
		secureCookie:  !cfg.IsDevelopment(),
		logger:        logger,
	}
}

// Start handles GET /api/auth/discord
// Sets the anti-CSRF state cookie and redirects to Discord's consent screen.
func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if !h.configured || h.discord == nil {
		writeError(w, http.StatusInternalServerError, "Discord OAuth is not configured")
		return
	}

	state, err := auth.GenerateState()
	if err != nil {
		h.logger.Error("failed to generate state", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	http.SetCookie(w, h.stateCookie(state, oauthStateCookieTTL))
	http.Redirect(w, r, h.discord.AuthURL(state), http.StatusFound)
}

// Callback handles GET /api/auth/discord/callback
// Validates the state cookie, exchanges the code, fetches the Discord
// identity, and redirects back to the site with a freshly minted session
// token in the query string.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if h.siteURL == "" {
		writePlainError(w, http.StatusInternalServerError, "missing SITE_URL configuration")
		return
	}
	if !h.configured || h.discord == nil {
		writePlainError(w, http.StatusInternalServerError, "missing Discord OAuth configuration")
		return
	}
	if h.sessionSecret == "" {
		writePlainError(w, http.StatusInternalServerError, "missing session secret configuration")
		return
	}

	// The state value is single use. Whatever happens next, the cookie is
	// consumed so it cannot be replayed.
	expectedState := ""
	if cookie, err := r.Cookie(oauthStateCookieName); err == nil {
		expectedState = cookie.Value
	}
	http.SetCookie(w, h.clearStateCookie())

	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Warn("oauth callback: provider error", "error", errParam)
		http.Redirect(w, r, h.siteURL+"#login", http.StatusFound)
		return
	}

	code := query.Get("code")
	state := query.Get("state")
	if code == "" || state == "" {
		writePlainError(w, http.StatusBadRequest, "Missing code/state")
		return
	}

	if expectedState == "" || subtle.ConstantTimeCompare([]byte(state), []byte(expectedState)) != 1 {
		h.logger.Warn("oauth callback: state mismatch")
		writePlainError(w, http.StatusBadRequest, "Invalid state")
		return
	}

	accessToken, err := h.discord.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth callback: exchange failed", "error", err)
		writePlainError(w, http.StatusInternalServerError, providerErrorText(err))
		return
	}

	identity, err := h.discord.FetchIdentity(r.Context(), accessToken)
	if err != nil {
		h.logger.Error("oauth callback: identity fetch failed", "error", err)
		writePlainError(w, http.StatusInternalServerError, providerErrorText(err))
		return
	}

	now := time.Now().Unix()
	token, err := auth.SignSession(auth.Claims{
		Subject:    identity.ID,
		ID:         identity.ID,
		Username:   identity.Username,
		GlobalName: identity.GlobalName,
		Avatar:     identity.Avatar,
		IssuedAt:   now,
		ExpiresAt:  now + int64(h.sessionTTL.Seconds()),
	}, h.sessionSecret)
	if err != nil {
		h.logger.Error("oauth callback: signing failed", "error", err)
		writePlainError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	h.logger.Info("oauth login successful", "user_id", identity.ID, "username", identity.Username)

	http.Redirect(w, r, h.dashboardURL(token), http.StatusFound)
}

// dashboardURL builds SITE_URL?session=<token>#dashboard.
func (h *OAuthHandler) dashboardURL(token string) string {
	target, err := url.Parse(h.siteURL)
	if err != nil {
		return h.siteURL + "?session=" + url.QueryEscape(token) + "#dashboard"
	}
	q := target.Query()
	q.Set("session", token)
	target.RawQuery = q.Encode()
	target.Fragment = "dashboard"
	return target.String()
}

func (h *OAuthHandler) stateCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     oauthStateCookieName,
		Value:    value,
		Path:     oauthStateCookiePath,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	}
}

func (h *OAuthHandler) clearStateCookie() *http.Cookie {
	cookie := h.stateCookie("", 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	return cookie
}

// providerErrorText keeps the provider's own error text when there is one,
// falling back to a generic message.
func providerErrorText(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "OAuth failed"
	}
	return msg
}
