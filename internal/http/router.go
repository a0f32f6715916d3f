package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"syndicate/internal/config"
	"syndicate/internal/stats"
)

// NewRouter wires application routes and middleware using chi.
func NewRouter(cfg config.Config, discord discordAuthenticator, statsSvc *stats.Service, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(newRequestIDMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(newSecurityHeadersMiddleware(cfg.Environment))
	r.Use(newSlogMiddleware(logger))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":      "ok",
			"environment": cfg.Environment,
		})
	})

	oauthHandler := NewOAuthHandler(discord, cfg, logger)
	identityHandler := NewIdentityHandler(cfg.SessionSecret, logger)
	statsHandler := NewStatsHandler(statsSvc, logger)

	if !cfg.HasDiscordOAuth() {
		logger.Warn("Discord OAuth credentials missing; login endpoints will report 500")
	}
	if cfg.SessionSecret == "" {
		logger.Warn("session secret missing; token endpoints will report 500")
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/discord", oauthHandler.Start)
			r.Get("/discord/callback", oauthHandler.Callback)
			r.Get("/me", identityHandler.Me)
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/global", statsHandler.Global)
			r.Get("/leaderboard", statsHandler.Leaderboard)
			r.Get("/health", statsHandler.Health)

			r.Group(func(r chi.Router) {
				r.Use(newSessionAuthMiddleware(cfg.SessionSecret, logger))
				r.Get("/user", statsHandler.User)
			})
		})
	})

	r.NotFound(http.NotFoundHandler().ServeHTTP)

	return r
}
