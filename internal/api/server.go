// Copyright (c) 2026 Crescendo. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/crescendofm/crescendo/internal/account"
	"github.com/crescendofm/crescendo/internal/auth"
	"github.com/crescendofm/crescendo/internal/music"
	"github.com/crescendofm/crescendo/internal/platform/config"
	"github.com/crescendofm/crescendo/internal/platform/constants"
	"github.com/crescendofm/crescendo/internal/platform/middleware"
	"github.com/crescendofm/crescendo/internal/social"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login, token refresh, and password resets.
	Auth *auth.Handler

	// Music handles catalog search, song and album details, and interactions.
	Music *music.Handler

	// Social handles friend requests and the friends list.
	Social *social.Handler

	// Account handles profiles and the personal interaction catalog.
	Account *account.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, blacklist middleware.Blacklist, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		// Catalog search stays reachable for anonymous visitors. A stale
		// or revoked token on these routes is ignored, never rejected.
		api.Group(func(public chi.Router) {
			public.Use(middleware.AuthenticateOptional(verifier, blacklist))
			public.Get("/songs/search", h.Music.SearchSongs)
			public.Get("/albums/search", h.Music.SearchAlbums)
		})

		api.Group(func(authed chi.Router) {
			authed.Use(middleware.Authenticate(verifier, blacklist))
			authed.Mount("/auth", h.Auth.Routes())
			authed.Mount("/songs", h.Music.SongRoutes())
			authed.Mount("/albums", h.Music.AlbumRoutes())
			authed.Mount("/users", h.Account.Routes())
			authed.Mount("/friends", h.Social.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
