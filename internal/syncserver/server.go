// Package syncserver is the authenticated HTTP + WebSocket surface that
// lets a companion UI (or another machine on a trusted overlay network)
// browse diffs and synchronize review state: Echo app assembly, a single
// long-lived *echo.Echo, middleware.Recover()+middleware.CORS(), and a
// goroutine-wrapped Start() with signal-driven graceful shutdown.
package syncserver

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/reviewstation/engine/internal/classifier"
	"github.com/reviewstation/engine/internal/companion"
	"github.com/reviewstation/engine/internal/reviewstore"
	"github.com/reviewstation/engine/internal/vcs"
	"github.com/reviewstation/engine/internal/watcher"
)

// VCSFactory opens a VCS backend for a repo path, on demand, per request.
// A factory rather than a fixed map lets the server serve any repo a
// client names without a separate "add repo" step.
type VCSFactory func(ctx context.Context, repoPath string) (vcs.VCS, error)

// Server is the sync server's process-wide state (spec.md §3 "Server
// State"): the echo app, the auth token, the connected-client map, and the
// per-subscriber event fan-out.
type Server struct {
	echo   *echo.Echo
	port   int
	token  string
	store  *reviewstore.Store
	newVCS VCSFactory

	watchers     *watcher.Registry
	baseTaxonomy *classifier.Taxonomy
	companion    *companion.Reader

	log zerolog.Logger

	clientsMu sync.RWMutex
	clients   map[string]*client

	subsMu sync.RWMutex
	subs   map[string]chan ServerEvent
}

// Config bundles NewServer's dependencies.
type Config struct {
	Port         int
	Token        string
	Store        *reviewstore.Store
	NewVCS       VCSFactory
	Watchers     *watcher.Registry
	BaseTaxonomy *classifier.Taxonomy
	Companion    *companion.Reader
	Log          zerolog.Logger
}

// NewServer builds a Server and wires its route table. It does not start
// listening; call Start for that.
func NewServer(cfg Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	comp := cfg.Companion
	if comp == nil {
		comp = companion.NewReader()
	}

	s := &Server{
		echo:         e,
		port:         cfg.Port,
		token:        cfg.Token,
		store:        cfg.Store,
		newVCS:       cfg.NewVCS,
		watchers:     cfg.Watchers,
		baseTaxonomy: cfg.BaseTaxonomy,
		companion:    comp,
		log:          cfg.Log,
		clients:      make(map[string]*client),
		subs:         make(map[string]chan ServerEvent),
	}

	s.setupRoutes()
	return s
}

// authMiddleware enforces the bearer-token scheme spec.md §4.7 mandates
// for every endpoint except /api/health. Token comparison is
// constant-time: the token is the engine's only authz primitive.
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		given := strings.TrimPrefix(header, prefix)
		if subtle.ConstantTimeCompare([]byte(given), []byte(s.token)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token")
		}
		return next(c)
	}
}

func (s *Server) setupRoutes() {
	s.echo.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// The WebSocket endpoint authenticates itself off the Sec-WebSocket-
	// Protocol header (browsers can't set Authorization on an upgrade
	// request), so it sits outside the bearer-auth group.
	s.echo.GET("/api/events", s.handleEvents)

	api := s.echo.Group("/api")
	api.Use(s.authMiddleware)

	api.GET("/repos", s.listRepos)
	api.GET("/repos/:id", s.getRepo)
	api.GET("/comparisons/:repo_id", s.listComparisons)

	api.GET("/state/:repo_id/:comparison_key", s.getState)
	api.PATCH("/state/:repo_id/:comparison_key", s.patchState)

	api.GET("/diff/:repo_id/:comparison_key", s.getDiffTree)
	api.GET("/diff/:repo_id/:comparison_key/*", s.getDiffFile)

	api.GET("/taxonomy", s.getTaxonomy)
	api.GET("/taxonomy/:repo_id", s.getTaxonomy)

	api.GET("/server/info", s.serverInfo)
	api.GET("/server/clients", s.serverClients)

	api.GET("/companion/activity/:repo_id", s.companionActivity)
	api.GET("/companion/messages/:repo_id", s.companionMessages)
	api.GET("/companion/chains/:repo_id", s.companionChains)
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// goroutine-wrapped echo.Start, a signal.Notify wait, and a
// bounded-timeout Shutdown.
func (s *Server) Start(ctx context.Context) error {
	bindAddress := fmt.Sprintf("0.0.0.0:%d", s.port)

	go func() {
		if err := s.echo.Start(bindAddress); err != nil && err != http.ErrServerClosed {
			s.log.Error().Err(err).Msg("sync server stopped")
		}
	}()
	s.log.Info().Str("addr", bindAddress).Msg("sync server listening")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

// Shutdown stops the server immediately, for callers (such as tests) that
// already hold a context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler, for tests driving the
// server via httptest without binding a real port.
func (s *Server) Handler() http.Handler {
	return s.echo
}
