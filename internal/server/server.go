// package server contains middleware & handlers for the streaming app's REST API
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/repositories"
	"github.com/desertthunder/mixtape/internal/shared"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, CORS, rate limiting, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the streaming service.
// Implementations handle specific endpoint groups (songs, playlists, library, search).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the method-qualified path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Catalog is the slice of the catalog client the API serves pass-through
// queries with.
type Catalog interface {
	Search(ctx context.Context, term string, limit int) []models.Track
	SearchByArtist(ctx context.Context, artist string, limit int) []models.Track
	SearchByGenre(ctx context.Context, genre string, limit int) []models.Track
	Lookup(ctx context.Context, trackID string) *models.Track
}

// Server bundles the router, its handlers and the HTTP listener.
type Server struct {
	cfg     shared.ServerConfig
	handler http.Handler
	logger  *log.Logger
}

// New builds the API server with its full route table and middleware stack.
// CORS and logging wrap the whole router rather than individual handlers so
// preflight requests are answered before route dispatch.
func New(cfg shared.ServerConfig, store *repositories.Store, catalog Catalog, logger *log.Logger) *Server {
	router := NewBasicRouter()

	router.Handler(&SongsHandler{store: store, logger: logger})
	router.Handler(&PlaylistsHandler{store: store, logger: logger})
	router.Handler(&LibraryHandler{store: store, logger: logger})
	router.Handler(&SearchHandler{catalog: catalog, logger: logger})

	router.Handle(http.MethodGet, "/api/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))

	handler := RequestLogger(logger)(CORS()(router))

	return &Server{cfg: cfg, handler: handler, logger: logger}
}

// Handler returns the middleware-wrapped router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
