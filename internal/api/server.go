// Package api serves the REST API over the finance entities.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vietddude/fintrack/internal/health"
	"github.com/vietddude/fintrack/internal/infra/storage"
)

// Router wraps a configured Gin engine and exposes it as an http.Handler.
type Router struct {
	engine *gin.Engine
}

// NewRouter registers the API and health routes on a fresh engine.
// monitor may be nil when no health endpoints are wanted.
func NewRouter(store *storage.Store, monitor *health.Monitor) *Router {
	engine := gin.New()
	engine.RedirectTrailingSlash = false

	engine.Use(Recovery(slog.Default()))
	engine.Use(RequestID())
	engine.Use(Metrics())
	engine.Use(RequestLogger(slog.Default()))

	h := NewHandler(store)

	api := engine.Group("/api")
	h.registerStatuses(api.Group("/statuses"))
	h.registerTypes(api.Group("/types"))
	h.registerCategories(api.Group("/categories"))
	h.registerTransactions(api.Group("/transactions"))

	if monitor != nil {
		health.RegisterRoutes(engine, monitor)
	}

	return &Router{engine: engine}
}

// Handler returns the engine, accepting paths with a trailing slash as the
// web client sends them.
func (r *Router) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if p := req.URL.Path; len(p) > 1 && strings.HasSuffix(p, "/") {
			req.URL.Path = strings.TrimRight(p, "/")
		}
		r.engine.ServeHTTP(w, req)
	})
}

// Server hosts the API and health endpoints.
type Server struct {
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(router *Router, port int) *Server {
	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           router.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
