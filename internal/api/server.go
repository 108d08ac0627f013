// Package api provides the HTTP API server and handlers for the ShelfWatch server.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/shelfwatch/shelfwatch-server/internal/http/response"
	"github.com/shelfwatch/shelfwatch-server/internal/service"
	"github.com/shelfwatch/shelfwatch-server/internal/sse"
	"github.com/shelfwatch/shelfwatch-server/internal/validation"
)

const apiVersion = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	ingestService *service.IngestService
	bookService   *service.BookService
	sseHandler    *sse.Handler
	validator     *validation.Validator
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	ingestService *service.IngestService,
	bookService *service.BookService,
	sseHandler *sse.Handler,
	validator *validation.Validator,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()

	humaConfig := huma.DefaultConfig("ShelfWatch API", apiVersion)
	humaConfig.DocsPath = "/api/v1/docs"

	s := &Server{
		ingestService: ingestService,
		bookService:   bookService,
		sseHandler:    sseHandler,
		validator:     validator,
		router:        router,
		logger:        logger,
	}

	s.setupMiddleware()

	// The huma adapter must wrap the router after the middleware stack is
	// in place so typed operations share it with the plain chi handlers.
	RegisterErrorHandler()
	s.api = humachi.New(router, humaConfig)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Username"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// Typed operations (huma) register their own /api/v1 paths.
	s.registerProgressRoutes()
	s.registerPreferenceRoutes()

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Event stream; username scoping comes from the X-Username header
		// inside the handler, so an anonymous listener still gets heartbeats.
		r.Get("/events", s.sseHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(s.requireUser)

			r.Route("/books", func(r chi.Router) {
				r.Post("/ingest", s.handleIngest)
				r.Get("/", s.handleListBooks)
				r.Get("/summary", s.handleBranchSummary)
				r.Delete("/{bid}", s.handleUntrack)
			})

			r.Get("/status", s.handleStatus)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
