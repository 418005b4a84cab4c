// Package api exposes the bootstrap analyses over HTTP as a small JSON
// API: one endpoint per analysis kind plus method discovery and run
// history.
package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bootstat/app"
	"bootstat/internal"
)

// Server wraps the HTTP surface around the bootstrap service
type Server struct {
	router  *chi.Mux
	service *app.BootstrapService
	logger  *internal.Logger
	port    string
}

// NewServer creates the API server on the given port
func NewServer(service *app.BootstrapService, port string) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  internal.DefaultLogger.Component("API"),
		port:    port,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures HTTP middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/analyses/correlation", s.handleCorrelation)
		r.Post("/analyses/difference", s.handleDifference)
		r.Post("/analyses/file", s.handleFileAnalysis)
		r.Get("/methods", s.handleMethods)
		r.Get("/runs", s.handleRuns)
		r.Get("/runs/{id}", s.handleRunByID)
	})
}

// Router exposes the handler, mainly for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP until the listener fails
func (s *Server) Start() error {
	log.Printf("Starting bootstat API server on :%s", s.port)
	return http.ListenAndServe(":"+s.port, s.router)
}
