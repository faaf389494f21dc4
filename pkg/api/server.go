// Package api serves the analysis service over HTTP: artifact upload,
// derived diagram and cross-reference retrieval, diagnostics, GraphQL and
// prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ladderflow/ladderflow/pkg/analysis"
	"github.com/ladderflow/ladderflow/pkg/config"
	"github.com/ladderflow/ladderflow/pkg/events"
	"github.com/ladderflow/ladderflow/pkg/graphql"
	"github.com/ladderflow/ladderflow/pkg/logging"
	"github.com/ladderflow/ladderflow/pkg/metrics"
	"github.com/ladderflow/ladderflow/pkg/snapshot"
)

// Version reported by the health endpoint
const Version = "1.0.0"

// Server represents the HTTP API server
type Server struct {
	cfg             *config.Config
	analyzer        *analysis.Analyzer
	store           *analysis.Store
	snapshots       *snapshot.Store
	publisher       *events.Publisher
	graphqlHandler  *graphql.GraphQLHandler
	metricsRegistry *metrics.Registry
	logger          logging.Logger
	startTime       time.Time
	httpServer      *http.Server
}

// Options carries the optional collaborators of a Server. Snapshots and
// Publisher may be nil.
type Options struct {
	Snapshots *snapshot.Store
	Publisher *events.Publisher
	Registry  *metrics.Registry
	Logger    logging.Logger
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, analyzer *analysis.Analyzer, store *analysis.Store, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	registry := opts.Registry
	if registry == nil {
		registry = metrics.NewRegistry()
	}

	schema, err := graphql.GenerateSchema(store)
	if err != nil {
		return nil, fmt.Errorf("generating graphql schema: %w", err)
	}

	return &Server{
		cfg:             cfg,
		analyzer:        analyzer,
		store:           store,
		snapshots:       opts.Snapshots,
		publisher:       opts.Publisher,
		graphqlHandler:  graphql.NewGraphQLHandler(schema),
		metricsRegistry: registry,
		logger:          logger,
		startTime:       time.Now(),
	}, nil
}

// Router builds the HTTP handler with the full middleware chain
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/analyses", s.handleAnalyses)
	mux.HandleFunc("/analyses/", s.handleAnalysis) // /analyses/{id}/...

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(
		s.metricsRegistry.GetPrometheusRegistry(),
		promhttp.HandlerOpts{}))
	mux.HandleFunc("/graphql", s.handleGraphQL)

	handler := s.bodySizeLimitMiddleware(mux, s.cfg.Server.MaxUploadBytes)
	handler = s.metricsMiddleware(handler)
	handler = s.loggingMiddleware(handler)
	handler = s.corsMiddleware(handler)
	handler = s.panicRecoveryMiddleware(handler)
	return handler
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.logger.Info("API server starting",
		logging.Component("api"),
		logging.String("addr", addr))

	go s.updateMetricsPeriodically()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("API server shutting down", logging.Component("api"))
	return s.httpServer.Shutdown(ctx)
}

// Helper methods

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Error encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}
