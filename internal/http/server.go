// Package http serves the JSON API consumed by the dashboard frontend.
package http

import (
	"context"
	"net/http"
	"sync"

	"finpilot/internal/core"
	"finpilot/internal/services"
	"finpilot/internal/storage"
)

// Store is the slice of the repository the handlers need directly.
type Store interface {
	CreateBusiness(ctx context.Context, name string) (storage.Business, error)
	GetBusiness(ctx context.Context, id string) (storage.Business, error)
	ListBusinesses(ctx context.Context) ([]storage.Business, error)
	ListTransactions(ctx context.Context, businessID string) ([]core.TransactionRecord, error)
	CreateTransaction(ctx context.Context, businessID string, rec core.TransactionRecord, paymentMethod string) (string, error)
	DeleteTransaction(ctx context.Context, id string) (int64, error)
}

type Server struct {
	http.Server

	store     Store
	analytics *services.AnalyticsService
	insights  *services.InsightService
	ingest    *services.IngestService

	frontendURL string
	apiToken    string

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr, frontendURL, apiToken string, store Store, analytics *services.AnalyticsService, insights *services.InsightService, ingest *services.IngestService) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		store:       store,
		analytics:   analytics,
		insights:    insights,
		ingest:      ingest,
		frontendURL: frontendURL,
		apiToken:    apiToken,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/businesses", s.api(s.handleCreateBusiness))
	mux.HandleFunc("GET /api/businesses", s.api(s.handleListBusinesses))
	mux.HandleFunc("GET /api/businesses/{id}", s.api(s.handleGetBusiness))

	mux.HandleFunc("GET /api/businesses/{id}/transactions", s.api(s.handleListTransactions))
	mux.HandleFunc("POST /api/businesses/{id}/transactions", s.api(s.handleCreateTransaction))
	mux.HandleFunc("POST /api/businesses/{id}/transactions/upload-csv", s.api(s.handleUploadCSV))
	mux.HandleFunc("POST /api/businesses/{id}/transactions/process-csv-text", s.api(s.handleProcessCSVText))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.api(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/analytics/summary/{businessID}", s.api(s.handleSummary))
	mux.HandleFunc("GET /api/analytics/dashboard/{businessID}", s.api(s.handleDashboard))
	mux.HandleFunc("GET /api/analytics/insights/{businessID}", s.api(s.handleListInsights))
	mux.HandleFunc("POST /api/analytics/insights/{businessID}/refresh", s.api(s.handleRefreshInsights))

	mux.HandleFunc("POST /api/chat", s.api(s.handleChat))

	// Everything else on OPTIONS still needs CORS headers for preflight.
	mux.HandleFunc("OPTIONS /", s.withCORS(func(w http.ResponseWriter, r *http.Request) {}))

	return s
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "finpilot",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
