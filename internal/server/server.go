// Package server provides the HTTP API for the newsletter portal: customer
// and run management plus the three trigger surfaces that feed the completion
// engine (manual start, scheduled jobs, provider webhook).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/iterate-labs/newsletter-portal/internal/db"
	"github.com/iterate-labs/newsletter-portal/internal/newsletter"
	"github.com/iterate-labs/newsletter-portal/internal/research"
)

// Store is the persistence surface the HTTP layer needs: everything the
// completion engine uses plus customer and update management.
type Store interface {
	newsletter.Store

	ListCustomers(ctx context.Context, activeOnly bool) ([]db.Customer, error)
	CreateCustomer(ctx context.Context, input *db.CustomerInput) (*db.Customer, error)
	UpdateCustomer(ctx context.Context, customerID uuid.UUID, input *db.CustomerInput) (*db.Customer, error)
	DeleteCustomer(ctx context.Context, customerID uuid.UUID) error

	ListRunsForCustomer(ctx context.Context, customerID uuid.UUID, limit int) ([]db.Run, error)

	CreateInternalUpdate(ctx context.Context, title, body, sourceURL string, active bool) (*db.InternalUpdate, error)
}

// Config holds server configuration
type Config struct {
	Port       int
	CronSecret string
	Sweep      newsletter.SweepConfig
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      Store
	engine     *newsletter.Engine
	research   research.Client
	cronSecret string
	sweep      newsletter.SweepConfig
}

// New creates a new server instance
func New(cfg Config, store Store, engine *newsletter.Engine, researchClient research.Client) *Server {
	s := &Server{
		store:      store,
		engine:     engine,
		research:   researchClient,
		cronSecret: cfg.CronSecret,
		sweep:      cfg.Sweep,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Customer management
	mux.HandleFunc("GET /customers", s.handleListCustomers)
	mux.HandleFunc("POST /customers", s.handleCreateCustomer)
	mux.HandleFunc("GET /customers/{id}", s.handleGetCustomer)
	mux.HandleFunc("PUT /customers/{id}", s.handleUpdateCustomer)
	mux.HandleFunc("DELETE /customers/{id}", s.handleDeleteCustomer)

	// Runs
	mux.HandleFunc("POST /customers/{id}/run", s.handleStartRun)
	mux.HandleFunc("GET /customers/{id}/runs", s.handleListCustomerRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)

	// Internal update snippets
	mux.HandleFunc("GET /updates", s.handleListUpdates)
	mux.HandleFunc("POST /updates", s.handleCreateUpdate)

	// Scheduled jobs (cron secret protected)
	mux.HandleFunc("POST /jobs/run-newsletters", s.handleRunNewsletters)
	mux.HandleFunc("POST /jobs/poll-research", s.handlePollResearch)

	// Provider webhook
	mux.HandleFunc("POST /webhooks/research", s.handleResearchWebhook)
	mux.HandleFunc("GET /webhooks/research", s.handleWebhookHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // sweeps may synthesize several newsletters
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// authorizedCron checks the shared-secret header protecting the job endpoints.
func (s *Server) authorizedCron(r *http.Request) bool {
	return s.cronSecret != "" && r.Header.Get("Authorization") == "Bearer "+s.cronSecret
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
