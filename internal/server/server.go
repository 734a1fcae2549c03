// Package server provides the HTTP REST API for the skill matcher.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonathan/resume-matcher/internal/catalog"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/server/ratelimit"
	"github.com/jonathan/resume-matcher/internal/store"
	"github.com/jonathan/resume-matcher/internal/textnorm"
)

// Server represents the HTTP server and its collaborators.
type Server struct {
	httpServer  *http.Server
	cfg         *config.Config
	catalog     *catalog.Catalog
	norm        *textnorm.Normalizer
	sessions    store.Store
	history     *db.DB
	tokens      *TokenService
	suggester   *llm.Client
	hub         *progressHub
	rateLimiter *ratelimit.Limiter
}

// New creates a server instance: loads the catalog, builds the session
// store and wires the optional integrations. A missing history database
// or suggestion backend degrades with a warning; a missing catalog is
// fatal.
func New(cfg *config.Config) (*Server, error) {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}
	for _, warning := range cat.Warnings() {
		log.Printf("Catalog warning: %s", warning)
	}
	observability.CatalogSkills.Set(float64(cat.Len()))

	norm, err := textnorm.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create normalizer: %w", err)
	}

	sessions, err := newSessionStore(cfg)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:         cfg,
		catalog:     cat,
		norm:        norm,
		sessions:    sessions,
		hub:         newProgressHub(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	if cfg.DatabaseURL != "" {
		history, err := db.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: batch history disabled, database unavailable: %v", err)
		} else {
			s.history = history
		}
	}

	if cfg.JWTSecret != "" {
		s.tokens = NewTokenService(cfg.JWTSecret)
	}

	if cfg.GeminiAPIKey != "" {
		suggester, err := llm.NewClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("Warning: suggestions disabled: %v", err)
		} else {
			s.suggester = suggester
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /match", s.handleMatch)
	mux.HandleFunc("GET /results/{id}", s.handleResults)
	mux.HandleFunc("GET /report/{id}", s.handleReport)
	mux.HandleFunc("POST /suggestions/{id}", s.handleSuggestions)
	mux.HandleFunc("GET /ws/progress/{id}", s.handleProgress)
	mux.HandleFunc("GET /batches", s.handleListBatches)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withAPIKey(s.withLogging(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // uploads plus a full batch run
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogJSON != "" {
		return catalog.LoadJSONFile(cfg.CatalogJSON)
	}
	return catalog.LoadDir(cfg.CatalogDir)
}

func newSessionStore(cfg *config.Config) (store.Store, error) {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if cfg.SessionStore == "sqlite" {
		st, err := store.NewSQLite(cfg.SQLitePath, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to open session store: %w", err)
		}
		return st, nil
	}
	return store.NewMemory(ttl), nil
}

// Start begins listening and blocks until an interrupt or termination
// signal arrives, then shuts down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s (catalog: %d skills)", s.httpServer.Addr, s.catalog.Len())
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

	s.rateLimiter.Stop()
	if err := s.sessions.Close(); err != nil {
		log.Printf("Warning: session store close failed: %v", err)
	}
	if s.history != nil {
		s.history.Close()
	}
	if s.suggester != nil {
		_ = s.suggester.Close()
	}

	log.Println("Server stopped")
	return nil
}

// jsonResponse writes a JSON body with the given status code.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// errorResponse writes a JSON error body.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// clientID extracts a client identifier for rate limiting, preferring
// the first X-Forwarded-For hop.
func clientID(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
