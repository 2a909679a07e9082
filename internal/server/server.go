// Package server provides the local HTTP server for the dashboard UI.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/writingdeveloper/dont-touch/internal/app"
	"github.com/writingdeveloper/dont-touch/internal/config"
	"github.com/writingdeveloper/dont-touch/internal/server/api"
	"github.com/writingdeveloper/dont-touch/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	App       *app.App
	Store     *store.Store
	Settings  *config.Manager
}

// Server is the HTTP server for the detection service. It only reads from
// the pipeline through its snapshot and preview mailboxes, so a slow client
// can never stall frame acquisition.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		if s.config.Settings != nil {
			s.mux.Handle("/api/control", api.NewControlHandler(s.config.App, s.config.Settings))
			s.mux.Handle("/api/control/", api.NewControlHandler(s.config.App, s.config.Settings))
		}

		if rec := s.config.App.Recorder(); rec != nil {
			statsHandler := api.NewStatsHandler(rec, s.config.Store)
			s.mux.Handle("/api/stats", statsHandler)
			s.mux.Handle("/api/stats/", statsHandler)
		}

		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))
		s.mux.Handle("/api/live", NewLiveHandler(s.config.App))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
