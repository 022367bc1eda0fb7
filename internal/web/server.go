package web

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"connectivity-monitor/internal/models"
)

// StatusSource reports the current downtime state
type StatusSource interface {
	Status() models.Status
}

// DowntimeStore lists recorded downtimes
type DowntimeStore interface {
	GetDowntimes(limit int) ([]models.Downtime, error)
}

// Server handles web requests
type Server struct {
	status StatusSource
	store  DowntimeStore
	hub    *Hub
	srv    *http.Server
}

// New creates a new web server listening on addr
func New(addr string, status StatusSource, store DowntimeStore) *Server {
	s := &Server{
		status: status,
		store:  store,
		hub:    NewHub(),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Hub returns the event stream hub, to be registered as a result observer
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// API endpoints
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/downtimes", s.handleDowntimes)
	mux.HandleFunc("/api/stream", s.hub.ServeHTTP)

	return mux
}

// Start starts the web server and blocks until it is shut down
func (s *Server) Start() error {
	log.Printf("Web server starting on %s", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and disconnects stream clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}
