package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"connectivity-monitor/internal/models"
)

const (
	defaultDowntimeLimit = 50
	maxDowntimeLimit     = 1000
)

// handleStatus handles /api/status requests
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.status.Status())
}

// handleDowntimes handles /api/downtimes requests
func (s *Server) handleDowntimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultDowntimeLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(parsed, maxDowntimeLimit)
	}

	downtimes, err := s.store.GetDowntimes(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if downtimes == nil {
		downtimes = []models.Downtime{}
	}

	writeJSON(w, downtimes)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
