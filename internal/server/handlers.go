package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"
)

// handleMessages answers history backfill queries:
// GET /api/messages?before=<RFC3339>&limit=<n>. The result is a
// chronologically ascending page; an empty array means no more history.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := s.cfg.PageLimit
	if v := q.Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	var before time.Time
	if v := q.Get("before"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			http.Error(w, "invalid before timestamp", http.StatusBadRequest)
			return
		}
		before = parsed
	}

	s.writeJSON(w, s.log.Page(before, limit))
}

// handleUsers returns the current roster snapshot.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.registry.List())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("hubbub server is running\n"))
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("encode response")
	}
}
