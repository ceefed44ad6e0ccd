package http

import (
	"net/http"

	"trackboard/internal/core"
)

type moodRequest struct {
	Score int    `json:"score"`
	Notes string `json:"notes"`
}

func (s *Server) handleGetMood(w http.ResponseWriter, r *http.Request) {
	ov, err := s.dashboard.Mood(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ov)
}

// handleSetMood replaces the entry for the path date.
func (s *Server) handleSetMood(w http.ResponseWriter, r *http.Request) {
	day, err := pathDate(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req moodRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	m, err := s.dashboard.SetMood(r.Context(), core.MoodEntry{
		Date:  day,
		Score: req.Score,
		Notes: sanitizeInput(req.Notes),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, m)
}
