package http

import (
	"bytes"
	"net/http"

	"trackboard/internal/core"
	"trackboard/internal/export"
)

type createHabitRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type habitDayRequest struct {
	// Status is "completed", "missed" or "" to clear the day.
	Status core.HabitStatus `json:"status"`
}

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	list, err := s.dashboard.ListHabits(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	h, err := s.dashboard.CreateHabit(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Color))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, h)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.DeleteHabit(r.Context(), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleSetHabitDay(w http.ResponseWriter, r *http.Request) {
	day, err := pathDate(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var req habitDayRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	h, err := s.dashboard.SetHabitStatus(r.Context(), pathID(r), day, req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h)
}

func (s *Server) handleExportHabits(w http.ResponseWriter, r *http.Request) {
	list, err := s.dashboard.ListHabits(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.HabitsCSV(&buf, list); err != nil {
		respondError(w, r, err)
		return
	}
	writeCSV(w, export.Filename("habits", s.dashboard.Today()), buf.Bytes())
}

// writeCSV sends a rendered CSV as a download. Rendering happens before any
// header is written so failures can still be reported as JSON.
func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
