package http

import (
	"net/http"
	"time"

	"trackboard/internal/core"
)

// Deadline is RFC 3339. Status and priority default to not-started and medium.
type createAssignmentRequest struct {
	Title    string                `json:"title"`
	Subject  string                `json:"subject"`
	Deadline time.Time             `json:"deadline"`
	Priority core.Priority         `json:"priority"`
	Status   core.AssignmentStatus `json:"status"`
	Notes    string                `json:"notes"`
}

type assignmentStatusRequest struct {
	Status core.AssignmentStatus `json:"status"`
}

func (s *Server) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	list, err := s.dashboard.ListAssignments(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req createAssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := s.dashboard.AddAssignment(r.Context(), core.Assignment{
		Title:    sanitizeInput(req.Title),
		Subject:  sanitizeInput(req.Subject),
		Deadline: req.Deadline,
		Priority: req.Priority,
		Status:   req.Status,
		Notes:    sanitizeInput(req.Notes),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, a)
}

func (s *Server) handleAssignmentStatus(w http.ResponseWriter, r *http.Request) {
	var req assignmentStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	a, err := s.dashboard.SetAssignmentStatus(r.Context(), pathID(r), req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.DeleteAssignment(r.Context(), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
