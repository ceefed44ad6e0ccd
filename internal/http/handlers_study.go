package http

import (
	"net/http"

	"trackboard/internal/core"
)

type studySessionRequest struct {
	Subject         string `json:"subject"`
	DurationMinutes int    `json:"durationMinutes"`
	Date            string `json:"date"`
	Notes           string `json:"notes"`
}

type studyGoalsRequest struct {
	DailyGoalMinutes  int `json:"dailyGoalMinutes"`
	WeeklyGoalMinutes int `json:"weeklyGoalMinutes"`
}

type studySessionResponse struct {
	Session core.StudySession   `json:"session"`
	Goals   core.StudyGoalState `json:"goals"`
}

func (s *Server) handleGetStudy(w http.ResponseWriter, r *http.Request) {
	ov, err := s.dashboard.Study(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ov)
}

func (s *Server) handleLogStudySession(w http.ResponseWriter, r *http.Request) {
	var req studySessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	day, err := optionalDate(req.Date)
	if err != nil {
		respondError(w, r, err)
		return
	}
	session, state, err := s.dashboard.LogStudySession(r.Context(), core.StudySession{
		Subject:         sanitizeInput(req.Subject),
		DurationMinutes: req.DurationMinutes,
		Date:            day,
		Notes:           sanitizeInput(req.Notes),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, studySessionResponse{Session: session, Goals: state})
}

func (s *Server) handleSetStudyGoals(w http.ResponseWriter, r *http.Request) {
	var req studyGoalsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	state, err := s.dashboard.SetStudyGoals(r.Context(), req.DailyGoalMinutes, req.WeeklyGoalMinutes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}
