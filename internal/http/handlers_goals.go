package http

import (
	"net/http"

	"github.com/shopspring/decimal"

	"trackboard/internal/core"
	"trackboard/internal/goals"
	"trackboard/internal/services"
)

// Decimal fields accept JSON numbers or strings.
type createGoalRequest struct {
	Title        string            `json:"title"`
	Description  string            `json:"description"`
	TargetValue  decimal.Decimal   `json:"targetValue"`
	CurrentValue decimal.Decimal   `json:"currentValue"`
	Unit         string            `json:"unit"`
	Category     string            `json:"category"`
	TargetDate   *core.Date        `json:"targetDate"`
	Milestones   []decimal.Decimal `json:"milestones"`
}

// Value is a pointer so a missing field is not taken as zero.
type goalProgressRequest struct {
	Value *decimal.Decimal `json:"value"`
}

type goalStatusRequest struct {
	Status core.GoalStatus `json:"status"`
}

type goalProgressResponse struct {
	Goal   services.GoalView `json:"goal"`
	Events []goalEventJSON   `json:"events"`
}

func goalView(g core.Goal) services.GoalView {
	return services.GoalView{Goal: g, Progress: core.Round1(goals.ProgressPercent(g))}
}

type goalEventJSON struct {
	Type      string           `json:"type"`
	Milestone *decimal.Decimal `json:"milestone,omitempty"`
	Percent   float64          `json:"percent,omitempty"`
}

func eventsJSON(events []goals.Event) []goalEventJSON {
	out := make([]goalEventJSON, 0, len(events))
	for _, ev := range events {
		switch e := ev.(type) {
		case goals.Completed:
			out = append(out, goalEventJSON{Type: "completed"})
		case goals.MilestoneReached:
			m := e.Milestone
			out = append(out, goalEventJSON{Type: "milestone", Milestone: &m, Percent: e.Percent})
		}
	}
	return out
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	list, err := s.dashboard.ListGoals(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	g, err := s.dashboard.CreateGoal(r.Context(), core.Goal{
		Title:        sanitizeInput(req.Title),
		Description:  sanitizeInput(req.Description),
		TargetValue:  req.TargetValue,
		CurrentValue: req.CurrentValue,
		Unit:         sanitizeInput(req.Unit),
		Category:     sanitizeInput(req.Category),
		TargetDate:   req.TargetDate,
		Milestones:   req.Milestones,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, goalView(g))
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req goalProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.Value == nil {
		BadRequestError("value is required").Write(w)
		return
	}
	g, events, err := s.dashboard.UpdateGoalProgress(r.Context(), pathID(r), *req.Value)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goalProgressResponse{
		Goal:   goalView(g),
		Events: eventsJSON(events),
	})
}

func (s *Server) handleGoalStatus(w http.ResponseWriter, r *http.Request) {
	var req goalStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	g, err := s.dashboard.SetGoalStatus(r.Context(), pathID(r), req.Status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, goalView(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.DeleteGoal(r.Context(), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}
