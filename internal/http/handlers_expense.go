package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"trackboard/internal/core"
	"trackboard/internal/export"
)

// createExpenseRequest takes the amount as a decimal string ("12.34" or
// "12,34") so no precision is lost on the way in.
type createExpenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// budgetRequest limits are decimal strings; empty means zero (no limit).
type budgetRequest struct {
	PeriodKey          string `json:"periodKey"`
	MonthlyLimit       string `json:"monthlyLimit"`
	WeeklyLimit        string `json:"weeklyLimit"`
	MonthlySavingsGoal string `json:"monthlySavingsGoal"`
}

func (req createExpenseRequest) expense() (core.Expense, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	category, err := core.ParseExpenseCategory(req.Category)
	if err != nil {
		return core.Expense{}, err
	}
	day, err := optionalDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Description: sanitizeInput(req.Description),
		Amount:      amount,
		Category:    category,
		Date:        day,
	}, nil
}

func (req budgetRequest) budget() (core.Budget, error) {
	b := core.Budget{PeriodKey: strings.TrimSpace(req.PeriodKey)}
	fields := []struct {
		name string
		raw  string
		dst  *core.Money
	}{
		{"monthlyLimit", req.MonthlyLimit, &b.MonthlyLimit},
		{"weeklyLimit", req.WeeklyLimit, &b.WeeklyLimit},
		{"monthlySavingsGoal", req.MonthlySavingsGoal, &b.MonthlySavingsGoal},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		m, err := parseAmount(f.raw)
		if err != nil {
			return core.Budget{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = m
	}
	return b, nil
}

// handleListExpenses serves all expenses, or one month with ?month=YYYY-MM.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := s.dashboard.ListExpenses(r.Context(), month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	e, err := req.expense()
	if err != nil {
		respondError(w, r, err)
		return
	}
	created, err := s.dashboard.AddExpense(r.Context(), e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+created.ID).
		Body(created).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.dashboard.DeleteExpense(r.Context(), pathID(r)); err != nil {
		respondError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// handleExportExpenses downloads expenses as CSV, optionally one ?month=.
func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthQuery(r.URL.Query())
	if err != nil {
		respondError(w, r, err)
		return
	}
	list, err := s.dashboard.ListExpenses(r.Context(), month)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.ExpensesCSV(&buf, list); err != nil {
		respondError(w, r, err)
		return
	}
	writeCSV(w, export.Filename("expenses", s.dashboard.Today()), buf.Bytes())
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	b, err := s.dashboard.Budget(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	b, err := req.budget()
	if err != nil {
		respondError(w, r, err)
		return
	}
	saved, err := s.dashboard.SetBudget(r.Context(), b)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, saved)
}
