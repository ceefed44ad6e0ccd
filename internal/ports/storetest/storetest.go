// Package storetest checks that a ports.Store implementation behaves like the
// reference in-memory store.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trackboard/internal/alerts"
	"trackboard/internal/core"
	"trackboard/internal/ports"
)

// Run exercises every store operation against a fresh store from newStore.
func Run(t *testing.T, newStore func(t *testing.T) ports.Store) {
	t.Run("Habits", func(t *testing.T) { testHabits(t, newStore(t)) })
	t.Run("Moods", func(t *testing.T) { testMoods(t, newStore(t)) })
	t.Run("Expenses", func(t *testing.T) { testExpenses(t, newStore(t)) })
	t.Run("Budgets", func(t *testing.T) { testBudgets(t, newStore(t)) })
	t.Run("Study", func(t *testing.T) { testStudy(t, newStore(t)) })
	t.Run("Goals", func(t *testing.T) { testGoals(t, newStore(t)) })
	t.Run("Assignments", func(t *testing.T) { testAssignments(t, newStore(t)) })
	t.Run("AlertState", func(t *testing.T) { testAlertState(t, newStore(t)) })
}

var day = core.NewDate(2025, 3, 12)

func testHabits(t *testing.T, s ports.Store) {
	ctx := context.Background()
	h := core.Habit{
		ID:             "h1",
		Name:           "Read",
		Color:          "#22c55e",
		CompletedDates: core.NewDateSet(day, day.AddDays(-1)),
		MissedDates:    core.NewDateSet(day.AddDays(-3)),
		CreatedAt:      time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
	if err := s.SaveHabit(ctx, h); err != nil {
		t.Fatalf("SaveHabit: %v", err)
	}
	got, err := s.GetHabit(ctx, "h1")
	if err != nil {
		t.Fatalf("GetHabit: %v", err)
	}
	if got.Name != "Read" || got.CompletedDates.Len() != 2 || !got.MissedDates.Has(day.AddDays(-3)) {
		t.Errorf("habit = %+v", got)
	}

	// Replacing marks drops the old ones.
	h.CompletedDates = core.NewDateSet(day)
	h.MissedDates = nil
	if err := s.SaveHabit(ctx, h); err != nil {
		t.Fatalf("SaveHabit update: %v", err)
	}
	list, err := s.ListHabits(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListHabits = %v, %v", list, err)
	}
	if list[0].CompletedDates.Len() != 1 || list[0].MissedDates.Len() != 0 {
		t.Errorf("marks after update = %v / %v", list[0].CompletedDates.Keys(), list[0].MissedDates.Keys())
	}

	// Returned values are copies.
	list[0].CompletedDates[day.AddDays(5).Key()] = struct{}{}
	again, _ := s.GetHabit(ctx, "h1")
	if again.CompletedDates.Len() != 1 {
		t.Errorf("store shares habit state with callers")
	}

	if err := s.DeleteHabit(ctx, "h1"); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	if _, err := s.GetHabit(ctx, "h1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("GetHabit after delete: %v", err)
	}
	if err := s.DeleteHabit(ctx, "h1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("DeleteHabit twice: %v", err)
	}
	if err := s.SaveHabit(ctx, core.Habit{ID: "bad"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("SaveHabit invalid: %v", err)
	}
}

func testMoods(t *testing.T, s ports.Store) {
	ctx := context.Background()
	for _, m := range []core.MoodEntry{
		{Date: day, Score: 5},
		{Date: day.AddDays(-1), Score: 7, Notes: "ok"},
		{Date: day, Score: 8},
	} {
		if err := s.UpsertMood(ctx, m); err != nil {
			t.Fatalf("UpsertMood: %v", err)
		}
	}
	list, err := s.ListMoods(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListMoods = %v, %v", list, err)
	}
	if !list[0].Date.Equal(day.AddDays(-1)) || list[1].Score != 8 {
		t.Errorf("moods = %+v", list)
	}
	if err := s.UpsertMood(ctx, core.MoodEntry{Date: day, Score: 11}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("UpsertMood out of range: %v", err)
	}
}

func testExpenses(t *testing.T, s ports.Store) {
	ctx := context.Background()
	e := core.Expense{ID: "e1", Description: "Lunch", Amount: core.Money{Cents: 1250}, Category: core.CategoryFood, Date: day}
	if err := s.AddExpense(ctx, e); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	list, err := s.ListExpenses(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListExpenses = %+v, %v", list, err)
	}
	if got := list[0]; got.ID != e.ID || got.Amount != e.Amount || got.Category != e.Category || !got.Date.Equal(day) {
		t.Errorf("expense = %+v", got)
	}
	if err := s.DeleteExpense(ctx, "e1"); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := s.DeleteExpense(ctx, "e1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("DeleteExpense twice: %v", err)
	}
}

func testBudgets(t *testing.T, s ports.Store) {
	ctx := context.Background()
	if _, err := s.GetBudget(ctx, "2025-03"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("GetBudget empty: %v", err)
	}
	b := core.Budget{PeriodKey: "2025-03", MonthlyLimit: core.Money{Cents: 100000}, WeeklyLimit: core.Money{Cents: 25000}}
	if err := s.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget: %v", err)
	}
	b.MonthlySavingsGoal = core.Money{Cents: 20000}
	if err := s.SaveBudget(ctx, b); err != nil {
		t.Fatalf("SaveBudget update: %v", err)
	}
	got, err := s.GetBudget(ctx, "2025-03")
	if err != nil || got != b {
		t.Fatalf("GetBudget = %+v, %v", got, err)
	}
}

func testStudy(t *testing.T, s ports.Store) {
	ctx := context.Background()
	st, err := s.GetStudyGoals(ctx)
	if err != nil || st.DailyGoalMinutes != core.DefaultDailyStudyMinutes {
		t.Fatalf("GetStudyGoals default = %+v, %v", st, err)
	}
	last := day
	st.CurrentStreak, st.LongestStreak, st.LastQualifyingDate = 3, 5, &last
	if err := s.SaveStudyGoals(ctx, st); err != nil {
		t.Fatalf("SaveStudyGoals: %v", err)
	}
	got, err := s.GetStudyGoals(ctx)
	if err != nil || got.CurrentStreak != 3 || got.LongestStreak != 5 || got.LastQualifyingDate == nil || !got.LastQualifyingDate.Equal(day) {
		t.Fatalf("GetStudyGoals = %+v, %v", got, err)
	}

	sess := core.StudySession{ID: "s1", Subject: "Math", DurationMinutes: 45, Date: day}
	if err := s.AddStudySession(ctx, sess); err != nil {
		t.Fatalf("AddStudySession: %v", err)
	}
	list, err := s.ListStudySessions(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListStudySessions = %+v, %v", list, err)
	}
	if got := list[0]; got.ID != "s1" || got.Subject != "Math" || got.DurationMinutes != 45 || !got.Date.Equal(day) {
		t.Errorf("session = %+v", got)
	}
}

func testGoals(t *testing.T, s ports.Store) {
	ctx := context.Background()
	target := day.AddDays(30)
	g := core.Goal{
		ID:                 "g1",
		Title:              "Run",
		TargetValue:        decimal.RequireFromString("50"),
		CurrentValue:       decimal.RequireFromString("12.5"),
		Unit:               "km",
		TargetDate:         &target,
		Milestones:         []decimal.Decimal{decimal.RequireFromString("12.5"), decimal.RequireFromString("25")},
		AchievedMilestones: []decimal.Decimal{decimal.RequireFromString("12.5")},
		Status:             core.GoalActive,
		CreatedAt:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := s.SaveGoal(ctx, g); err != nil {
		t.Fatalf("SaveGoal: %v", err)
	}
	got, err := s.GetGoal(ctx, "g1")
	if err != nil {
		t.Fatalf("GetGoal: %v", err)
	}
	if !got.CurrentValue.Equal(g.CurrentValue) || len(got.Milestones) != 2 || len(got.AchievedMilestones) != 1 {
		t.Errorf("goal = %+v", got)
	}
	if got.TargetDate == nil || !got.TargetDate.Equal(target) {
		t.Errorf("target date = %v", got.TargetDate)
	}

	g.Status = core.GoalPaused
	if err := s.SaveGoal(ctx, g); err != nil {
		t.Fatalf("SaveGoal update: %v", err)
	}
	list, err := s.ListGoals(ctx)
	if err != nil || len(list) != 1 || list[0].Status != core.GoalPaused {
		t.Fatalf("ListGoals = %+v, %v", list, err)
	}
	if err := s.DeleteGoal(ctx, "g1"); err != nil {
		t.Fatalf("DeleteGoal: %v", err)
	}
	if _, err := s.GetGoal(ctx, "g1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("GetGoal after delete: %v", err)
	}
}

func testAssignments(t *testing.T, s ports.Store) {
	ctx := context.Background()
	a := core.Assignment{
		ID:       "a1",
		Title:    "Essay",
		Subject:  "History",
		Deadline: time.Date(2025, 3, 20, 23, 59, 0, 0, time.UTC),
		Priority: core.PriorityHigh,
		Status:   core.AssignmentNotStarted,
	}
	if err := s.SaveAssignment(ctx, a); err != nil {
		t.Fatalf("SaveAssignment: %v", err)
	}
	a.Status = core.AssignmentInProgress
	if err := s.SaveAssignment(ctx, a); err != nil {
		t.Fatalf("SaveAssignment update: %v", err)
	}
	got, err := s.GetAssignment(ctx, "a1")
	if err != nil || got.Status != core.AssignmentInProgress || !got.Deadline.Equal(a.Deadline) {
		t.Fatalf("GetAssignment = %+v, %v", got, err)
	}
	list, err := s.ListAssignments(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListAssignments = %+v, %v", list, err)
	}
	if err := s.DeleteAssignment(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAssignment: %v", err)
	}
	if err := s.DeleteAssignment(ctx, "a1"); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("DeleteAssignment twice: %v", err)
	}
}

func testAlertState(t *testing.T, s ports.Store) {
	ctx := context.Background()
	st, err := s.LoadAlertState(ctx)
	if err != nil || len(st.LastFired) != 0 {
		t.Fatalf("LoadAlertState empty = %+v, %v", st, err)
	}
	near := alerts.Key{Metric: alerts.MetricMonthlyBudget, Threshold: 80}
	st = alerts.DedupeState{LastFired: map[alerts.Key]core.Date{near: day}}
	if err := s.SaveAlertState(ctx, st); err != nil {
		t.Fatalf("SaveAlertState: %v", err)
	}
	got, err := s.LoadAlertState(ctx)
	if err != nil || !got.FiredOn(near, day) {
		t.Fatalf("LoadAlertState = %+v, %v", got, err)
	}

	// Saving replaces the whole state.
	if err := s.SaveAlertState(ctx, alerts.DedupeState{}); err != nil {
		t.Fatalf("SaveAlertState clear: %v", err)
	}
	got, _ = s.LoadAlertState(ctx)
	if len(got.LastFired) != 0 {
		t.Errorf("state after clear = %+v", got)
	}
}
