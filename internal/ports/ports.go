// Package ports declares the outbound interfaces the dashboard services
// depend on. Storage and notification adapters implement them.
package ports

import (
	"context"
	"errors"

	"trackboard/internal/alerts"
	"trackboard/internal/core"
)

// ErrNotFound is returned when a record with the given key does not exist.
var ErrNotFound = errors.New("not found")

type (
	HabitStore interface {
		ListHabits(ctx context.Context) ([]core.Habit, error)
		GetHabit(ctx context.Context, id string) (core.Habit, error)
		// SaveHabit inserts or replaces the habit and its day marks.
		SaveHabit(ctx context.Context, h core.Habit) error
		DeleteHabit(ctx context.Context, id string) error
	}

	MoodStore interface {
		ListMoods(ctx context.Context) ([]core.MoodEntry, error)
		// UpsertMood keeps one entry per date.
		UpsertMood(ctx context.Context, m core.MoodEntry) error
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		AddExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	BudgetStore interface {
		// GetBudget returns the budget for "YYYY-MM" or ErrNotFound.
		GetBudget(ctx context.Context, periodKey string) (core.Budget, error)
		SaveBudget(ctx context.Context, b core.Budget) error
	}

	StudyStore interface {
		ListStudySessions(ctx context.Context) ([]core.StudySession, error)
		AddStudySession(ctx context.Context, s core.StudySession) error
		// GetStudyGoals returns core.DefaultStudyGoalState when nothing was saved.
		GetStudyGoals(ctx context.Context) (core.StudyGoalState, error)
		SaveStudyGoals(ctx context.Context, s core.StudyGoalState) error
	}

	GoalStore interface {
		ListGoals(ctx context.Context) ([]core.Goal, error)
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		SaveGoal(ctx context.Context, g core.Goal) error
		DeleteGoal(ctx context.Context, id string) error
	}

	AssignmentStore interface {
		ListAssignments(ctx context.Context) ([]core.Assignment, error)
		GetAssignment(ctx context.Context, id string) (core.Assignment, error)
		SaveAssignment(ctx context.Context, a core.Assignment) error
		DeleteAssignment(ctx context.Context, id string) error
	}

	AlertStateStore interface {
		LoadAlertState(ctx context.Context) (alerts.DedupeState, error)
		SaveAlertState(ctx context.Context, s alerts.DedupeState) error
	}

	// Store is everything the dashboard persists.
	Store interface {
		HabitStore
		MoodStore
		ExpenseStore
		BudgetStore
		StudyStore
		GoalStore
		AssignmentStore
		AlertStateStore
	}

	// Notifier delivers a notification to whatever presents it.
	Notifier interface {
		Notify(ctx context.Context, n core.Notification) error
	}
)
