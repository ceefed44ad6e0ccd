// Package memory is an in-process ports.Store. Records are copied on the way
// in and out so callers never share state with the store.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"trackboard/internal/alerts"
	"trackboard/internal/core"
	"trackboard/internal/ports"
)

type Store struct {
	mu          sync.Mutex
	habits      []core.Habit
	moods       map[string]core.MoodEntry
	expenses    []core.Expense
	budgets     map[string]core.Budget
	sessions    []core.StudySession
	studyGoals  *core.StudyGoalState
	goals       []core.Goal
	assignments []core.Assignment
	alertState  alerts.DedupeState
}

var _ ports.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		moods:   map[string]core.MoodEntry{},
		budgets: map[string]core.Budget{},
	}
}

func (s *Store) ListHabits(_ context.Context) ([]core.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Habit, 0, len(s.habits))
	for _, h := range s.habits {
		out = append(out, copyHabit(h))
	}
	return out, nil
}

func (s *Store) GetHabit(_ context.Context, id string) (core.Habit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.habits, id, func(h core.Habit) string { return h.ID })
	if i < 0 {
		return core.Habit{}, ports.ErrNotFound
	}
	return copyHabit(s.habits[i]), nil
}

func (s *Store) SaveHabit(_ context.Context, h core.Habit) error {
	if err := h.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.habits = upsert(s.habits, copyHabit(h), func(x core.Habit) string { return x.ID })
	return nil
}

func (s *Store) DeleteHabit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.habits, ok = remove(s.habits, id, func(h core.Habit) string { return h.ID })
	if !ok {
		return ports.ErrNotFound
	}
	return nil
}

func (s *Store) ListMoods(_ context.Context) ([]core.MoodEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.MoodEntry, 0, len(s.moods))
	for _, m := range s.moods {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) UpsertMood(_ context.Context, m core.MoodEntry) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moods[m.Date.Key()] = m
	return nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.expenses), nil
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.expenses, ok = remove(s.expenses, id, func(e core.Expense) string { return e.ID })
	if !ok {
		return ports.ErrNotFound
	}
	return nil
}

func (s *Store) GetBudget(_ context.Context, periodKey string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[periodKey]
	if !ok {
		return core.Budget{}, ports.ErrNotFound
	}
	return b, nil
}

func (s *Store) SaveBudget(_ context.Context, b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.budgets[b.PeriodKey] = b
	return nil
}

func (s *Store) ListStudySessions(_ context.Context) ([]core.StudySession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sessions), nil
}

func (s *Store) AddStudySession(_ context.Context, sess core.StudySession) error {
	if err := sess.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = append(s.sessions, sess)
	return nil
}

func (s *Store) GetStudyGoals(_ context.Context) (core.StudyGoalState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.studyGoals == nil {
		return core.DefaultStudyGoalState(), nil
	}
	return copyStudyGoals(*s.studyGoals), nil
}

func (s *Store) SaveStudyGoals(_ context.Context, st core.StudyGoalState) error {
	if err := st.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := copyStudyGoals(st)
	s.studyGoals = &c
	return nil
}

func (s *Store) ListGoals(_ context.Context) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		out = append(out, copyGoal(g))
	}
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.goals, id, func(g core.Goal) string { return g.ID })
	if i < 0 {
		return core.Goal{}, ports.ErrNotFound
	}
	return copyGoal(s.goals[i]), nil
}

func (s *Store) SaveGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = upsert(s.goals, copyGoal(g), func(x core.Goal) string { return x.ID })
	return nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.goals, ok = remove(s.goals, id, func(g core.Goal) string { return g.ID })
	if !ok {
		return ports.ErrNotFound
	}
	return nil
}

func (s *Store) ListAssignments(_ context.Context) ([]core.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.assignments), nil
}

func (s *Store) GetAssignment(_ context.Context, id string) (core.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexByID(s.assignments, id, func(a core.Assignment) string { return a.ID })
	if i < 0 {
		return core.Assignment{}, ports.ErrNotFound
	}
	return s.assignments[i], nil
}

func (s *Store) SaveAssignment(_ context.Context, a core.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = upsert(s.assignments, a, func(x core.Assignment) string { return x.ID })
	return nil
}

func (s *Store) DeleteAssignment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ok bool
	s.assignments, ok = remove(s.assignments, id, func(a core.Assignment) string { return a.ID })
	if !ok {
		return ports.ErrNotFound
	}
	return nil
}

func (s *Store) LoadAlertState(_ context.Context) (alerts.DedupeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alertState.Clone(), nil
}

func (s *Store) SaveAlertState(_ context.Context, st alerts.DedupeState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alertState = st.Clone()
	return nil
}

func indexByID[T any](items []T, id string, key func(T) string) int {
	return slices.IndexFunc(items, func(x T) bool { return key(x) == id })
}

func upsert[T any](items []T, v T, key func(T) string) []T {
	if i := indexByID(items, key(v), key); i >= 0 {
		items[i] = v
		return items
	}
	return append(items, v)
}

func remove[T any](items []T, id string, key func(T) string) ([]T, bool) {
	i := indexByID(items, id, key)
	if i < 0 {
		return items, false
	}
	return slices.Delete(items, i, i+1), true
}

func copyHabit(h core.Habit) core.Habit {
	h.CompletedDates = h.CompletedDates.Clone()
	h.MissedDates = h.MissedDates.Clone()
	return h
}

func copyGoal(g core.Goal) core.Goal {
	g.Milestones = slices.Clone(g.Milestones)
	g.AchievedMilestones = slices.Clone(g.AchievedMilestones)
	if g.TargetDate != nil {
		d := *g.TargetDate
		g.TargetDate = &d
	}
	return g
}

func copyStudyGoals(s core.StudyGoalState) core.StudyGoalState {
	if s.LastQualifyingDate != nil {
		d := *s.LastQualifyingDate
		s.LastQualifyingDate = &d
	}
	return s
}
