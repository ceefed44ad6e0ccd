// Package services orchestrates the dashboard: it loads records from the
// store, runs the domain engines and hands notifications to the notifier.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"trackboard/internal/alerts"
	"trackboard/internal/core"
	"trackboard/internal/datebucket"
	"trackboard/internal/goals"
	"trackboard/internal/habits"
	"trackboard/internal/log"
	"trackboard/internal/mood"
	"trackboard/internal/ports"
	"trackboard/internal/study"
)

// Dashboard is the application service behind the HTTP API, the CLI and
// the reminder worker. Each operation reads the clock once.
type Dashboard struct {
	store    ports.Store
	notifier ports.Notifier
	now      func() time.Time
	loc      *time.Location
	alertCfg alerts.Config
	logger   *log.Logger
	newID    func() string

	onNotify func(kind core.NotificationKind, err error)

	// alertMu serialises load-evaluate-save of the alert state.
	alertMu sync.Mutex
}

type Option func(*Dashboard)

func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(d *Dashboard) {
		if loc != nil {
			d.loc = loc
		}
	}
}

func WithAlertConfig(cfg alerts.Config) Option {
	return func(d *Dashboard) { d.alertCfg = cfg }
}

func WithLogger(logger *log.Logger) Option {
	return func(d *Dashboard) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithNotifyHook is called after every notification attempt; err is the
// notifier's result.
func WithNotifyHook(fn func(kind core.NotificationKind, err error)) Option {
	return func(d *Dashboard) { d.onNotify = fn }
}

func NewDashboard(store ports.Store, notifier ports.Notifier, opts ...Option) *Dashboard {
	d := &Dashboard{
		store:    store,
		notifier: notifier,
		now:      time.Now,
		loc:      time.UTC,
		alertCfg: alerts.DefaultConfig(),
		logger:   log.New(log.DefaultConfig()),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.notifier == nil {
		d.notifier = ports.LogNotifier{}
	}
	d.logger = d.logger.WithComponent(log.ComponentDashboard)
	return d
}

// clock returns the current instant in the user's location and its date.
func (d *Dashboard) clock() (time.Time, core.Date) {
	now := d.now().In(d.loc)
	return now, datebucket.Today(now, d.loc)
}

// Today is the current date in the user's location.
func (d *Dashboard) Today() core.Date {
	_, today := d.clock()
	return today
}

func (d *Dashboard) notify(ctx context.Context, n core.Notification) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}
	err := d.notifier.Notify(ctx, n)
	if err != nil {
		// Delivery is best effort; the triggering write already succeeded.
		d.logger.ErrorContext(ctx, "Failed to deliver notification",
			log.FieldKind, n.Kind, log.FieldError, err)
	}
	if d.onNotify != nil {
		d.onNotify(n.Kind, err)
	}
}

// --- habits ---

func (d *Dashboard) ListHabits(ctx context.Context) ([]core.Habit, error) {
	list, err := d.store.ListHabits(ctx)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return list, nil
}

func (d *Dashboard) CreateHabit(ctx context.Context, name, color string) (core.Habit, error) {
	h := core.Habit{
		ID:        d.newID(),
		Name:      strings.TrimSpace(name),
		Color:     strings.TrimSpace(color),
		CreatedAt: d.now().UTC(),
	}
	if err := h.Validate(); err != nil {
		return core.Habit{}, err
	}
	if err := d.store.SaveHabit(ctx, h); err != nil {
		return core.Habit{}, fmt.Errorf("save habit: %w", err)
	}
	d.logger.InfoContext(ctx, "Habit created", log.FieldHabitID, h.ID, log.FieldOperation, log.OpCreate)
	return h, nil
}

func (d *Dashboard) DeleteHabit(ctx context.Context, id string) error {
	if err := d.store.DeleteHabit(ctx, id); err != nil {
		return fmt.Errorf("delete habit %s: %w", id, err)
	}
	return nil
}

// SetHabitStatus marks one day of a habit. Future days are rejected.
func (d *Dashboard) SetHabitStatus(ctx context.Context, id string, day core.Date, status core.HabitStatus) (core.Habit, error) {
	if day.After(d.Today()) {
		return core.Habit{}, fmt.Errorf("%w: cannot mark future day %s", core.ErrInvalidInput, day.Key())
	}
	h, err := d.store.GetHabit(ctx, id)
	if err != nil {
		return core.Habit{}, fmt.Errorf("get habit %s: %w", id, err)
	}
	next, err := habits.SetStatus(h, day, status)
	if err != nil {
		return core.Habit{}, err
	}
	if err := d.store.SaveHabit(ctx, next); err != nil {
		return core.Habit{}, fmt.Errorf("save habit %s: %w", id, err)
	}
	return next, nil
}

// --- mood ---

func (d *Dashboard) ListMoods(ctx context.Context) ([]core.MoodEntry, error) {
	list, err := d.store.ListMoods(ctx)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	slices.SortFunc(list, func(a, b core.MoodEntry) int { return a.Date.Compare(b.Date.Time) })
	return list, nil
}

// MoodOverview is the mood history with its averages and trend.
type MoodOverview struct {
	Summary mood.Summary     `json:"summary"`
	Entries []core.MoodEntry `json:"entries"`
}

func (d *Dashboard) Mood(ctx context.Context) (MoodOverview, error) {
	list, err := d.ListMoods(ctx)
	if err != nil {
		return MoodOverview{}, err
	}
	return MoodOverview{Summary: mood.Summarize(list, d.Today()), Entries: list}, nil
}

// SetMood records the score for a day, replacing any earlier entry. An
// empty date means today.
func (d *Dashboard) SetMood(ctx context.Context, m core.MoodEntry) (core.MoodEntry, error) {
	today := d.Today()
	if m.Date.IsEmpty() {
		m.Date = today
	}
	if m.Date.After(today) {
		return core.MoodEntry{}, fmt.Errorf("%w: cannot record mood for future day %s", core.ErrInvalidInput, m.Date.Key())
	}
	m.Notes = strings.TrimSpace(m.Notes)
	if err := m.Validate(); err != nil {
		return core.MoodEntry{}, err
	}
	if err := d.store.UpsertMood(ctx, m); err != nil {
		return core.MoodEntry{}, fmt.Errorf("save mood: %w", err)
	}
	return m, nil
}

// --- finance ---

// ListExpenses returns expenses newest first, limited to iv when non-nil.
func (d *Dashboard) ListExpenses(ctx context.Context, iv *datebucket.Interval) ([]core.Expense, error) {
	list, err := d.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	if iv != nil {
		list = slices.DeleteFunc(list, func(e core.Expense) bool { return !iv.Contains(e.Date) })
	}
	slices.SortStableFunc(list, func(a, b core.Expense) int { return b.Date.Compare(a.Date.Time) })
	return list, nil
}

// AddExpense stores the expense and re-evaluates budget alerts. An empty
// date means today.
func (d *Dashboard) AddExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = d.newID()
	e.Description = strings.TrimSpace(e.Description)
	if e.Date.IsEmpty() {
		e.Date = d.Today()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	if err := d.store.AddExpense(ctx, e); err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	log.NewStructuredLogger(d.logger).LogExpenseCreated(ctx, e.ID, e.Amount.Cents, string(e.Category), e.Date.Key())
	d.checkAlertsQuietly(ctx)
	return e, nil
}

func (d *Dashboard) DeleteExpense(ctx context.Context, id string) error {
	if err := d.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense %s: %w", id, err)
	}
	d.checkAlertsQuietly(ctx)
	return nil
}

// Budget returns the budget for the month containing today; months without
// a saved budget have zero limits.
func (d *Dashboard) Budget(ctx context.Context) (core.Budget, error) {
	return d.budgetFor(ctx, d.Today())
}

func (d *Dashboard) budgetFor(ctx context.Context, today core.Date) (core.Budget, error) {
	key := datebucket.MonthKey(today)
	b, err := d.store.GetBudget(ctx, key)
	if errors.Is(err, ports.ErrNotFound) {
		return core.Budget{PeriodKey: key}, nil
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %s: %w", key, err)
	}
	return b, nil
}

// SetBudget saves the limits for b.PeriodKey, or the current month when
// it is empty, and re-evaluates budget alerts.
func (d *Dashboard) SetBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.PeriodKey == "" {
		b.PeriodKey = datebucket.MonthKey(d.Today())
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := d.store.SaveBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("save budget: %w", err)
	}
	d.checkAlertsQuietly(ctx)
	return b, nil
}

// --- study ---

type StudyOverview struct {
	Summary  study.Summary        `json:"summary"`
	Sessions []core.StudySession `json:"sessions"`
}

func (d *Dashboard) Study(ctx context.Context) (StudyOverview, error) {
	sessions, err := d.store.ListStudySessions(ctx)
	if err != nil {
		return StudyOverview{}, fmt.Errorf("list study sessions: %w", err)
	}
	state, err := d.store.GetStudyGoals(ctx)
	if err != nil {
		return StudyOverview{}, fmt.Errorf("get study goals: %w", err)
	}
	slices.SortStableFunc(sessions, func(a, b core.StudySession) int { return b.Date.Compare(a.Date.Time) })
	return StudyOverview{
		Summary:  study.Summarize(sessions, state, d.Today()),
		Sessions: sessions,
	}, nil
}

// LogStudySession stores the session. A session dated today may complete
// the daily goal, which advances the streak; the state is saved only when
// it changed.
func (d *Dashboard) LogStudySession(ctx context.Context, s core.StudySession) (core.StudySession, core.StudyGoalState, error) {
	today := d.Today()
	s.ID = d.newID()
	s.Subject = strings.TrimSpace(s.Subject)
	if s.Date.IsEmpty() {
		s.Date = today
	}
	if err := s.Validate(); err != nil {
		return core.StudySession{}, core.StudyGoalState{}, err
	}
	if s.Date.After(today) {
		return core.StudySession{}, core.StudyGoalState{}, fmt.Errorf("%w: session date %s is in the future", core.ErrInvalidInput, s.Date.Key())
	}
	if err := d.store.AddStudySession(ctx, s); err != nil {
		return core.StudySession{}, core.StudyGoalState{}, fmt.Errorf("save study session: %w", err)
	}

	state, err := d.store.GetStudyGoals(ctx)
	if err != nil {
		return s, core.StudyGoalState{}, fmt.Errorf("get study goals: %w", err)
	}
	if !s.Date.Equal(today) {
		return s, state, nil
	}

	sessions, err := d.store.ListStudySessions(ctx)
	if err != nil {
		return s, state, fmt.Errorf("list study sessions: %w", err)
	}
	next := study.Advance(state, study.TodayTotal(sessions, today), today)
	if next.CurrentStreak != state.CurrentStreak || next.LongestStreak != state.LongestStreak || !sameDate(next.LastQualifyingDate, state.LastQualifyingDate) {
		if err := d.store.SaveStudyGoals(ctx, next); err != nil {
			return s, state, fmt.Errorf("save study goals: %w", err)
		}
		d.logger.InfoContext(ctx, "Study streak advanced", "streak", next.CurrentStreak)
	}
	return s, next, nil
}

func sameDate(a, b *core.Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// SetStudyGoals changes the daily and weekly targets, keeping the streak.
func (d *Dashboard) SetStudyGoals(ctx context.Context, dailyMinutes, weeklyMinutes int) (core.StudyGoalState, error) {
	state, err := d.store.GetStudyGoals(ctx)
	if err != nil {
		return core.StudyGoalState{}, fmt.Errorf("get study goals: %w", err)
	}
	state.DailyGoalMinutes = dailyMinutes
	state.WeeklyGoalMinutes = weeklyMinutes
	if err := state.Validate(); err != nil {
		return core.StudyGoalState{}, err
	}
	if err := d.store.SaveStudyGoals(ctx, state); err != nil {
		return core.StudyGoalState{}, fmt.Errorf("save study goals: %w", err)
	}
	return state, nil
}

// --- goals ---

// GoalView is a goal with its computed progress.
type GoalView struct {
	core.Goal
	Progress float64 `json:"progress"`
}

func goalViews(list []core.Goal) []GoalView {
	out := make([]GoalView, 0, len(list))
	for _, g := range list {
		out = append(out, GoalView{Goal: g, Progress: core.Round1(goals.ProgressPercent(g))})
	}
	return out
}

func (d *Dashboard) ListGoals(ctx context.Context) ([]GoalView, error) {
	list, err := d.store.ListGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goalViews(list), nil
}

func (d *Dashboard) CreateGoal(ctx context.Context, draft core.Goal) (core.Goal, error) {
	g, err := goals.NewGoal(draft)
	if err != nil {
		return core.Goal{}, err
	}
	g.ID = d.newID()
	g.CreatedAt = d.now().UTC()
	if err := d.store.SaveGoal(ctx, g); err != nil {
		return core.Goal{}, fmt.Errorf("save goal: %w", err)
	}
	d.logger.InfoContext(ctx, "Goal created", log.FieldGoalID, g.ID, log.FieldOperation, log.OpCreate)
	return g, nil
}

// UpdateGoalProgress sets the goal's current value and notifies once per
// completion or milestone it triggered.
func (d *Dashboard) UpdateGoalProgress(ctx context.Context, id string, value decimal.Decimal) (core.Goal, []goals.Event, error) {
	g, err := d.store.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, nil, fmt.Errorf("get goal %s: %w", id, err)
	}
	next, events, err := goals.ApplyProgress(g, value)
	if err != nil {
		return core.Goal{}, nil, err
	}
	if err := d.store.SaveGoal(ctx, next); err != nil {
		return core.Goal{}, nil, fmt.Errorf("save goal %s: %w", id, err)
	}
	today := d.Today()
	for _, ev := range events {
		d.notify(ctx, ev.Notification(today))
	}
	return next, events, nil
}

func (d *Dashboard) SetGoalStatus(ctx context.Context, id string, status core.GoalStatus) (core.Goal, error) {
	g, err := d.store.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %s: %w", id, err)
	}
	next, err := goals.SetStatus(g, status)
	if err != nil {
		return core.Goal{}, err
	}
	if err := d.store.SaveGoal(ctx, next); err != nil {
		return core.Goal{}, fmt.Errorf("save goal %s: %w", id, err)
	}
	return next, nil
}

func (d *Dashboard) DeleteGoal(ctx context.Context, id string) error {
	if err := d.store.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	return nil
}

// --- assignments ---

func (d *Dashboard) ListAssignments(ctx context.Context) ([]core.Assignment, error) {
	list, err := d.store.ListAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return list, nil
}

// AddAssignment stores a new assignment; status defaults to not-started
// and priority to medium.
func (d *Dashboard) AddAssignment(ctx context.Context, a core.Assignment) (core.Assignment, error) {
	a.ID = d.newID()
	a.Title = strings.TrimSpace(a.Title)
	a.Subject = strings.TrimSpace(a.Subject)
	if a.Status == "" {
		a.Status = core.AssignmentNotStarted
	}
	if a.Priority == "" {
		a.Priority = core.PriorityMedium
	}
	if err := a.Validate(); err != nil {
		return core.Assignment{}, err
	}
	if err := d.store.SaveAssignment(ctx, a); err != nil {
		return core.Assignment{}, fmt.Errorf("save assignment: %w", err)
	}
	return a, nil
}

func (d *Dashboard) SetAssignmentStatus(ctx context.Context, id string, status core.AssignmentStatus) (core.Assignment, error) {
	if !status.IsValid() {
		return core.Assignment{}, fmt.Errorf("%w %q", core.ErrInvalidStatus, status)
	}
	a, err := d.store.GetAssignment(ctx, id)
	if err != nil {
		return core.Assignment{}, fmt.Errorf("get assignment %s: %w", id, err)
	}
	a.Status = status
	if err := d.store.SaveAssignment(ctx, a); err != nil {
		return core.Assignment{}, fmt.Errorf("save assignment %s: %w", id, err)
	}
	return a, nil
}

func (d *Dashboard) DeleteAssignment(ctx context.Context, id string) error {
	if err := d.store.DeleteAssignment(ctx, id); err != nil {
		return fmt.Errorf("delete assignment %s: %w", id, err)
	}
	return nil
}
