package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"trackboard/internal/core"
	"trackboard/internal/log"
	"trackboard/internal/ports"
	"trackboard/internal/storage/memory"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []core.Notification
	err  error
}

func (n *fakeNotifier) Notify(_ context.Context, note core.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, note)
	return nil
}

func (n *fakeNotifier) kinds() []core.NotificationKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]core.NotificationKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

// Thursday 14 March 2024, 20:00 UTC: after the default reminder hour.
var fixedNow = time.Date(2024, time.March, 14, 20, 0, 0, 0, time.UTC)

func newTestDashboard(t *testing.T, now time.Time) (*Dashboard, *fakeNotifier) {
	t.Helper()
	n := &fakeNotifier{}
	seq := 0
	d := NewDashboard(memory.New(), n,
		WithClock(func() time.Time { return now }),
		WithLocation(time.UTC),
		WithLogger(log.New(log.Config{Writer: &bytes.Buffer{}})),
	)
	d.newID = func() string {
		seq++
		return "id-" + string(rune('a'+seq-1))
	}
	return d, n
}

func expense(desc string, cents int64, day core.Date) core.Expense {
	return core.Expense{
		Description: desc,
		Amount:      core.Money{Cents: cents},
		Category:    core.CategoryFood,
		Date:        day,
	}
}

func TestAddExpenseFiresBudgetAlertsOncePerDay(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDashboard(t, fixedNow)
	today := d.Today()

	if _, err := d.SetBudget(ctx, core.Budget{MonthlyLimit: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	if got := n.kinds(); len(got) != 0 {
		t.Fatalf("notifications after empty budget = %v", got)
	}

	if _, err := d.AddExpense(ctx, expense("groceries", 8500, today)); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if got := n.kinds(); len(got) != 1 || got[0] != core.NotifyBudgetNear {
		t.Fatalf("after 85%% notifications = %v, want [budget_near]", got)
	}

	if _, err := d.AddExpense(ctx, expense("coffee", 100, today)); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if got := n.kinds(); len(got) != 1 {
		t.Fatalf("near alert repeated: %v", got)
	}

	if _, err := d.AddExpense(ctx, expense("dinner", 2000, today)); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	got := n.kinds()
	if len(got) != 2 || got[1] != core.NotifyBudgetExceeded {
		t.Fatalf("after 106%% notifications = %v, want exceeded second", got)
	}
}

func TestSavingsDoNotCountTowardBudget(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDashboard(t, fixedNow)

	if _, err := d.SetBudget(ctx, core.Budget{MonthlyLimit: core.Money{Cents: 10000}}); err != nil {
		t.Fatalf("SetBudget: %v", err)
	}
	e := expense("rainy day", 9000, d.Today())
	e.Category = core.CategorySavings
	if _, err := d.AddExpense(ctx, e); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if got := n.kinds(); len(got) != 0 {
		t.Errorf("savings triggered %v", got)
	}
}

func TestAddExpenseValidation(t *testing.T) {
	d, _ := newTestDashboard(t, fixedNow)
	tests := []struct {
		name string
		e    core.Expense
	}{
		{"empty description", expense("  ", 100, d.Today())},
		{"negative amount", expense("x", -1, d.Today())},
		{"bad category", core.Expense{Description: "x", Amount: core.Money{Cents: 1}, Category: "rent"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.AddExpense(context.Background(), tt.e); !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAddExpenseDefaultsToToday(t *testing.T) {
	d, _ := newTestDashboard(t, fixedNow)
	e, err := d.AddExpense(context.Background(), core.Expense{Description: "bus", Amount: core.Money{Cents: 250}, Category: core.CategoryTransport})
	if err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	if e.Date.Key() != "2024-03-14" || e.ID == "" {
		t.Errorf("expense = %+v", e)
	}
}

func TestHabitReminder(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDashboard(t, fixedNow)

	h, err := d.CreateHabit(ctx, " Read ", "#fff")
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if h.Name != "Read" {
		t.Errorf("name = %q", h.Name)
	}

	fired, err := d.CheckAlerts(ctx)
	if err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(fired) != 1 || fired[0].Kind != core.NotifyHabitReminder {
		t.Fatalf("fired = %+v", fired)
	}
	if fired[0].Metadata["habits"] != "Read" {
		t.Errorf("metadata = %v", fired[0].Metadata)
	}

	fired, err = d.CheckAlerts(ctx)
	if err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(fired) != 0 {
		t.Errorf("reminder repeated: %+v", fired)
	}
	if len(n.kinds()) != 1 {
		t.Errorf("notifier saw %v", n.kinds())
	}
}

func TestHabitReminderWaitsForHour(t *testing.T) {
	ctx := context.Background()
	morning := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)
	d, _ := newTestDashboard(t, morning)
	if _, err := d.CreateHabit(ctx, "Run", ""); err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	fired, err := d.CheckAlerts(ctx)
	if err != nil {
		t.Fatalf("CheckAlerts: %v", err)
	}
	if len(fired) != 0 {
		t.Errorf("fired before reminder hour: %+v", fired)
	}
}

func TestSetHabitStatus(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)
	h, err := d.CreateHabit(ctx, "Run", "")
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	today := d.Today()

	if _, err := d.SetHabitStatus(ctx, h.ID, today.AddDays(1), core.HabitCompleted); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("future day: err = %v", err)
	}
	if _, err := d.SetHabitStatus(ctx, "missing", today, core.HabitCompleted); !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("missing habit: err = %v", err)
	}

	for i := 2; i >= 0; i-- {
		if _, err := d.SetHabitStatus(ctx, h.ID, today.AddDays(-i), core.HabitCompleted); err != nil {
			t.Fatalf("SetHabitStatus: %v", err)
		}
	}
	sum, err := d.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.Habits.Habits) != 1 || sum.Habits.Habits[0].CurrentStreak != 3 {
		t.Errorf("habits = %+v", sum.Habits)
	}
	if sum.Habits.Today.Completed != 1 {
		t.Errorf("today = %+v", sum.Habits.Today)
	}
	if len(sum.HabitWeek) != 7 {
		t.Errorf("habit week has %d days", len(sum.HabitWeek))
	}
}

func TestSetMood(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)

	if _, err := d.SetMood(ctx, core.MoodEntry{Score: 11}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("score 11: err = %v", err)
	}
	if _, err := d.SetMood(ctx, core.MoodEntry{Score: 6}); err != nil {
		t.Fatalf("SetMood: %v", err)
	}
	if _, err := d.SetMood(ctx, core.MoodEntry{Score: 8}); err != nil {
		t.Fatalf("SetMood: %v", err)
	}
	if _, err := d.SetMood(ctx, core.MoodEntry{Score: 4, Date: d.Today().AddDays(-1)}); err != nil {
		t.Fatalf("SetMood: %v", err)
	}
	if _, err := d.SetMood(ctx, core.MoodEntry{Score: 5, Date: d.Today().AddDays(1)}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("future day: err = %v", err)
	}

	list, err := d.ListMoods(ctx)
	if err != nil {
		t.Fatalf("ListMoods: %v", err)
	}
	if len(list) != 2 || list[0].Score != 4 || list[1].Score != 8 {
		t.Errorf("moods = %+v", list)
	}
}

func TestLogStudySessionAdvancesStreak(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)
	today := d.Today()

	_, state, err := d.LogStudySession(ctx, core.StudySession{Subject: "Go", DurationMinutes: 30})
	if err != nil {
		t.Fatalf("LogStudySession: %v", err)
	}
	if state.CurrentStreak != 0 {
		t.Fatalf("streak after 30 min = %d", state.CurrentStreak)
	}

	_, state, err = d.LogStudySession(ctx, core.StudySession{Subject: "Go", DurationMinutes: 30, Date: today})
	if err != nil {
		t.Fatalf("LogStudySession: %v", err)
	}
	if state.CurrentStreak != 1 || state.LastQualifyingDate == nil || !state.LastQualifyingDate.Equal(today) {
		t.Fatalf("state after 60 min = %+v", state)
	}

	// A third session the same day does not count twice.
	_, state, err = d.LogStudySession(ctx, core.StudySession{Subject: "Math", DurationMinutes: 45})
	if err != nil {
		t.Fatalf("LogStudySession: %v", err)
	}
	if state.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", state.CurrentStreak)
	}

	if _, _, err := d.LogStudySession(ctx, core.StudySession{Subject: "Go", DurationMinutes: 10, Date: today.AddDays(1)}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("future session: err = %v", err)
	}

	ov, err := d.Study(ctx)
	if err != nil {
		t.Fatalf("Study: %v", err)
	}
	if ov.Summary.TodayMinutes != 105 || ov.Summary.DailyProgress != 100 || len(ov.Sessions) != 3 {
		t.Errorf("overview = %+v", ov.Summary)
	}
}

func TestSetStudyGoals(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)
	if _, err := d.SetStudyGoals(ctx, 0, 100); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("zero daily goal: err = %v", err)
	}
	st, err := d.SetStudyGoals(ctx, 30, 200)
	if err != nil {
		t.Fatalf("SetStudyGoals: %v", err)
	}
	if st.DailyGoalMinutes != 30 || st.WeeklyGoalMinutes != 200 {
		t.Errorf("state = %+v", st)
	}
}

func TestUpdateGoalProgressNotifies(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDashboard(t, fixedNow)

	g, err := d.CreateGoal(ctx, core.Goal{Title: "Read books", TargetValue: decimal.NewFromInt(20)})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if g.Status != core.GoalActive || len(g.Milestones) != 3 {
		t.Fatalf("goal = %+v", g)
	}

	_, events, err := d.UpdateGoalProgress(ctx, g.ID, decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("UpdateGoalProgress: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events at 50%% = %d, want 2", len(events))
	}

	next, events, err := d.UpdateGoalProgress(ctx, g.ID, decimal.NewFromInt(20))
	if err != nil {
		t.Fatalf("UpdateGoalProgress: %v", err)
	}
	if next.Status != core.GoalCompleted || len(events) != 2 {
		t.Fatalf("status = %s, events = %d", next.Status, len(events))
	}
	want := []core.NotificationKind{
		core.NotifyMilestoneReached, core.NotifyMilestoneReached,
		core.NotifyGoalCompleted, core.NotifyMilestoneReached,
	}
	got := n.kinds()
	if len(got) != len(want) {
		t.Fatalf("notifications = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %s, want %s", i, got[i], want[i])
		}
	}

	views, err := d.ListGoals(ctx)
	if err != nil {
		t.Fatalf("ListGoals: %v", err)
	}
	if len(views) != 1 || views[0].Progress != 100 {
		t.Errorf("views = %+v", views)
	}

	if _, _, err := d.UpdateGoalProgress(ctx, g.ID, decimal.NewFromInt(-1)); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("negative progress: err = %v", err)
	}
}

func TestNotificationFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	d, n := newTestDashboard(t, fixedNow)
	n.err = errors.New("broker down")

	var hookErr error
	d.onNotify = func(_ core.NotificationKind, err error) { hookErr = err }

	g, err := d.CreateGoal(ctx, core.Goal{Title: "Run", TargetValue: decimal.NewFromInt(1)})
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if _, _, err := d.UpdateGoalProgress(ctx, g.ID, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("UpdateGoalProgress: %v", err)
	}
	if hookErr == nil {
		t.Error("hook did not see the delivery failure")
	}
}

func TestAssignments(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)

	past, err := d.AddAssignment(ctx, core.Assignment{Title: "Essay", Deadline: fixedNow.Add(-time.Hour)})
	if err != nil {
		t.Fatalf("AddAssignment: %v", err)
	}
	if past.Status != core.AssignmentNotStarted || past.Priority != core.PriorityMedium {
		t.Errorf("defaults = %s/%s", past.Status, past.Priority)
	}
	if _, err := d.AddAssignment(ctx, core.Assignment{Title: "Lab", Deadline: fixedNow.Add(48 * time.Hour), Priority: core.PriorityHigh}); err != nil {
		t.Fatalf("AddAssignment: %v", err)
	}
	if _, err := d.AddAssignment(ctx, core.Assignment{Title: "No deadline"}); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("missing deadline: err = %v", err)
	}
	if _, err := d.SetAssignmentStatus(ctx, past.ID, "done"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("bad status: err = %v", err)
	}

	sum, err := d.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Assignments.Total != 2 || sum.Assignments.Overdue != 1 || len(sum.Upcoming) != 2 {
		t.Errorf("assignments = %+v, upcoming = %d", sum.Assignments, len(sum.Upcoming))
	}

	if _, err := d.SetAssignmentStatus(ctx, past.ID, core.AssignmentCompleted); err != nil {
		t.Fatalf("SetAssignmentStatus: %v", err)
	}
	sum, err = d.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Assignments.Completed != 1 || sum.Assignments.Overdue != 0 || len(sum.Upcoming) != 1 {
		t.Errorf("after completion = %+v, upcoming = %d", sum.Assignments, len(sum.Upcoming))
	}
}

func TestSummaryOnEmptyStore(t *testing.T) {
	d, _ := newTestDashboard(t, fixedNow)
	sum, err := d.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Date.Key() != "2024-03-14" {
		t.Errorf("date = %s", sum.Date.Key())
	}
	if sum.Mood.Weekly.Valid || sum.Finance.Monthly.State != "under" {
		t.Errorf("mood = %+v, finance = %+v", sum.Mood, sum.Finance.Monthly)
	}
	if sum.Study.DailyGoal != core.DefaultDailyStudyMinutes {
		t.Errorf("study daily goal = %d", sum.Study.DailyGoal)
	}
}

func TestCalendarDefaultsToCurrentMonth(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)
	if _, err := d.AddExpense(ctx, expense("lunch", 1200, d.Today())); err != nil {
		t.Fatalf("AddExpense: %v", err)
	}
	view, err := d.Calendar(ctx, nil)
	if err != nil {
		t.Fatalf("Calendar: %v", err)
	}
	if view.Month != "2024-03" || len(view.Days) != 31 {
		t.Fatalf("view = %s with %d days", view.Month, len(view.Days))
	}
	if view.Days[13].TotalExpenses.Cents != 1200 {
		t.Errorf("14 March total = %d", view.Days[13].TotalExpenses.Cents)
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)
	today := d.Today()
	for i, day := range []core.Date{today.AddDays(-20), today, today.AddDays(-1)} {
		if _, err := d.AddExpense(ctx, expense(string(rune('a'+i)), 100, day)); err != nil {
			t.Fatalf("AddExpense: %v", err)
		}
	}
	list, err := d.ListExpenses(ctx, nil)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(list) != 3 || !list[0].Date.Equal(today) || !list[2].Date.Equal(today.AddDays(-20)) {
		t.Errorf("order = %v", list)
	}
}

func TestMoodOverview(t *testing.T) {
	ctx := context.Background()
	d, _ := newTestDashboard(t, fixedNow)
	for i, score := range []int{5, 7, 9} {
		if _, err := d.SetMood(ctx, core.MoodEntry{Score: score, Date: d.Today().AddDays(i - 2)}); err != nil {
			t.Fatalf("SetMood: %v", err)
		}
	}
	ov, err := d.Mood(ctx)
	if err != nil {
		t.Fatalf("Mood: %v", err)
	}
	if len(ov.Entries) != 3 || ov.Summary.Today == nil || *ov.Summary.Today != 9 {
		t.Fatalf("overview = %+v", ov)
	}
	if !ov.Summary.Weekly.Valid || ov.Summary.Weekly.Value != 7 {
		t.Errorf("weekly = %+v", ov.Summary.Weekly)
	}
}
