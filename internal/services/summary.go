package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"trackboard/internal/alerts"
	"trackboard/internal/assignments"
	"trackboard/internal/calendar"
	"trackboard/internal/core"
	"trackboard/internal/datebucket"
	"trackboard/internal/finance"
	"trackboard/internal/goals"
	"trackboard/internal/habits"
	"trackboard/internal/log"
	"trackboard/internal/mood"
	"trackboard/internal/study"
)

const upcomingLimit = 5

// DashboardSummary is everything the dashboard page shows for one day.
type DashboardSummary struct {
	Date        core.Date              `json:"date"`
	Habits      habits.Summary         `json:"habits"`
	HabitWeek   []habits.DayCompletion `json:"habitWeek"`
	Mood        mood.Summary           `json:"mood"`
	Finance     finance.Summary        `json:"finance"`
	Study       study.Summary          `json:"study"`
	Goals       []GoalView             `json:"goals"`
	GoalStats   goals.Stats            `json:"goalStats"`
	Assignments assignments.Stats      `json:"assignments"`
	Upcoming    []core.Assignment      `json:"upcoming"`
}

// snapshot is every collection, loaded together.
type snapshot struct {
	habits      []core.Habit
	moods       []core.MoodEntry
	expenses    []core.Expense
	budget      core.Budget
	sessions    []core.StudySession
	studyState  core.StudyGoalState
	goals       []core.Goal
	assignments []core.Assignment
}

func (d *Dashboard) load(ctx context.Context, today core.Date) (snapshot, error) {
	var s snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		if s.habits, err = d.store.ListHabits(ctx); err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if s.moods, err = d.store.ListMoods(ctx); err != nil {
			return fmt.Errorf("list moods: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if s.expenses, err = d.store.ListExpenses(ctx); err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		s.budget, err = d.budgetFor(ctx, today)
		return err
	})
	g.Go(func() (err error) {
		if s.sessions, err = d.store.ListStudySessions(ctx); err != nil {
			return fmt.Errorf("list study sessions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if s.studyState, err = d.store.GetStudyGoals(ctx); err != nil {
			return fmt.Errorf("get study goals: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if s.goals, err = d.store.ListGoals(ctx); err != nil {
			return fmt.Errorf("list goals: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if s.assignments, err = d.store.ListAssignments(ctx); err != nil {
			return fmt.Errorf("list assignments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// Summary computes the whole dashboard for today.
func (d *Dashboard) Summary(ctx context.Context) (DashboardSummary, error) {
	now, today := d.clock()
	s, err := d.load(ctx, today)
	if err != nil {
		return DashboardSummary{}, err
	}

	upcoming := assignments.Upcoming(s.assignments)
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}

	return DashboardSummary{
		Date:        today,
		Habits:      habits.Summarize(s.habits, today),
		HabitWeek:   habits.WeeklyCompletionGrid(s.habits, datebucket.MondayWeek(today).Dates()),
		Mood:        mood.Summarize(s.moods, today),
		Finance:     finance.Summarize(s.expenses, s.budget, today),
		Study:       study.Summarize(s.sessions, s.studyState, today),
		Goals:       goalViews(s.goals),
		GoalStats:   goals.Summarize(s.goals),
		Assignments: assignments.Summarize(s.assignments, now),
		Upcoming:    upcoming,
	}, nil
}

// CalendarView is one month of per-day activity.
type CalendarView struct {
	Month string                `json:"month"`
	Days  []calendar.DaySummary `json:"days"`
	Stats calendar.Stats        `json:"stats"`
}

// Calendar summarises every day of month. A nil month means the current one.
func (d *Dashboard) Calendar(ctx context.Context, month *datebucket.Interval) (CalendarView, error) {
	iv := datebucket.MonthOf(d.Today())
	if month != nil {
		iv = *month
	}

	var (
		hs  []core.Habit
		es  []core.Expense
		ms  []core.MoodEntry
		grp errgroup.Group
	)
	grp.Go(func() (err error) {
		if hs, err = d.store.ListHabits(ctx); err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		return nil
	})
	grp.Go(func() (err error) {
		if es, err = d.store.ListExpenses(ctx); err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	grp.Go(func() (err error) {
		if ms, err = d.store.ListMoods(ctx); err != nil {
			return fmt.Errorf("list moods: %w", err)
		}
		return nil
	})
	if err := grp.Wait(); err != nil {
		return CalendarView{}, err
	}

	days := calendar.Month(iv, hs, es, ms)
	return CalendarView{
		Month: datebucket.MonthKey(iv.Start),
		Days:  days,
		Stats: calendar.MonthStats(days),
	}, nil
}

// CheckAlerts evaluates budget and habit alerts against the stored
// suppression state, saves the new state and delivers what fired.
func (d *Dashboard) CheckAlerts(ctx context.Context) ([]core.Notification, error) {
	d.alertMu.Lock()
	defer d.alertMu.Unlock()
	now, today := d.clock()

	var (
		expenses []core.Expense
		hs       []core.Habit
		budget   core.Budget
		state    alerts.DedupeState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if expenses, err = d.store.ListExpenses(gctx); err != nil {
			return fmt.Errorf("list expenses: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if hs, err = d.store.ListHabits(gctx); err != nil {
			return fmt.Errorf("list habits: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		budget, err = d.budgetFor(gctx, today)
		return err
	})
	g.Go(func() (err error) {
		if state, err = d.store.LoadAlertState(gctx); err != nil {
			return fmt.Errorf("load alert state: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	next, fired := alerts.Evaluate(state, alerts.Input{
		Now:      now,
		Today:    today,
		Expenses: expenses,
		Budget:   budget,
		Habits:   hs,
	}, d.alertCfg)

	if err := d.store.SaveAlertState(ctx, next); err != nil {
		return nil, fmt.Errorf("save alert state: %w", err)
	}

	out := make([]core.Notification, 0, len(fired))
	for _, a := range fired {
		n := a.Notification(today)
		d.notify(ctx, n)
		out = append(out, n)
	}
	if len(out) > 0 {
		d.logger.InfoContext(ctx, "Alerts fired", log.FieldCount, len(out), log.FieldOperation, log.OpEvaluate)
	}
	return out, nil
}

// checkAlertsQuietly runs CheckAlerts after a write; its failure must not
// fail the write.
func (d *Dashboard) checkAlertsQuietly(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := d.CheckAlerts(ctx); err != nil {
		d.logger.WarnContext(ctx, "Alert check failed", log.FieldError, err)
	}
}
