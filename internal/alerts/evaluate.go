package alerts

import (
	"fmt"
	"strings"
	"time"

	"trackboard/internal/core"
	"trackboard/internal/finance"
	"trackboard/internal/habits"
)

// DefaultReminderHour is when the evening habit reminder becomes due.
const DefaultReminderHour = 18

type Config struct {
	// ReminderHour is the local hour (0-23) from which the habit reminder may fire.
	ReminderHour int
}

func DefaultConfig() Config {
	return Config{ReminderHour: DefaultReminderHour}
}

// Input is one evaluation's snapshot. Now must be in the user's location;
// its hour drives the habit reminder.
type Input struct {
	Now      time.Time
	Today    core.Date
	Expenses []core.Expense
	Budget   core.Budget
	Habits   []core.Habit
}

// Alert is one alert to present.
type Alert struct {
	Key        Key
	Kind       core.NotificationKind
	Period     finance.PeriodKind
	Status     finance.Status
	Incomplete []string
}

// Evaluate returns the alerts due now and the updated suppression state.
// Each (metric, threshold) fires at most once per day; a budget dropping
// below the near threshold re-arms both of its alerts. state is not modified.
func Evaluate(state DedupeState, in Input, cfg Config) (DedupeState, []Alert) {
	next := state.Prune(in.Today)
	var out []Alert

	for _, p := range finance.Periods() {
		status := finance.PeriodStatus(p, in.Expenses, in.Budget, in.Today)
		if status.Limit.Cents <= 0 {
			continue
		}
		metric := metricFor(p.Kind())
		near := Key{Metric: metric, Threshold: int(finance.NearThreshold)}
		over := Key{Metric: metric, Threshold: int(finance.OverThreshold)}

		switch status.State {
		case finance.Near:
			if !next.FiredOn(near, in.Today) {
				next.mark(near, in.Today)
				out = append(out, Alert{Key: near, Kind: core.NotifyBudgetNear, Period: p.Kind(), Status: status})
			}
		case finance.Over:
			if !next.FiredOn(over, in.Today) {
				next.mark(over, in.Today)
				out = append(out, Alert{Key: over, Kind: core.NotifyBudgetExceeded, Period: p.Kind(), Status: status})
			}
		default:
			next.clear(near, over)
		}
	}

	reminder := Key{Metric: MetricHabitReminder}
	if in.Now.Hour() >= cfg.ReminderHour && len(in.Habits) > 0 && !next.FiredOn(reminder, in.Today) {
		if pending := habits.Incomplete(in.Habits, in.Today); len(pending) > 0 {
			names := make([]string, 0, len(pending))
			for _, h := range pending {
				names = append(names, h.Name)
			}
			next.mark(reminder, in.Today)
			out = append(out, Alert{Key: reminder, Kind: core.NotifyHabitReminder, Incomplete: names})
		}
	}
	return next, out
}

func metricFor(kind finance.PeriodKind) Metric {
	if kind == finance.PeriodWeekly {
		return MetricWeeklyBudget
	}
	return MetricMonthlyBudget
}

// Notification renders the alert.
func (a Alert) Notification(today core.Date) core.Notification {
	n := core.Notification{
		Kind:     a.Kind,
		Date:     today,
		Metadata: map[string]string{"alert": a.Key.String()},
	}
	label := string(a.Period)
	switch a.Kind {
	case core.NotifyBudgetNear:
		n.Level = core.LevelWarning
		n.Title = "Budget Alert - " + capitalize(label)
		n.Message = fmt.Sprintf("You've used %.0f%% of your %s budget. %s remaining.",
			a.Status.ProgressPercent, label, a.Status.Remaining)
	case core.NotifyBudgetExceeded:
		n.Level = core.LevelError
		n.Title = "Budget Exceeded - " + capitalize(label)
		n.Message = fmt.Sprintf("You've exceeded your %s budget by %s.",
			label, a.Status.Total.Sub(a.Status.Limit))
	case core.NotifyHabitReminder:
		n.Level = core.LevelInfo
		n.Title = "Habit Reminder"
		plural := ""
		if len(a.Incomplete) > 1 {
			plural = "s"
		}
		n.Message = fmt.Sprintf("You have %d habit%s not completed today. Don't break your streak!", len(a.Incomplete), plural)
		n.Metadata["habits"] = strings.Join(a.Incomplete, ", ")
	}
	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
