package habits

import (
	"trackboard/internal/core"
)

// DayCompletion is one cell of the weekly grid.
type DayCompletion struct {
	Date       core.Date `json:"date"`
	Weekday    string    `json:"weekday"`
	Completed  int       `json:"completed"`
	Total      int       `json:"total"`
	Percentage int       `json:"percentage"`
}

// WeeklyCompletionGrid reports, per day, how many habits were completed.
func WeeklyCompletionGrid(habits []core.Habit, weekDates []core.Date) []DayCompletion {
	out := make([]DayCompletion, 0, len(weekDates))
	for _, d := range weekDates {
		completed := 0
		for _, h := range habits {
			if h.CompletedDates.Has(d) {
				completed++
			}
		}
		out = append(out, DayCompletion{
			Date:       d,
			Weekday:    d.Weekday().String()[:3],
			Completed:  completed,
			Total:      len(habits),
			Percentage: percent(completed, len(habits)),
		})
	}
	return out
}

// Progress counts habits completed on one day.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

func TodayProgress(habits []core.Habit, today core.Date) Progress {
	p := Progress{Total: len(habits)}
	for _, h := range habits {
		if h.CompletedDates.Has(today) {
			p.Completed++
		}
	}
	p.Percentage = percent(p.Completed, p.Total)
	return p
}

// Incomplete returns the habits not completed on day, in input order.
func Incomplete(habits []core.Habit, day core.Date) []core.Habit {
	var out []core.Habit
	for _, h := range habits {
		if !h.CompletedDates.Has(day) {
			out = append(out, h)
		}
	}
	return out
}

// HabitStats is the per-habit line of the dashboard.
type HabitStats struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Color         string           `json:"color,omitempty"`
	CurrentStreak int              `json:"currentStreak"`
	LongestStreak int              `json:"longestStreak"`
	Today         core.HabitStatus `json:"today"`
}

// Summary rolls up streaks across all habits.
type Summary struct {
	Habits            []HabitStats `json:"habits"`
	ActiveStreaks     int          `json:"activeStreaks"`
	BestCurrentStreak int          `json:"bestCurrentStreak"`
	Today             Progress     `json:"today"`
}

func Summarize(habits []core.Habit, today core.Date) Summary {
	s := Summary{
		Habits: make([]HabitStats, 0, len(habits)),
		Today:  TodayProgress(habits, today),
	}
	for _, h := range habits {
		st := HabitStats{
			ID:            h.ID,
			Name:          h.Name,
			Color:         h.Color,
			CurrentStreak: Streak(h, today),
			LongestStreak: LongestStreak(h),
			Today:         StatusOn(h, today),
		}
		if st.CurrentStreak > 0 {
			s.ActiveStreaks++
		}
		if st.CurrentStreak > s.BestCurrentStreak {
			s.BestCurrentStreak = st.CurrentStreak
		}
		s.Habits = append(s.Habits, st)
	}
	return s
}
