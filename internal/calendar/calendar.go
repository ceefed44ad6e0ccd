// Package calendar joins habits, expenses and moods into per-day summaries
// for the history view.
package calendar

import (
	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

// DaySummary is everything recorded on one day.
type DaySummary struct {
	Date            core.Date  `json:"date"`
	TotalExpenses   core.Money `json:"totalExpensesCents"`
	ExpenseCount    int        `json:"expenseCount"`
	HabitsCompleted int        `json:"habitsCompleted"`
	HabitsMissed    int        `json:"habitsMissed"`
	TotalHabits     int        `json:"totalHabits"`
	Mood            *int       `json:"mood"`
}

// HasActivity reports whether anything was logged on the day.
func (s DaySummary) HasActivity() bool {
	return s.ExpenseCount > 0 || s.HabitsCompleted > 0 || s.HabitsMissed > 0 || s.Mood != nil
}

// Month returns one summary per day of iv, oldest first.
func Month(iv datebucket.Interval, habits []core.Habit, expenses []core.Expense, moods []core.MoodEntry) []DaySummary {
	byDay := make(map[string]*DaySummary, iv.Len())
	out := make([]DaySummary, 0, iv.Len())
	for _, d := range iv.Dates() {
		out = append(out, DaySummary{Date: d, TotalHabits: len(habits)})
	}
	for i := range out {
		byDay[out[i].Date.Key()] = &out[i]
	}

	for _, e := range expenses {
		if s, ok := byDay[e.Date.Key()]; ok {
			s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
			s.ExpenseCount++
		}
	}
	for _, h := range habits {
		for key := range h.CompletedDates {
			if s, ok := byDay[key]; ok {
				s.HabitsCompleted++
			}
		}
		for key := range h.MissedDates {
			if s, ok := byDay[key]; ok {
				s.HabitsMissed++
			}
		}
	}
	for _, m := range moods {
		if s, ok := byDay[m.Date.Key()]; ok {
			score := m.Score
			s.Mood = &score
		}
	}
	return out
}

// Stats totals a month of summaries.
type Stats struct {
	TotalExpenses        core.Money     `json:"totalExpensesCents"`
	TotalHabitsCompleted int            `json:"totalHabitsCompleted"`
	DaysWithMood         int            `json:"daysWithMood"`
	AverageMood          core.NullFloat `json:"averageMood"`
}

func MonthStats(days []DaySummary) Stats {
	var st Stats
	moodSum := 0
	for _, d := range days {
		st.TotalExpenses = st.TotalExpenses.Add(d.TotalExpenses)
		st.TotalHabitsCompleted += d.HabitsCompleted
		if d.Mood != nil {
			st.DaysWithMood++
			moodSum += *d.Mood
		}
	}
	if st.DaysWithMood > 0 {
		st.AverageMood = core.SomeFloat(core.Round1(float64(moodSum) / float64(st.DaysWithMood)))
	}
	return st
}
