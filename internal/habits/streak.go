// Package habits derives streaks and completion stats from habit day marks.
package habits

import (
	"fmt"
	"math"

	"trackboard/internal/core"
)

// Streak counts consecutive completed days ending today, or ending yesterday
// when today is not marked yet. Missed marks break the walk like unmarked days.
func Streak(h core.Habit, today core.Date) int {
	if len(h.CompletedDates) == 0 {
		return 0
	}
	day := today
	if !h.CompletedDates.Has(today) {
		day = today.AddDays(-1)
		if !h.CompletedDates.Has(day) {
			return 0
		}
	}
	count := 0
	for h.CompletedDates.Has(day) {
		count++
		day = day.AddDays(-1)
	}
	return count
}

// LongestStreak is the longest run of consecutive completed days in the history.
func LongestStreak(h core.Habit) int {
	best, run := 0, 0
	var prev core.Date
	for i, d := range h.CompletedDates.Dates() {
		if i > 0 && d.Equal(prev.AddDays(1)) {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
		prev = d
	}
	return best
}

// SetStatus marks day on a copy of h. Completed and missed are mutually
// exclusive; HabitCleared removes both marks.
func SetStatus(h core.Habit, day core.Date, status core.HabitStatus) (core.Habit, error) {
	if !status.IsValid() {
		return h, fmt.Errorf("%w %q", core.ErrInvalidStatus, status)
	}
	if err := day.Validate(); err != nil {
		return h, err
	}
	out := h
	switch status {
	case core.HabitCompleted:
		out.CompletedDates = h.CompletedDates.With(day)
		out.MissedDates = h.MissedDates.Without(day)
	case core.HabitMissed:
		out.CompletedDates = h.CompletedDates.Without(day)
		out.MissedDates = h.MissedDates.With(day)
	case core.HabitCleared:
		out.CompletedDates = h.CompletedDates.Without(day)
		out.MissedDates = h.MissedDates.Without(day)
	}
	return out, nil
}

// StatusOn reports the mark for day.
func StatusOn(h core.Habit, day core.Date) core.HabitStatus {
	switch {
	case h.CompletedDates.Has(day):
		return core.HabitCompleted
	case h.MissedDates.Has(day):
		return core.HabitMissed
	}
	return core.HabitCleared
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}
