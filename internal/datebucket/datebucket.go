// Package datebucket turns calendar days into the week, month and rolling
// windows the aggregators group by. All functions are pure; "today" is always
// passed in.
package datebucket

import (
	"fmt"
	"time"

	"trackboard/internal/core"
)

const monthLayout = "2006-01"

// Interval is an inclusive range of days.
type Interval struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

func (iv Interval) Contains(d core.Date) bool {
	return !d.Before(iv.Start) && !d.After(iv.End)
}

// Len is the number of days in the interval, 0 when End precedes Start.
func (iv Interval) Len() int {
	if iv.End.Before(iv.Start) {
		return 0
	}
	// Dates are UTC midnights so the difference is a whole number of days.
	return int(iv.End.Sub(iv.Start.Time).Hours()/24) + 1
}

// Dates lists every day in the interval, oldest first.
func (iv Interval) Dates() []core.Date {
	n := iv.Len()
	out := make([]core.Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, iv.Start.AddDays(i))
	}
	return out
}

// Today returns the civil date of now in loc. A nil loc means UTC.
func Today(now time.Time, loc *time.Location) core.Date {
	if loc == nil {
		loc = time.UTC
	}
	return core.DateOf(now.In(loc))
}

// WeekOf returns the 7-day interval containing d that starts on weekStart.
func WeekOf(d core.Date, weekStart time.Weekday) Interval {
	offset := (int(d.Weekday()) - int(weekStart) + 7) % 7
	start := d.AddDays(-offset)
	return Interval{Start: start, End: start.AddDays(6)}
}

// MondayWeek is WeekOf with the Monday convention used by habits, mood and finance.
func MondayWeek(d core.Date) Interval {
	return WeekOf(d, time.Monday)
}

// MonthOf returns the calendar month containing d.
func MonthOf(d core.Date) Interval {
	start := core.NewDate(d.Year(), d.Month(), 1)
	// Day 0 of the next month is the last day of this one.
	end := core.NewDate(d.Year(), d.Month()+1, 0)
	return Interval{Start: start, End: end}
}

// LastNDays returns the n days ending on today, inclusive.
func LastNDays(today core.Date, n int) Interval {
	if n < 1 {
		n = 1
	}
	return Interval{Start: today.AddDays(-(n - 1)), End: today}
}

// DayKey returns "YYYY-MM-DD".
func DayKey(d core.Date) string {
	return d.Key()
}

// MonthKey returns "YYYY-MM".
func MonthKey(d core.Date) string {
	return d.Format(monthLayout)
}

// ParseDay parses a "YYYY-MM-DD" key.
func ParseDay(s string) (core.Date, error) {
	return core.ParseDate(s)
}

// ParseMonthKey parses "YYYY-MM" into the month interval.
func ParseMonthKey(s string) (Interval, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: month %q: expected YYYY-MM", core.ErrInvalidInput, s)
	}
	return MonthOf(core.Date{Time: t}), nil
}
