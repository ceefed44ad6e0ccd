// Package mood averages daily mood scores and classifies their trend.
package mood

import (
	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

// SeriesLength is the window of the mood chart and of the monthly average.
const SeriesLength = 30

// Trend thresholds, in score points.
const (
	ImprovingThreshold = 0.5
	DecliningThreshold = -0.5
)

type Direction string

const (
	Improving Direction = "improving"
	Declining Direction = "declining"
	Stable    Direction = "stable"
	Unknown   Direction = "unknown"
)

// DayScore is one point of the series; Score is nil on days without an entry.
type DayScore struct {
	Date  core.Date `json:"date"`
	Score *int      `json:"score"`
}

// Average is the mean score of entries inside iv. It is invalid when no
// entry falls inside, never zero.
func Average(entries []core.MoodEntry, iv datebucket.Interval) core.NullFloat {
	sum, n := 0, 0
	for _, e := range entries {
		if iv.Contains(e.Date) {
			sum += e.Score
			n++
		}
	}
	if n == 0 {
		return core.NullFloat{}
	}
	return core.SomeFloat(float64(sum) / float64(n))
}

// WeeklyAverage averages the Monday-start week containing today.
func WeeklyAverage(entries []core.MoodEntry, today core.Date) core.NullFloat {
	return Average(entries, datebucket.MondayWeek(today))
}

// MonthlyAverage averages the last 30 days, matching the chart window.
func MonthlyAverage(entries []core.MoodEntry, today core.Date) core.NullFloat {
	return Average(entries, datebucket.LastNDays(today, SeriesLength))
}

// MonthAverage averages one calendar month.
func MonthAverage(entries []core.MoodEntry, month datebucket.Interval) core.NullFloat {
	return Average(entries, month)
}

// Last30DaysSeries returns exactly 30 points, oldest first.
func Last30DaysSeries(entries []core.MoodEntry, today core.Date) []DayScore {
	byDay := make(map[string]int, len(entries))
	for _, e := range entries {
		byDay[e.Date.Key()] = e.Score
	}
	dates := datebucket.LastNDays(today, SeriesLength).Dates()
	out := make([]DayScore, 0, len(dates))
	for _, d := range dates {
		p := DayScore{Date: d}
		if s, ok := byDay[d.Key()]; ok {
			p.Score = &s
		}
		out = append(out, p)
	}
	return out
}

// Trend is weekly minus monthly, invalid unless both are valid.
func Trend(weekly, monthly core.NullFloat) core.NullFloat {
	if !weekly.Valid || !monthly.Valid {
		return core.NullFloat{}
	}
	return core.SomeFloat(weekly.Value - monthly.Value)
}

func Classify(trend core.NullFloat) Direction {
	switch {
	case !trend.Valid:
		return Unknown
	case trend.Value > ImprovingThreshold:
		return Improving
	case trend.Value < DecliningThreshold:
		return Declining
	}
	return Stable
}

// Summary is the mood block of the dashboard.
type Summary struct {
	Today     *int           `json:"today"`
	Weekly    core.NullFloat `json:"weeklyAverage"`
	Monthly   core.NullFloat `json:"monthlyAverage"`
	Trend     core.NullFloat `json:"trend"`
	Direction Direction      `json:"direction"`
	Series    []DayScore     `json:"series"`
}

func Summarize(entries []core.MoodEntry, today core.Date) Summary {
	s := Summary{
		Weekly:  WeeklyAverage(entries, today),
		Monthly: MonthlyAverage(entries, today),
		Series:  Last30DaysSeries(entries, today),
	}
	s.Trend = Trend(s.Weekly, s.Monthly)
	s.Direction = Classify(s.Trend)
	s.Today = s.Series[len(s.Series)-1].Score
	return s
}
