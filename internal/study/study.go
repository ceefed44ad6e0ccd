// Package study aggregates study sessions and keeps the daily-goal streak.
package study

import (
	"math"

	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

const bucketDays = 7

// DayBucket is minutes studied on one day.
type DayBucket struct {
	Day     string    `json:"day"`
	Date    core.Date `json:"date"`
	Minutes int       `json:"minutes"`
}

// SubjectMinutes is the total for one subject.
type SubjectMinutes struct {
	Subject string `json:"subject"`
	Minutes int    `json:"minutes"`
}

// TodayTotal sums sessions dated today.
func TodayTotal(sessions []core.StudySession, today core.Date) int {
	return totalIn(sessions, datebucket.Interval{Start: today, End: today})
}

// WeekTotal sums the seven days ending today.
func WeekTotal(sessions []core.StudySession, today core.Date) int {
	return totalIn(sessions, datebucket.LastNDays(today, bucketDays))
}

func totalIn(sessions []core.StudySession, iv datebucket.Interval) int {
	total := 0
	for _, s := range sessions {
		if iv.Contains(s.Date) {
			total += s.DurationMinutes
		}
	}
	return total
}

// WeeklyBuckets returns 7 buckets from 6 days ago through today.
func WeeklyBuckets(sessions []core.StudySession, today core.Date) []DayBucket {
	byDay := make(map[string]int)
	for _, s := range sessions {
		byDay[s.Date.Key()] += s.DurationMinutes
	}
	dates := datebucket.LastNDays(today, bucketDays).Dates()
	out := make([]DayBucket, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayBucket{
			Day:     d.Weekday().String()[:3],
			Date:    d,
			Minutes: byDay[d.Key()],
		})
	}
	return out
}

// SubjectBreakdown totals minutes per subject in first-seen order.
func SubjectBreakdown(sessions []core.StudySession) []SubjectMinutes {
	index := make(map[string]int)
	var out []SubjectMinutes
	for _, s := range sessions {
		i, ok := index[s.Subject]
		if !ok {
			i = len(out)
			index[s.Subject] = i
			out = append(out, SubjectMinutes{Subject: s.Subject})
		}
		out[i].Minutes += s.DurationMinutes
	}
	return out
}

// UpdateStreak advances the streak when todayTotal reaches dailyGoal.
// It is a no-op under the goal and on any later call for the same day.
func UpdateStreak(state core.StudyGoalState, todayTotal, dailyGoal int, today, yesterday core.Date) core.StudyGoalState {
	if todayTotal < dailyGoal {
		return state
	}
	last := state.LastQualifyingDate
	if last != nil && last.Equal(today) {
		return state
	}

	next := state
	if last != nil && last.Equal(yesterday) {
		next.CurrentStreak = state.CurrentStreak + 1
	} else {
		next.CurrentStreak = 1
	}
	next.LongestStreak = max(state.LongestStreak, next.CurrentStreak)
	day := today
	next.LastQualifyingDate = &day
	return next
}

// Advance is UpdateStreak with the state's own daily goal.
func Advance(state core.StudyGoalState, todayTotal int, today core.Date) core.StudyGoalState {
	return UpdateStreak(state, todayTotal, state.DailyGoalMinutes, today, today.AddDays(-1))
}

// ActiveStreak is the streak as shown on a given day: it lapses once a full
// day passes without qualifying.
func ActiveStreak(state core.StudyGoalState, today core.Date) int {
	last := state.LastQualifyingDate
	if last == nil {
		return 0
	}
	if last.Equal(today) || last.Equal(today.AddDays(-1)) {
		return state.CurrentStreak
	}
	return 0
}

// Progress is minutes against a goal, capped at 100 percent.
func Progress(minutes, goal int) int {
	if goal <= 0 {
		return 0
	}
	return int(math.Min(math.Round(100*float64(minutes)/float64(goal)), 100))
}

// Summary is the study block of the dashboard.
type Summary struct {
	TodayMinutes   int              `json:"todayMinutes"`
	WeekMinutes    int              `json:"weekMinutes"`
	DailyGoal      int              `json:"dailyGoalMinutes"`
	WeeklyGoal     int              `json:"weeklyGoalMinutes"`
	DailyProgress  int              `json:"dailyProgress"`
	WeeklyProgress int              `json:"weeklyProgress"`
	CurrentStreak  int              `json:"currentStreak"`
	LongestStreak  int              `json:"longestStreak"`
	Buckets        []DayBucket      `json:"buckets"`
	Subjects       []SubjectMinutes `json:"subjects"`
	SessionsLogged int              `json:"sessionsLogged"`
	TotalMinutes   int              `json:"totalMinutes"`
}

func Summarize(sessions []core.StudySession, state core.StudyGoalState, today core.Date) Summary {
	s := Summary{
		TodayMinutes:   TodayTotal(sessions, today),
		WeekMinutes:    WeekTotal(sessions, today),
		DailyGoal:      state.DailyGoalMinutes,
		WeeklyGoal:     state.WeeklyGoalMinutes,
		CurrentStreak:  ActiveStreak(state, today),
		LongestStreak:  state.LongestStreak,
		Buckets:        WeeklyBuckets(sessions, today),
		Subjects:       SubjectBreakdown(sessions),
		SessionsLogged: len(sessions),
	}
	for _, ss := range sessions {
		s.TotalMinutes += ss.DurationMinutes
	}
	s.DailyProgress = Progress(s.TodayMinutes, s.DailyGoal)
	s.WeeklyProgress = Progress(s.WeekMinutes, s.WeeklyGoal)
	return s
}
