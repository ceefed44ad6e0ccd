// Package assignments summarises coursework deadlines.
package assignments

import (
	"math"
	"sort"
	"time"

	"trackboard/internal/core"
)

type Stats struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	InProgress     int `json:"inProgress"`
	NotStarted     int `json:"notStarted"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completionRate"`
}

// IsOverdue reports whether a is unfinished and its deadline has passed.
func IsOverdue(a core.Assignment, now time.Time) bool {
	return a.Status != core.AssignmentCompleted && a.Deadline.Before(now)
}

// Summarize counts assignments by status. Overdue ones are counted in
// Overdue as well as under their status; NotStarted excludes them.
func Summarize(list []core.Assignment, now time.Time) Stats {
	st := Stats{Total: len(list)}
	for _, a := range list {
		switch a.Status {
		case core.AssignmentCompleted:
			st.Completed++
		case core.AssignmentInProgress:
			st.InProgress++
		}
		if IsOverdue(a, now) {
			st.Overdue++
		}
	}
	st.NotStarted = max(0, st.Total-st.Completed-st.InProgress-st.Overdue)
	if st.Total > 0 {
		st.CompletionRate = int(math.Round(float64(st.Completed) * 100 / float64(st.Total)))
	}
	return st
}

// Upcoming returns unfinished assignments ordered by deadline, then priority.
func Upcoming(list []core.Assignment) []core.Assignment {
	out := make([]core.Assignment, 0, len(list))
	for _, a := range list {
		if a.Status != core.AssignmentCompleted {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return rank(out[i].Priority) < rank(out[j].Priority)
	})
	return out
}

func rank(p core.Priority) int {
	switch p {
	case core.PriorityHigh:
		return 0
	case core.PriorityMedium:
		return 1
	}
	return 2
}
