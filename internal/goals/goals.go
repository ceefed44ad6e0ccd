// Package goals tracks progress toward numeric goals and detects completion
// and milestone crossings. Values are exact decimals so milestones such as
// 12.5 compare reliably.
package goals

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"trackboard/internal/core"
)

var (
	hundred = decimal.NewFromInt(100)

	// defaultFractions are the milestone shares of the target created with a goal.
	defaultFractions = []decimal.Decimal{
		decimal.RequireFromString("0.25"),
		decimal.RequireFromString("0.5"),
		decimal.RequireFromString("0.75"),
	}
)

// DefaultMilestones returns 25%, 50% and 75% of target, ascending and unique.
func DefaultMilestones(target decimal.Decimal) []decimal.Decimal {
	ms := make([]decimal.Decimal, 0, len(defaultFractions))
	for _, f := range defaultFractions {
		ms = append(ms, target.Mul(f))
	}
	return normalize(ms)
}

// NewGoal prepares a draft for storage. The target must be positive. Empty
// milestones get the defaults; milestones already covered by the starting
// value are recorded as achieved without events.
func NewGoal(draft core.Goal) (core.Goal, error) {
	g := draft
	g.Title = strings.TrimSpace(g.Title)
	if !g.TargetValue.IsPositive() {
		return core.Goal{}, fmt.Errorf("%w: target value must be positive, got %s", core.ErrInvalidInput, g.TargetValue)
	}
	if g.CurrentValue.IsNegative() {
		return core.Goal{}, fmt.Errorf("%w: current value cannot be negative, got %s", core.ErrInvalidInput, g.CurrentValue)
	}
	for _, m := range g.Milestones {
		if !m.IsPositive() {
			return core.Goal{}, fmt.Errorf("%w: milestone must be positive, got %s", core.ErrInvalidInput, m)
		}
	}

	if len(g.Milestones) == 0 {
		g.Milestones = DefaultMilestones(g.TargetValue)
	} else {
		g.Milestones = normalize(g.Milestones)
	}

	g.AchievedMilestones = nil
	for _, m := range g.Milestones {
		if g.CurrentValue.GreaterThanOrEqual(m) {
			g.AchievedMilestones = append(g.AchievedMilestones, m)
		}
	}
	g.Status = core.GoalActive
	if g.CurrentValue.GreaterThanOrEqual(g.TargetValue) {
		g.Status = core.GoalCompleted
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// ProgressPercent is current/target as a percentage, capped at 100.
// It is 0 when the target is not positive.
func ProgressPercent(g core.Goal) float64 {
	if !g.TargetValue.IsPositive() {
		return 0
	}
	p := g.CurrentValue.Div(g.TargetValue).Mul(hundred)
	if p.GreaterThan(hundred) {
		return 100
	}
	return p.InexactFloat64()
}

// ApplyProgress sets the current value and reports what it triggered:
// Completed first (only on the transition into completed), then one
// MilestoneReached per newly covered milestone, ascending. The input goal
// is not modified. A completed goal stays completed if the value drops.
func ApplyProgress(g core.Goal, newValue decimal.Decimal) (core.Goal, []Event, error) {
	if newValue.IsNegative() {
		return g, nil, fmt.Errorf("%w: progress value cannot be negative, got %s", core.ErrInvalidInput, newValue)
	}

	out := g
	out.CurrentValue = newValue
	out.Milestones = slices.Clone(g.Milestones)
	out.AchievedMilestones = slices.Clone(g.AchievedMilestones)

	var events []Event
	if g.TargetValue.IsPositive() && newValue.GreaterThanOrEqual(g.TargetValue) && g.Status != core.GoalCompleted {
		out.Status = core.GoalCompleted
		events = append(events, Completed{GoalID: g.ID, Title: g.Title, Value: newValue})
	}

	for _, m := range normalize(out.Milestones) {
		if newValue.LessThan(m) || containsValue(out.AchievedMilestones, m) {
			continue
		}
		out.AchievedMilestones = append(out.AchievedMilestones, m)
		events = append(events, MilestoneReached{
			GoalID:    g.ID,
			Title:     g.Title,
			Milestone: m,
			Percent:   milestonePercent(m, g.TargetValue),
		})
	}
	out.AchievedMilestones = normalize(out.AchievedMilestones)
	return out, events, nil
}

// SetStatus changes the status by hand, e.g. pausing or reactivating.
func SetStatus(g core.Goal, status core.GoalStatus) (core.Goal, error) {
	if !status.IsValid() {
		return g, fmt.Errorf("%w %q", core.ErrInvalidStatus, status)
	}
	g.Status = status
	return g, nil
}

func milestonePercent(m, target decimal.Decimal) float64 {
	if !target.IsPositive() {
		return 0
	}
	return m.Div(target).Mul(hundred).Round(0).InexactFloat64()
}

func containsValue(set []decimal.Decimal, v decimal.Decimal) bool {
	return slices.ContainsFunc(set, v.Equal)
}

// normalize sorts ascending and drops numerically equal duplicates (2.50 == 2.5).
func normalize(in []decimal.Decimal) []decimal.Decimal {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b decimal.Decimal) int { return a.Cmp(b) })
	return slices.CompactFunc(out, func(a, b decimal.Decimal) bool { return a.Equal(b) })
}

// Stats summarizes a goal list for the dashboard.
type Stats struct {
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Paused    int `json:"paused"`
}

func Summarize(list []core.Goal) Stats {
	var s Stats
	for _, g := range list {
		switch g.Status {
		case core.GoalActive:
			s.Active++
		case core.GoalCompleted:
			s.Completed++
		case core.GoalPaused:
			s.Paused++
		}
	}
	return s
}
