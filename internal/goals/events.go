package goals

import (
	"fmt"

	"github.com/shopspring/decimal"

	"trackboard/internal/core"
)

// Event is something ApplyProgress detected. The set of events is closed:
// Completed and MilestoneReached.
type Event interface {
	isEvent()
	// Notification renders the event for the presentation side.
	Notification(today core.Date) core.Notification
}

// Completed fires once when a goal first reaches its target.
type Completed struct {
	GoalID string
	Title  string
	Value  decimal.Decimal
}

// MilestoneReached fires once per milestone.
type MilestoneReached struct {
	GoalID    string
	Title     string
	Milestone decimal.Decimal
	Percent   float64
}

func (Completed) isEvent()        {}
func (MilestoneReached) isEvent() {}

func (e Completed) Notification(today core.Date) core.Notification {
	return core.Notification{
		Kind:    core.NotifyGoalCompleted,
		Level:   core.LevelSuccess,
		Title:   "Goal Achieved!",
		Message: fmt.Sprintf("Congratulations! You've completed %q!", e.Title),
		Date:    today,
		Metadata: map[string]string{
			"goal_id": e.GoalID,
			"value":   e.Value.String(),
		},
	}
}

func (e MilestoneReached) Notification(today core.Date) core.Notification {
	return core.Notification{
		Kind:    core.NotifyMilestoneReached,
		Level:   core.LevelSuccess,
		Title:   "Milestone Reached!",
		Message: fmt.Sprintf("You've reached %.0f%% of %q!", e.Percent, e.Title),
		Date:    today,
		Metadata: map[string]string{
			"goal_id":   e.GoalID,
			"milestone": e.Milestone.String(),
		},
	}
}
