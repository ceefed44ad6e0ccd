package core

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category ExpenseCategory `json:"category"`
	Amount   Money           `json:"amountCents"`
}

// NullFloat is a float that may be absent. Absence marshals to JSON null,
// so "no data" is never confused with zero.
type NullFloat struct {
	Value float64
	Valid bool
}

func SomeFloat(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = SomeFloat(v)
	return nil
}

// String formats with one decimal, or "-" when absent.
func (n NullFloat) String() string {
	if !n.Valid || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return "-"
	}
	return strconv.FormatFloat(n.Value, 'f', 1, 64)
}

// Round1 rounds to one decimal place for display.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

type NotificationKind string

const (
	NotifyBudgetNear       NotificationKind = "budget_near"
	NotifyBudgetExceeded   NotificationKind = "budget_exceeded"
	NotifyHabitReminder    NotificationKind = "habit_reminder"
	NotifyGoalCompleted    NotificationKind = "goal_completed"
	NotifyMilestoneReached NotificationKind = "milestone_reached"
)

type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelError   NotificationLevel = "error"
)

// Notification is what the presentation side receives. It carries no display state.
type Notification struct {
	Kind      NotificationKind  `json:"kind"`
	Level     NotificationLevel `json:"level"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Date      Date              `json:"date"`
	CreatedAt time.Time         `json:"createdAt"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
