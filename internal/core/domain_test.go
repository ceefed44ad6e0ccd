package core

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: 0}).ValidateNonNegative(); err != nil {
		t.Fatalf("expected zero to be non-negative, got %v", err)
	}
}

func TestExpenseValidate(t *testing.T) {
	good := Expense{
		Date:        NewDate(2025, 1, 1),
		Description: "ok",
		Amount:      Money{Cents: 100},
		Category:    CategoryFood,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	free := good
	free.Amount = Money{}
	if err := free.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	bads := []Expense{
		{Date: Date{Time: time.Time{}}, Description: "a", Amount: Money{Cents: 1}, Category: CategoryFood}, // zero date
		{Date: NewDate(2025, 1, 1), Description: "", Amount: Money{Cents: 1}, Category: CategoryFood},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: -1}, Category: CategoryFood},
		{Date: NewDate(2025, 1, 1), Description: "a", Amount: Money{Cents: 1}, Category: "groceries"},
	}
	for i, e := range bads {
		err := e.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestParseExpenseCategory(t *testing.T) {
	c, err := ParseExpenseCategory(" Food ")
	if err != nil || c != CategoryFood {
		t.Fatalf("expected food, got %q (err=%v)", c, err)
	}
	if _, err := ParseExpenseCategory("rent"); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory, got %v", err)
	}
}

func TestHabitValidateRejectsOverlappingMarks(t *testing.T) {
	d := NewDate(2025, 3, 3)
	h := Habit{Name: "Read", CompletedDates: NewDateSet(d), MissedDates: NewDateSet(d)}
	if err := h.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMoodEntryValidate(t *testing.T) {
	for _, score := range []int{0, 11} {
		if err := (MoodEntry{Date: NewDate(2025, 1, 1), Score: score}).Validate(); err == nil {
			t.Fatalf("score %d should be rejected", score)
		}
	}
	if err := (MoodEntry{Date: NewDate(2025, 1, 1), Score: 7}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestBudgetValidate(t *testing.T) {
	if err := (Budget{PeriodKey: "2025-02"}).Validate(); err != nil {
		t.Fatalf("empty budget should be valid, got %v", err)
	}
	if err := (Budget{PeriodKey: "2025-13"}).Validate(); err == nil {
		t.Fatalf("expected error for bad period key")
	}
	if err := (Budget{PeriodKey: "2025-02", WeeklyLimit: Money{Cents: -1}}).Validate(); err == nil {
		t.Fatalf("expected error for negative limit")
	}
}

func TestStudyGoalStateValidate(t *testing.T) {
	if err := DefaultStudyGoalState().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
	s := DefaultStudyGoalState()
	s.DailyGoalMinutes = 0
	if err := s.Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRecordsRoundTripJSON(t *testing.T) {
	last := NewDate(2025, 2, 28)
	target := NewDate(2025, 12, 31)
	records := []any{
		&Habit{
			ID:             "h1",
			Name:           "Read",
			Color:          "#00ff00",
			CompletedDates: NewDateSet(NewDate(2024, 2, 29), NewDate(2024, 3, 1)),
			MissedDates:    NewDateSet(NewDate(2024, 3, 2)),
			CreatedAt:      time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		},
		&MoodEntry{Date: NewDate(2025, 1, 5), Score: 8, Notes: "good"},
		&Expense{ID: "e1", Description: "lunch", Amount: Money{Cents: 1299}, Category: CategoryFood, Date: NewDate(2025, 1, 5)},
		&Budget{PeriodKey: "2025-01", MonthlyLimit: Money{Cents: 100000}, WeeklyLimit: Money{Cents: 25000}, MonthlySavingsGoal: Money{Cents: 20000}},
		&StudySession{ID: "s1", Subject: "Math", DurationMinutes: 45, Date: NewDate(2025, 1, 5)},
		&StudyGoalState{DailyGoalMinutes: 60, WeeklyGoalMinutes: 300, CurrentStreak: 3, LongestStreak: 9, LastQualifyingDate: &last},
		&Goal{
			ID:                 "g1",
			Title:              "Run",
			TargetValue:        decimal.RequireFromString("50"),
			CurrentValue:       decimal.RequireFromString("12.5"),
			Unit:               "km",
			TargetDate:         &target,
			Milestones:         []decimal.Decimal{decimal.RequireFromString("12.5"), decimal.RequireFromString("25")},
			AchievedMilestones: []decimal.Decimal{decimal.RequireFromString("12.5")},
			Status:             GoalActive,
			CreatedAt:          time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		&Assignment{ID: "a1", Title: "Essay", Subject: "History", Deadline: time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC), Priority: PriorityHigh, Status: AssignmentInProgress},
	}

	for _, rec := range records {
		b, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("marshal %T: %v", rec, err)
		}
		out := reflect.New(reflect.TypeOf(rec).Elem()).Interface()
		if err := json.Unmarshal(b, out); err != nil {
			t.Fatalf("unmarshal %T: %v", rec, err)
		}
		// Re-marshal and compare bytes; decimals and times compare reliably this way.
		b2, err := json.Marshal(out)
		if err != nil {
			t.Fatalf("re-marshal %T: %v", rec, err)
		}
		if string(b) != string(b2) {
			t.Errorf("%T did not round-trip:\n got %s\nwant %s", rec, b2, b)
		}
	}
}

func TestDateSetJSONIsSorted(t *testing.T) {
	s := NewDateSet(NewDate(2025, 1, 3), NewDate(2024, 12, 31), NewDate(2025, 1, 1))
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `["2024-12-31","2025-01-01","2025-01-03"]`
	if string(b) != want {
		t.Fatalf("got %s, want %s", b, want)
	}
	var back DateSet
	if err := json.Unmarshal([]byte(`["2025-02-30"]`), &back); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for impossible date, got %v", err)
	}
}

func TestNullFloatJSON(t *testing.T) {
	b, _ := json.Marshal(struct {
		A NullFloat `json:"a"`
		B NullFloat `json:"b"`
	}{A: SomeFloat(7.5)})
	if string(b) != `{"a":7.5,"b":null}` {
		t.Fatalf("unexpected %s", b)
	}
}
