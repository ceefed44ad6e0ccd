package calendar

import (
	"testing"

	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

func TestMonth(t *testing.T) {
	march := datebucket.MonthOf(core.NewDate(2025, 3, 1))
	d5 := core.NewDate(2025, 3, 5)
	habits := []core.Habit{
		{Name: "Read", CompletedDates: core.NewDateSet(d5), MissedDates: core.NewDateSet(core.NewDate(2025, 3, 6))},
		{Name: "Run", CompletedDates: core.NewDateSet(d5, core.NewDate(2025, 2, 28))},
	}
	expenses := []core.Expense{
		{Amount: core.Money{Cents: 1250}, Category: core.CategoryFood, Date: d5},
		{Amount: core.Money{Cents: 750}, Category: core.CategoryTransport, Date: d5},
		{Amount: core.Money{Cents: 9999}, Category: core.CategoryFood, Date: core.NewDate(2025, 4, 1)},
	}
	moods := []core.MoodEntry{{Date: d5, Score: 7}, {Date: core.NewDate(2025, 3, 7), Score: 4}}

	days := Month(march, habits, expenses, moods)
	if len(days) != 31 {
		t.Fatalf("days = %d, want 31", len(days))
	}
	got := days[4]
	if !got.Date.Equal(d5) {
		t.Fatalf("day 4 is %s", got.Date)
	}
	if got.TotalExpenses.Cents != 2000 || got.ExpenseCount != 2 {
		t.Errorf("expenses = %s / %d", got.TotalExpenses, got.ExpenseCount)
	}
	if got.HabitsCompleted != 2 || got.TotalHabits != 2 || got.Mood == nil || *got.Mood != 7 {
		t.Errorf("summary = %+v", got)
	}
	if days[5].HabitsMissed != 1 || !days[5].HasActivity() {
		t.Errorf("missed day = %+v", days[5])
	}
	if days[0].HasActivity() {
		t.Errorf("empty day reports activity: %+v", days[0])
	}

	st := MonthStats(days)
	if st.TotalExpenses.Cents != 2000 || st.TotalHabitsCompleted != 2 || st.DaysWithMood != 2 {
		t.Errorf("stats = %+v", st)
	}
	if !st.AverageMood.Valid || st.AverageMood.Value != 5.5 {
		t.Errorf("average mood = %+v", st.AverageMood)
	}
}

func TestMonthStatsWithoutMood(t *testing.T) {
	st := MonthStats(Month(datebucket.MonthOf(core.NewDate(2025, 2, 1)), nil, nil, nil))
	if st.AverageMood.Valid || st.DaysWithMood != 0 {
		t.Errorf("stats = %+v", st)
	}
}
