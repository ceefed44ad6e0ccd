package export

import (
	"bytes"
	"errors"
	"testing"

	"trackboard/internal/core"
)

func TestExpensesCSV(t *testing.T) {
	var buf bytes.Buffer
	err := ExpensesCSV(&buf, []core.Expense{
		{Description: "Lunch, with team", Amount: core.Money{Cents: 1250}, Category: core.CategoryFood, Date: core.NewDate(2025, 3, 5)},
		{Description: "Bus", Amount: core.Money{Cents: 200}, Category: core.CategoryTransport, Date: core.NewDate(2025, 3, 6)},
	})
	if err != nil {
		t.Fatalf("ExpensesCSV: %v", err)
	}
	want := "Date,Description,Category,Amount\n" +
		"2025-03-05,\"Lunch, with team\",food,12.50\n" +
		"2025-03-06,Bus,transport,2.00\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestHabitsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := HabitsCSV(&buf, []core.Habit{{
		Name:           "Read",
		CompletedDates: core.NewDateSet(core.NewDate(2025, 3, 2), core.NewDate(2025, 3, 1)),
	}})
	if err != nil {
		t.Fatalf("HabitsCSV: %v", err)
	}
	want := "Habit Name,Total Completed Days,Completion Dates,Missed Dates\n" +
		"Read,2,2025-03-01; 2025-03-02,None\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestExportRejectsEmptyInput(t *testing.T) {
	var buf bytes.Buffer
	if err := ExpensesCSV(&buf, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("expenses: got %v", err)
	}
	if err := HabitsCSV(&buf, nil); !errors.Is(err, ErrNothingToExport) {
		t.Errorf("habits: got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q for empty input", buf.String())
	}
}

func TestFilename(t *testing.T) {
	if got := Filename("habits", core.NewDate(2025, 3, 12)); got != "habits_2025-03-12.csv" {
		t.Errorf("Filename = %q", got)
	}
}
