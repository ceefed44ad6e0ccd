// Package export writes expenses and habits as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"trackboard/internal/core"
)

// ErrNothingToExport is returned for an empty input.
var ErrNothingToExport = errors.New("nothing to export")

var (
	expenseHeader = []string{"Date", "Description", "Category", "Amount"}
	habitHeader   = []string{"Habit Name", "Total Completed Days", "Completion Dates", "Missed Dates"}
)

// Filename returns the download name for kind on day, e.g. "expenses_2025-03-12.csv".
func Filename(kind string, day core.Date) string {
	return fmt.Sprintf("%s_%s.csv", kind, day.Key())
}

// ExpenseRow is the exported form of one expense.
func ExpenseRow(e core.Expense) []string {
	return []string{e.Date.Key(), e.Description, string(e.Category), e.Amount.String()}
}

// HabitRow is the exported form of one habit.
func HabitRow(h core.Habit) []string {
	return []string{
		h.Name,
		strconv.Itoa(h.CompletedDates.Len()),
		joinDates(h.CompletedDates),
		joinDates(h.MissedDates),
	}
}

func joinDates(s core.DateSet) string {
	if s.Len() == 0 {
		return "None"
	}
	return strings.Join(s.Keys(), "; ")
}

func ExpensesCSV(w io.Writer, expenses []core.Expense) error {
	if len(expenses) == 0 {
		return ErrNothingToExport
	}
	rows := make([][]string, 0, len(expenses))
	for _, e := range expenses {
		rows = append(rows, ExpenseRow(e))
	}
	return writeCSV(w, expenseHeader, rows)
}

func HabitsCSV(w io.Writer, habits []core.Habit) error {
	if len(habits) == 0 {
		return ErrNothingToExport
	}
	rows := make([][]string, 0, len(habits))
	for _, h := range habits {
		rows = append(rows, HabitRow(h))
	}
	return writeCSV(w, habitHeader, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}
