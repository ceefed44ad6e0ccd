package datebucket

import (
	"errors"
	"testing"
	"time"

	"trackboard/internal/core"
)

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name      string
		day       core.Date
		weekStart time.Weekday
		wantStart core.Date
		wantEnd   core.Date
	}{
		{"monday itself", core.NewDate(2025, 1, 6), time.Monday, core.NewDate(2025, 1, 6), core.NewDate(2025, 1, 12)},
		{"sunday belongs to previous monday", core.NewDate(2025, 1, 12), time.Monday, core.NewDate(2025, 1, 6), core.NewDate(2025, 1, 12)},
		{"year rollover", core.NewDate(2025, 1, 1), time.Monday, core.NewDate(2024, 12, 30), core.NewDate(2025, 1, 5)},
		{"leap day", core.NewDate(2024, 2, 29), time.Monday, core.NewDate(2024, 2, 26), core.NewDate(2024, 3, 3)},
		{"sunday convention", core.NewDate(2025, 1, 8), time.Sunday, core.NewDate(2025, 1, 5), core.NewDate(2025, 1, 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekOf(tt.day, tt.weekStart)
			if !got.Start.Equal(tt.wantStart) || !got.End.Equal(tt.wantEnd) {
				t.Errorf("WeekOf(%s) = %s..%s, want %s..%s", tt.day, got.Start, got.End, tt.wantStart, tt.wantEnd)
			}
			if got.Len() != 7 {
				t.Errorf("week length = %d, want 7", got.Len())
			}
			if !got.Contains(tt.day) {
				t.Errorf("week does not contain %s", tt.day)
			}
		})
	}
}

func TestMonthOf(t *testing.T) {
	tests := []struct {
		day     core.Date
		wantEnd core.Date
	}{
		{core.NewDate(2024, 2, 10), core.NewDate(2024, 2, 29)},
		{core.NewDate(2025, 2, 10), core.NewDate(2025, 2, 28)},
		{core.NewDate(2025, 12, 31), core.NewDate(2025, 12, 31)},
		{core.NewDate(2025, 4, 1), core.NewDate(2025, 4, 30)},
	}
	for _, tt := range tests {
		got := MonthOf(tt.day)
		if got.Start.Day() != 1 || got.Start.Month() != tt.day.Month() {
			t.Errorf("MonthOf(%s).Start = %s", tt.day, got.Start)
		}
		if !got.End.Equal(tt.wantEnd) {
			t.Errorf("MonthOf(%s).End = %s, want %s", tt.day, got.End, tt.wantEnd)
		}
	}
}

func TestLastNDays(t *testing.T) {
	today := core.NewDate(2025, 3, 1)
	iv := LastNDays(today, 30)
	dates := iv.Dates()
	if len(dates) != 30 {
		t.Fatalf("expected 30 dates, got %d", len(dates))
	}
	if !dates[29].Equal(today) {
		t.Errorf("last date = %s, want %s", dates[29], today)
	}
	if want := core.NewDate(2025, 1, 31); !dates[0].Equal(want) {
		t.Errorf("first date = %s, want %s", dates[0], want)
	}
}

func TestKeys(t *testing.T) {
	d := core.NewDate(2025, 7, 4)
	if DayKey(d) != "2025-07-04" {
		t.Errorf("DayKey = %s", DayKey(d))
	}
	if MonthKey(d) != "2025-07" {
		t.Errorf("MonthKey = %s", MonthKey(d))
	}
}

func TestParse(t *testing.T) {
	if _, err := ParseDay("2025-13-01"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := ParseDay("yesterday"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	iv, err := ParseMonthKey("2024-02")
	if err != nil {
		t.Fatalf("ParseMonthKey: %v", err)
	}
	if iv.Len() != 29 {
		t.Errorf("Feb 2024 length = %d, want 29", iv.Len())
	}
	if _, err := ParseMonthKey("2024/02"); !errors.Is(err, core.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestToday(t *testing.T) {
	// 23:30 UTC on Jan 1 is already Jan 2 in Rome.
	now := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if got := Today(now, rome); !got.Equal(core.NewDate(2025, 1, 2)) {
		t.Errorf("Today in Rome = %s", got)
	}
	if got := Today(now, nil); !got.Equal(core.NewDate(2025, 1, 1)) {
		t.Errorf("Today in UTC = %s", got)
	}
}
