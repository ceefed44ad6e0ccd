package mood

import (
	"math"
	"testing"

	"trackboard/internal/core"
	"trackboard/internal/datebucket"
)

var today = core.NewDate(2025, 3, 12) // Wednesday; week starts Mar 10

func entry(offset, score int) core.MoodEntry {
	return core.MoodEntry{Date: today.AddDays(-offset), Score: score}
}

func TestAverage(t *testing.T) {
	entries := []core.MoodEntry{entry(0, 8), entry(1, 6), entry(2, 4), entry(10, 1)}

	got := WeeklyAverage(entries, today)
	if !got.Valid || got.Value != 6 {
		t.Errorf("WeeklyAverage = %+v, want 6", got)
	}

	got = MonthlyAverage(entries, today)
	if !got.Valid || got.Value != 4.75 {
		t.Errorf("MonthlyAverage = %+v, want 4.75", got)
	}
}

func TestAverageEmptyIsNull(t *testing.T) {
	iv := datebucket.LastNDays(today, 7)
	for _, entries := range [][]core.MoodEntry{nil, {entry(20, 5)}} {
		got := Average(entries, iv)
		if got.Valid {
			t.Fatalf("expected null average, got %+v", got)
		}
		if math.IsNaN(got.Value) {
			t.Fatalf("null average carries NaN")
		}
	}
}

func TestLast30DaysSeries(t *testing.T) {
	series := Last30DaysSeries([]core.MoodEntry{entry(0, 7), entry(29, 3), entry(30, 9)}, today)
	if len(series) != 30 {
		t.Fatalf("series length = %d, want 30", len(series))
	}
	if series[0].Score == nil || *series[0].Score != 3 {
		t.Errorf("oldest point = %+v, want 3", series[0])
	}
	if series[29].Score == nil || *series[29].Score != 7 {
		t.Errorf("today point = %+v, want 7", series[29])
	}
	if series[15].Score != nil {
		t.Errorf("empty day should be nil, got %d", *series[15].Score)
	}
	if !series[29].Date.Equal(today) {
		t.Errorf("last date = %s", series[29].Date)
	}
}

func TestTrendAndClassify(t *testing.T) {
	tests := []struct {
		name    string
		weekly  core.NullFloat
		monthly core.NullFloat
		want    Direction
	}{
		{"improving", core.SomeFloat(7), core.SomeFloat(6), Improving},
		{"declining", core.SomeFloat(5), core.SomeFloat(6), Declining},
		{"exactly half is stable", core.SomeFloat(6.5), core.SomeFloat(6), Stable},
		{"minus half is stable", core.SomeFloat(5.5), core.SomeFloat(6), Stable},
		{"missing weekly", core.NullFloat{}, core.SomeFloat(6), Unknown},
		{"missing monthly", core.SomeFloat(6), core.NullFloat{}, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(Trend(tt.weekly, tt.monthly)); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]core.MoodEntry{entry(0, 9), entry(20, 3)}, today)
	if s.Today == nil || *s.Today != 9 {
		t.Fatalf("today = %v", s.Today)
	}
	if s.Direction != Improving {
		t.Errorf("direction = %s, want improving (trend %+v)", s.Direction, s.Trend)
	}
	empty := Summarize(nil, today)
	if empty.Today != nil || empty.Direction != Unknown || empty.Weekly.Valid {
		t.Errorf("empty summary = %+v", empty)
	}
}
