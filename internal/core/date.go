package core

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the canonical day key format.
const DateLayout = "2006-01-02"

// Date is a civil calendar day, stored as midnight UTC.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day.
// Out-of-range values normalize the way time.Date does (Jan 32 -> Feb 1).
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a "YYYY-MM-DD" key.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q: expected YYYY-MM-DD", ErrInvalidInput, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidInput)
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// Key returns the "YYYY-MM-DD" form.
func (d Date) Key() string {
	return d.Format(DateLayout)
}

func (d Date) String() string {
	return d.Key()
}

// AddDays moves d by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

// IsEmpty returns true if the date is zero (for optional dates)
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Key())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: date must be a string", ErrInvalidInput)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateSet is a set of days keyed by "YYYY-MM-DD".
// It marshals to a sorted JSON array.
type DateSet map[string]struct{}

func NewDateSet(days ...Date) DateSet {
	s := make(DateSet, len(days))
	for _, d := range days {
		s[d.Key()] = struct{}{}
	}
	return s
}

func (s DateSet) Has(d Date) bool {
	_, ok := s[d.Key()]
	return ok
}

func (s DateSet) Len() int { return len(s) }

// Clone returns an independent copy; a nil set clones to an empty one.
func (s DateSet) Clone() DateSet {
	out := make(DateSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// With returns a copy containing d.
func (s DateSet) With(d Date) DateSet {
	out := s.Clone()
	out[d.Key()] = struct{}{}
	return out
}

// Without returns a copy lacking d.
func (s DateSet) Without(d Date) DateSet {
	out := s.Clone()
	delete(out, d.Key())
	return out
}

// Keys returns the sorted day keys.
func (s DateSet) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Dates returns the members in ascending order. Malformed keys are skipped.
func (s DateSet) Dates() []Date {
	keys := s.Keys()
	out := make([]Date, 0, len(keys))
	for _, k := range keys {
		if d, err := ParseDate(k); err == nil {
			out = append(out, d)
		}
	}
	return out
}

func (s DateSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

func (s *DateSet) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return fmt.Errorf("%w: date set must be an array of strings", ErrInvalidInput)
	}
	out := make(DateSet, len(keys))
	for _, k := range keys {
		d, err := ParseDate(k)
		if err != nil {
			return err
		}
		out[d.Key()] = struct{}{}
	}
	*s = out
	return nil
}
