// Package alerts decides which budget and habit alerts to raise. Suppression
// state is an explicit value the caller loads, passes in and stores back.
package alerts

import (
	"fmt"
	"strconv"
	"strings"

	"trackboard/internal/core"
)

type Metric string

const (
	MetricMonthlyBudget Metric = "monthly_budget"
	MetricWeeklyBudget  Metric = "weekly_budget"
	MetricHabitReminder Metric = "habit_reminder"
)

// Key identifies one alert: a metric and the threshold crossed.
type Key struct {
	Metric    Metric
	Threshold int
}

func (k Key) String() string {
	return string(k.Metric) + ":" + strconv.Itoa(k.Threshold)
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	metric, threshold, ok := strings.Cut(string(b), ":")
	if !ok || metric == "" {
		return fmt.Errorf("%w: alert key %q", core.ErrInvalidInput, b)
	}
	n, err := strconv.Atoi(threshold)
	if err != nil {
		return fmt.Errorf("%w: alert key %q", core.ErrInvalidInput, b)
	}
	*k = Key{Metric: Metric(metric), Threshold: n}
	return nil
}

// DedupeState remembers the day each alert last fired. An alert counts as
// shown only when its date is today, so a new day re-arms everything.
type DedupeState struct {
	LastFired map[Key]core.Date `json:"lastFired"`
}

// FiredOn reports whether k already fired on today.
func (s DedupeState) FiredOn(k Key, today core.Date) bool {
	last, ok := s.LastFired[k]
	return ok && last.Equal(today)
}

// Clone returns a state that shares nothing with s.
func (s DedupeState) Clone() DedupeState {
	out := DedupeState{LastFired: make(map[Key]core.Date, len(s.LastFired))}
	for k, v := range s.LastFired {
		out.LastFired[k] = v
	}
	return out
}

// Prune drops entries from earlier days.
func (s DedupeState) Prune(today core.Date) DedupeState {
	out := DedupeState{LastFired: make(map[Key]core.Date, len(s.LastFired))}
	for k, v := range s.LastFired {
		if v.Equal(today) {
			out.LastFired[k] = v
		}
	}
	return out
}

func (s *DedupeState) mark(k Key, today core.Date) {
	if s.LastFired == nil {
		s.LastFired = make(map[Key]core.Date)
	}
	s.LastFired[k] = today
}

func (s *DedupeState) clear(keys ...Key) {
	for _, k := range keys {
		delete(s.LastFired, k)
	}
}
