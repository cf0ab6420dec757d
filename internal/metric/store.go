// Package metric holds the latest observed value of every subscribed metric.
package metric

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrMalformed is returned by ParseValue for payloads that are not a finite
// number.
var ErrMalformed = errors.New("malformed metric payload")

// Store maps metric identifiers to their latest value. It is not safe for
// concurrent use; it is owned by the session event loop.
type Store struct {
	values    map[string]entry
	listeners []func(metricID string)
}

type entry struct {
	value    float64
	revision uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{values: make(map[string]entry)}
}

// Set records v as the latest value for metricID. Listeners are notified
// with the affected metric only, and only when the stored value changed or
// this is the first value observed. It reports whether a change happened.
func (s *Store) Set(metricID string, v float64) bool {
	e, ok := s.values[metricID]
	if ok && e.value == v {
		return false
	}
	e.value = v
	e.revision++
	s.values[metricID] = e
	for _, fn := range s.listeners {
		fn(metricID)
	}
	return true
}

// Get returns the latest value for metricID, or 0 if none was received.
func (s *Store) Get(metricID string) float64 {
	return s.values[metricID].value
}

// Lookup returns the latest value and whether one was ever received.
func (s *Store) Lookup(metricID string) (float64, bool) {
	e, ok := s.values[metricID]
	return e.value, ok
}

// Revision returns a counter that increases every time metricID changes.
// Renderers cache per-widget output keyed by it.
func (s *Store) Revision(metricID string) uint64 {
	return s.values[metricID].revision
}

// OnChange registers fn to be called with the metric id after each change.
func (s *Store) OnChange(fn func(metricID string)) {
	s.listeners = append(s.listeners, fn)
}

// ParseValue converts a raw stream payload into a metric value.
func ParseValue(payload []byte) (float64, error) {
	raw := string(bytes.TrimSpace(payload))
	if raw == "" {
		return 0, ErrMalformed
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, truncate(raw, 32))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	return v, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
