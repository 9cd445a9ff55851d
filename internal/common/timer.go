// Package common provides shared utilities including timing functionality.
package common

import (
	"fmt"
	"time"
)

// Timer provides timing utilities for benchmarking with optional naming.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer creates a new timer with the given name.
func NewNamedTimer(name string) *Timer {
	return &Timer{
		name:  name,
		start: time.Now(),
	}
}

// Stop stops the timer and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration (only valid after Stop()).
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name (empty string if unnamed).
func (t *Timer) Name() string {
	return t.name
}

// String returns a formatted string representation of the timer.
func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}

// StageTimings accumulates per-stage durations across a frame, keyed by
// stage name, preserving insertion order for reporting.
type StageTimings struct {
	order     []string
	durations map[string]time.Duration
}

// NewStageTimings creates an empty timing accumulator.
func NewStageTimings() *StageTimings {
	return &StageTimings{durations: make(map[string]time.Duration)}
}

// Record adds the duration for a stage, accumulating repeated stages.
func (s *StageTimings) Record(stage string, d time.Duration) {
	if _, seen := s.durations[stage]; !seen {
		s.order = append(s.order, stage)
	}
	s.durations[stage] += d
}

// Time runs fn and records its duration under stage.
func (s *StageTimings) Time(stage string, fn func()) {
	t := NewNamedTimer(stage)
	fn()
	s.Record(stage, t.Stop())
}

// Get returns the accumulated duration for a stage.
func (s *StageTimings) Get(stage string) time.Duration {
	return s.durations[stage]
}

// Total returns the sum of all recorded stage durations.
func (s *StageTimings) Total() time.Duration {
	var total time.Duration
	for _, d := range s.durations {
		total += d
	}
	return total
}

// Stages returns stage names in first-recorded order.
func (s *StageTimings) Stages() []string {
	return append([]string(nil), s.order...)
}
