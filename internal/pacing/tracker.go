// Package pacing measures how long the presentation stays on each slide and
// estimates how long speaker notes take to deliver.
package pacing

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	slide      int
	durationMs int64
}

// Snapshot aggregates recent per-slide dwell times.
type Snapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`

	// Slide currently shown and for how long; zero before the first
	// observation.
	Current   int   `json:"current"`
	CurrentMs int64 `json:"current_ms"`
}

// Tracker records how long each slide was shown within a rolling window.
// A dwell is recorded when the observed position moves away from a slide.
type Tracker struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	current int
	since   time.Time
	now     func() time.Time
}

func NewTracker(maxAge time.Duration) *Tracker {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Tracker{
		samples: make([]sample, 0, 64),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Observe notes that slide number is being shown. Repeated observations of
// the same slide are free.
func (t *Tracker) Observe(number int) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if number == t.current {
		return
	}
	if t.current != 0 {
		t.pruneLocked(now)
		t.samples = append(t.samples, sample{
			timestamp:  now,
			slide:      t.current,
			durationMs: now.Sub(t.since).Milliseconds(),
		})
	}
	t.current = number
	t.since = now
}

func (t *Tracker) Snapshot() Snapshot {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(now)
	var snap Snapshot
	if t.current != 0 {
		snap.Current = t.current
		snap.CurrentMs = now.Sub(t.since).Milliseconds()
	}
	if len(t.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(t.samples))
	var sum int64
	for _, sm := range t.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.maxAge)
	writeIdx := 0
	for _, sm := range t.samples {
		if !sm.timestamp.Before(cutoff) {
			t.samples[writeIdx] = sm
			writeIdx++
		}
	}
	t.samples = t.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
