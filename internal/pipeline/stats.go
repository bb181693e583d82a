package pipeline

import (
	"slices"
	"sync"
	"time"
)

// LatencySnapshot aggregates search durations in the rolling window.
type LatencySnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

type latencySample struct {
	at time.Time
	ms int64
}

// LatencyStats tracks recent search durations within a rolling window.
type LatencyStats struct {
	mu      sync.Mutex
	samples []latencySample
	window  time.Duration
	now     func() time.Time
}

func NewLatencyStats(window time.Duration) *LatencyStats {
	if window <= 0 {
		window = time.Hour
	}
	return &LatencyStats{window: window, now: time.Now}
}

// Record adds one search duration. Negative durations count as zero.
func (s *LatencyStats) Record(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.samples = append(s.samples, latencySample{at: now, ms: max(d.Milliseconds(), 0)})
}

func (s *LatencyStats) Snapshot() LatencySnapshot {
	s.mu.Lock()
	s.expireLocked(s.now())
	values := make([]int64, len(s.samples))
	for i, sm := range s.samples {
		values[i] = sm.ms
	}
	s.mu.Unlock()

	if len(values) == 0 {
		return LatencySnapshot{}
	}
	slices.Sort(values)
	var sum int64
	for _, v := range values {
		sum += v
	}
	return LatencySnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: interpolate(values, 50),
		P95Ms: interpolate(values, 95),
		P99Ms: interpolate(values, 99),
	}
}

// Samples are appended in time order, so expiry drops a prefix.
func (s *LatencyStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.samples) && s.samples[i].at.Before(cutoff) {
		i++
	}
	s.samples = s.samples[i:]
}

// interpolate returns the pct-th percentile of sorted values with linear
// interpolation between neighbouring ranks.
func interpolate(sorted []int64, pct float64) float64 {
	rank := float64(len(sorted)-1) * pct / 100
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return float64(sorted[len(sorted)-1])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[lo+1]-sorted[lo])
}
