package pipeline

import (
	"testing"
	"time"
)

func TestLatencyStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	for _, ms := range []int{100, 200, 300, 400, 500} {
		stats.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d %d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 || snap.P50Ms != 300 {
		t.Fatalf("expected avg=p50=300, got %f %f", snap.AvgMs, snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestLatencyStatsExpiresOldSamples(t *testing.T) {
	clock := time.Unix(1000, 0)
	stats := NewLatencyStats(time.Minute)
	stats.now = func() time.Time { return clock }

	stats.Record(100 * time.Millisecond)
	clock = clock.Add(2 * time.Minute)
	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after expiry, got %d", snap.Count)
	}

	stats.Record(200 * time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.MinMs != 200 {
		t.Fatalf("expected one fresh sample of 200ms, got %+v", snap)
	}
}

func TestLatencyStatsClampsNegative(t *testing.T) {
	stats := NewLatencyStats(time.Hour)
	stats.Record(-time.Second)
	if snap := stats.Snapshot(); snap.Count != 1 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped sample, got %+v", snap)
	}
}

func TestSessionStore(t *testing.T) {
	clock := time.Unix(1000, 0)
	store := NewSessionStore(time.Minute)
	store.now = func() time.Time { return clock }

	a := store.Cache("a")
	if store.Cache("a") != a {
		t.Fatal("expected the same cache for the same session")
	}
	if store.Cache("") == store.Cache("") {
		t.Error("anonymous requests must not share a cache")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}

	clock = clock.Add(30 * time.Second)
	store.Cache("b")
	clock = clock.Add(45 * time.Second)
	store.Cleanup()
	if store.Len() != 1 {
		t.Fatalf("expected only b to survive, got %d sessions", store.Len())
	}
	if store.Cache("a") == a {
		t.Error("expected a new cache after eviction")
	}
}
