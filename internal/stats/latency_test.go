package stats

import (
	"testing"
	"time"
)

func TestParseLatenciesSnapshotPercentiles(t *testing.T) {
	lat := NewParseLatencies(time.Hour)
	lat.Record(100)
	lat.Record(200)
	lat.Record(300)
	lat.Record(400)
	lat.Record(500)

	snap := lat.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 {
		t.Fatalf("expected min=100, got %d", snap.MinMs)
	}
	if snap.MaxMs != 500 {
		t.Fatalf("expected max=500, got %d", snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
}

func TestParseLatenciesPrunesExpiredSamples(t *testing.T) {
	lat := NewParseLatencies(10 * time.Millisecond)
	lat.Record(100)
	time.Sleep(25 * time.Millisecond)

	snap := lat.Snapshot()
	if snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	lat.Record(200)
	snap = lat.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.MinMs != 200 || snap.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

func TestParseLatenciesRecordClampsNegativeDuration(t *testing.T) {
	lat := NewParseLatencies(time.Hour)
	lat.Record(-10)
	snap := lat.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
