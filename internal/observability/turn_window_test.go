package observability

import (
	"testing"
	"time"
)

func TestTurnWindowSnapshotStats(t *testing.T) {
	w := NewTurnWindow(8)
	for _, ms := range []int{100, 200, 300, 400} {
		w.Observe("completion_request", time.Duration(ms)*time.Millisecond)
	}

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("got %d stages, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Stage != "completion_request" || s.Samples != 4 {
		t.Fatalf("unexpected stage stats: %+v", s)
	}
	if s.LastMS != 400 {
		t.Fatalf("LastMS = %v, want 400", s.LastMS)
	}
	if s.AvgMS != 250 {
		t.Fatalf("AvgMS = %v, want 250", s.AvgMS)
	}
	if s.P50MS != 250 {
		t.Fatalf("P50MS = %v, want 250", s.P50MS)
	}
	if s.TargetP95MS == 0 {
		t.Fatalf("completion_request should carry a p95 target")
	}
}

func TestTurnWindowWrapsAround(t *testing.T) {
	w := NewTurnWindow(4)
	for i := 1; i <= 10; i++ {
		w.Observe("persist", time.Duration(i)*time.Millisecond)
	}

	snap := w.Snapshot()
	s := snap.Stages[0]
	if s.Samples != 4 {
		t.Fatalf("Samples = %d, want window size 4", s.Samples)
	}
	// Last four observations are 7..10 ms.
	if s.AvgMS != 8.5 {
		t.Fatalf("AvgMS = %v, want 8.5", s.AvgMS)
	}
}

func TestTurnWindowIndicators(t *testing.T) {
	w := NewTurnWindow(8)
	w.ObserveIndicator("degraded_history")
	w.ObserveIndicator("degraded_history")
	w.ObserveIndicator(" ")

	snap := w.Snapshot()
	if len(snap.Indicators) != 1 {
		t.Fatalf("got %d indicators, want 1", len(snap.Indicators))
	}
	if snap.Indicators[0].Name != "degraded_history" || snap.Indicators[0].Count != 2 {
		t.Fatalf("unexpected indicator: %+v", snap.Indicators[0])
	}

	w.Reset()
	if snap := w.Snapshot(); len(snap.Stages) != 0 || len(snap.Indicators) != 0 {
		t.Fatalf("Reset() left data behind: %+v", snap)
	}
}

func TestTurnWindowIgnoresInvalidSamples(t *testing.T) {
	w := NewTurnWindow(8)
	w.Observe("", time.Second)
	w.Observe("persist", -time.Second)

	if snap := w.Snapshot(); len(snap.Stages) != 0 {
		t.Fatalf("invalid samples should be dropped: %+v", snap)
	}
}
