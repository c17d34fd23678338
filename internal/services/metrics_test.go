package services

import (
	"testing"
)

func TestMetricsSummarizeEmpty(t *testing.T) {
	m := NewMetrics(3600)

	got := m.Summarize()
	if got != (Summary{}) {
		t.Fatalf("summary = %+v, want zero value", got)
	}
}

func TestMetricsSummarize(t *testing.T) {
	m := NewMetrics(3600)
	for _, w := range []float64{0, 2, 4, 6} {
		m.Record(w)
	}

	got := m.Summarize()
	if got.AvgWait != 3 {
		t.Fatalf("avg wait = %v, want 3", got.AvgWait)
	}
	if got.VehiclesServed != 4 {
		t.Fatalf("served = %d, want 4", got.VehiclesServed)
	}
	if got.Throughput != 4.0/3600 {
		t.Fatalf("throughput = %v, want %v", got.Throughput, 4.0/3600)
	}

	waits := m.WaitTimes()
	waits[0] = 99
	if m.WaitTimes()[0] != 0 {
		t.Fatalf("WaitTimes must return a copy")
	}
}
