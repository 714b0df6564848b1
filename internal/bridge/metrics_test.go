package bridge

import (
	"testing"
	"time"
)

func TestMetricsCollector_BufferCap(t *testing.T) {
	now := time.Unix(0, 0)
	m := newMetricsCollector(now)
	for i := 0; i < 250; i++ {
		m.record(float64(i), now)
	}
	if len(m.latencies) != latencyBufferSize {
		t.Errorf("buffer length = %d, want %d", len(m.latencies), latencyBufferSize)
	}
	// Oldest evicted first: buffer holds the last 100 values.
	if m.latencies[0] != 150 {
		t.Errorf("oldest buffered latency = %v, want 150", m.latencies[0])
	}
}

func TestMetricsCollector_LifetimeExtremaAndTotals(t *testing.T) {
	now := time.Unix(0, 0)
	m := newMetricsCollector(now)

	m.record(5, now)
	m.record(20, now)
	m.record(1, now)

	snap := m.snapshot()
	if snap.MaxLatency != 20 {
		t.Errorf("MaxLatency = %v, want 20", snap.MaxLatency)
	}
	if snap.MinLatency != 1 {
		t.Errorf("MinLatency = %v, want 1", snap.MinLatency)
	}
	if snap.TotalUpdates != 3 {
		t.Errorf("TotalUpdates = %v, want 3", snap.TotalUpdates)
	}
}

func TestMetricsCollector_WindowAggregation(t *testing.T) {
	start := time.Unix(0, 0)
	m := newMetricsCollector(start)

	m.record(10, start.Add(100*time.Millisecond))
	m.record(20, start.Add(200*time.Millisecond))

	// Nothing published before the window elapses.
	if got := m.snapshot().UpdatesPerSecond; got != 0 {
		t.Errorf("UpdatesPerSecond mid-window = %d, want 0", got)
	}

	m.record(30, start.Add(time.Second))

	snap := m.snapshot()
	if snap.UpdatesPerSecond != 3 {
		t.Errorf("UpdatesPerSecond = %d, want 3", snap.UpdatesPerSecond)
	}
	if snap.AverageLatency != 20 {
		t.Errorf("AverageLatency = %v, want 20", snap.AverageLatency)
	}

	// The per-second counter resets for the next window.
	m.record(40, start.Add(1100*time.Millisecond))
	if got := m.snapshot().UpdatesPerSecond; got != 3 {
		t.Errorf("published rate changed mid-window to %d", got)
	}
}

func TestMetricsCollector_Reset(t *testing.T) {
	now := time.Unix(0, 0)
	m := newMetricsCollector(now)
	m.record(10, now)
	m.setPredictionAccuracy(0.9)
	m.addDroppedFrames(2)

	m.reset(now.Add(time.Minute))

	snap := m.snapshot()
	if snap != (Metrics{}) {
		t.Errorf("metrics after reset = %+v, want zero baseline", snap)
	}
	if len(m.latencies) != 0 {
		t.Errorf("latency buffer after reset has %d entries", len(m.latencies))
	}
}

func TestMetricsCollector_ReservedFields(t *testing.T) {
	m := newMetricsCollector(time.Unix(0, 0))
	m.setPredictionAccuracy(0.75)
	m.addDroppedFrames(3)
	m.addDroppedFrames(2)

	snap := m.snapshot()
	if snap.PredictionAccuracy != 0.75 {
		t.Errorf("PredictionAccuracy = %v, want 0.75", snap.PredictionAccuracy)
	}
	if snap.DroppedFrames != 5 {
		t.Errorf("DroppedFrames = %v, want 5", snap.DroppedFrames)
	}
}
