package bridge

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

const (
	// latencyBufferSize caps the rolling buffer of raw latency samples.
	latencyBufferSize = 100
	// aggregationWindow is how often rolling aggregates are republished.
	aggregationWindow = time.Second
)

// Metrics is a published snapshot of bridge performance counters.
// Latencies are measured from input timestamp to processing timestamp, in
// milliseconds. Min and max are lifetime extrema, not window extrema.
//
// PredictionAccuracy and DroppedFrames are reserved for collaborators
// (e.g. a renderer comparing predicted against actual positions); the
// bridge records but never computes them.
type Metrics struct {
	AverageLatency     float64 `json:"average_latency_ms"`
	MaxLatency         float64 `json:"max_latency_ms"`
	MinLatency         float64 `json:"min_latency_ms"`
	P95Latency         float64 `json:"p95_latency_ms"`
	PredictionAccuracy float64 `json:"prediction_accuracy"`
	DroppedFrames      int64   `json:"dropped_frames"`
	TotalUpdates       int64   `json:"total_updates"`
	UpdatesPerSecond   int     `json:"updates_per_second"`
}

// metricsCollector accumulates per-update latencies and republishes
// aggregates once per elapsed second of wall clock.
type metricsCollector struct {
	latencies   []float64 // Rolling buffer, oldest first
	windowStart time.Time
	windowCount int
	hasSample   bool
	published   Metrics
}

func newMetricsCollector(now time.Time) *metricsCollector {
	return &metricsCollector{
		latencies:   make([]float64, 0, latencyBufferSize),
		windowStart: now,
	}
}

// record pushes one latency sample and republishes aggregates when the
// current one-second window has elapsed.
func (m *metricsCollector) record(latencyMs float64, now time.Time) {
	if len(m.latencies) >= latencyBufferSize {
		copy(m.latencies, m.latencies[1:])
		m.latencies = m.latencies[:len(m.latencies)-1]
	}
	m.latencies = append(m.latencies, latencyMs)

	m.published.TotalUpdates++
	m.windowCount++

	// Lifetime extrema, monotonic across the collector's life.
	if !m.hasSample || latencyMs > m.published.MaxLatency {
		m.published.MaxLatency = latencyMs
	}
	if !m.hasSample || latencyMs < m.published.MinLatency {
		m.published.MinLatency = latencyMs
	}
	m.hasSample = true

	if now.Sub(m.windowStart) >= aggregationWindow {
		m.aggregate(now)
	}
}

func (m *metricsCollector) aggregate(now time.Time) {
	if len(m.latencies) > 0 {
		m.published.AverageLatency = stat.Mean(m.latencies, nil)

		sorted := make([]float64, len(m.latencies))
		copy(sorted, m.latencies)
		sort.Float64s(sorted)
		m.published.P95Latency = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}
	m.published.UpdatesPerSecond = m.windowCount
	m.windowCount = 0
	m.windowStart = now
}

// snapshot returns the current published metrics.
func (m *metricsCollector) snapshot() Metrics {
	return m.published
}

// setPredictionAccuracy records a collaborator-computed accuracy score.
func (m *metricsCollector) setPredictionAccuracy(v float64) {
	m.published.PredictionAccuracy = v
}

// addDroppedFrames records collaborator-observed dropped frames.
func (m *metricsCollector) addDroppedFrames(n int64) {
	m.published.DroppedFrames += n
}

// reset restores the zero baseline.
func (m *metricsCollector) reset(now time.Time) {
	m.latencies = m.latencies[:0]
	m.windowStart = now
	m.windowCount = 0
	m.hasSample = false
	m.published = Metrics{}
}
