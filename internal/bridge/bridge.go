package bridge

import (
	"sync"
	"time"

	"github.com/banshee-data/touchbridge/internal/frameclock"
)

// hapticIntensity is the pulse intensity requested on pointer down/up.
const hapticIntensity = "light"

// Bridge tracks one active pointer and continuously eases a displayed
// visual state toward the target state produced by the mapper pipeline.
//
// Two writers share the state under one mutex with a strict split: event
// handlers (PointerDown/Move/Up) are the only writers of the target
// state, and the frame tick is the only writer of the displayed state. An
// event handler's effect is observed by the next frame tick, never
// synchronously, so input handling cost is bounded by one frame interval.
//
// A Bridge tracks a single pointer id at a time. Consumers needing
// multiple independent touch surfaces should instantiate multiple
// bridges.
type Bridge struct {
	mu      sync.Mutex
	opts    Options
	clock   frameclock.Clock
	mapper  Mapper
	haptics Haptics

	history    *sampleHistory
	displayed  VisualState
	target     VisualState
	prediction *Prediction
	momentum   MomentumVector
	metrics    *metricsCollector

	tracking  bool
	scheduled bool
	frameReq  frameclock.Request
	lastTick  time.Time
}

// New creates a Bridge driven by the given frame clock. The mapper is the
// caller-supplied visual mapping function; it must be pure since the
// bridge may invoke it twice per sample.
func New(clock frameclock.Clock, mapper Mapper, opts Options) *Bridge {
	opts = opts.normalize()
	return &Bridge{
		opts:      opts,
		clock:     clock,
		mapper:    mapper,
		history:   newSampleHistory(opts.MaxTouchHistory),
		displayed: DefaultVisualState(),
		target:    DefaultVisualState(),
		metrics:   newMetricsCollector(clock.Now()),
	}
}

// SetHaptics attaches an optional haptic engine. Pulses are only
// requested when EnableHaptics is set.
func (b *Bridge) SetHaptics(h Haptics) {
	b.mu.Lock()
	b.haptics = h
	b.mu.Unlock()
}

// PointerDown begins tracking. The event must carry at least one contact;
// an empty contact list is a no-op. Any in-flight momentum is cancelled,
// history is reset, and the frame loop starts.
func (b *Bridge) PointerDown(ev PointerEvent) {
	if len(ev.Contacts) == 0 {
		return
	}
	c := ev.Contacts[0]

	b.mu.Lock()
	b.momentum.cancel()
	if b.history.capacity != b.opts.MaxTouchHistory {
		b.history = newSampleHistory(b.opts.MaxTouchHistory)
	} else {
		b.history.Clear()
	}
	b.prediction = nil

	// First sample carries zero velocity: there is nothing to difference
	// against yet.
	b.history.Add(PointerSample{
		ID:        c.ID,
		X:         c.X,
		Y:         c.Y,
		Pressure:  c.Pressure,
		Timestamp: ev.Timestamp,
	})
	b.tracking = true
	b.lastTick = b.clock.Now()
	b.scheduleLocked()
	h := b.hapticsLocked()
	b.mu.Unlock()

	if h != nil {
		h.Pulse(hapticIntensity)
	}
}

// PointerMove appends a sample for the primary contact, estimates its
// velocity and runs the mapping/prediction pipeline, replacing the target
// state. Ignored while not tracking or when the event carries no
// contacts.
func (b *Bridge) PointerMove(ev PointerEvent) {
	if len(ev.Contacts) == 0 {
		return
	}
	c := ev.Contacts[0]

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.tracking {
		return
	}

	sample := PointerSample{
		ID:        c.ID,
		X:         c.X,
		Y:         c.Y,
		Pressure:  c.Pressure,
		Timestamp: ev.Timestamp,
	}
	sample.VelocityX, sample.VelocityY = EstimateVelocity(sample, b.history.Last())
	b.history.Add(sample)

	b.processSampleLocked(sample)
}

// processSampleLocked runs the mapper pipeline for one sample and stores
// the resulting target state and prediction.
func (b *Bridge) processSampleLocked(sample PointerSample) {
	history := b.history.Samples()
	mapped := b.mapper(sample, history)

	now := b.clock.Now()
	latencyMs := float64(now.UnixNano())/1e6 - sample.Timestamp
	b.metrics.record(latencyMs, now)

	target := BlendState(b.target, mapped, 1)

	if !b.opts.EnablePrediction || b.history.Len() < 3 {
		b.target = target
		b.prediction = nil
		return
	}

	confidence := MotionConfidence(history)
	if confidence < b.opts.MinPredictionConfidence {
		b.target = target
		b.prediction = nil
		return
	}

	synth := syntheticSample(sample, b.opts.PredictionLookaheadMs, b.opts.MomentumFriction)
	predicted := b.mapper(synth, history)

	// Predictions are never fully trusted: the blend factor is the
	// confidence damped by half.
	b.target = BlendState(target, predicted, confidence*0.5)
	b.prediction = &Prediction{
		PredictedState: predicted,
		Confidence:     confidence,
		LookaheadMs:    b.opts.PredictionLookaheadMs,
	}
}

// PointerUp stops active tracking, optionally handing off to momentum.
// If the event reports remaining active contacts, no state change occurs:
// the bridge only demotes when zero contacts remain.
func (b *Bridge) PointerUp(ev PointerEvent) {
	if len(ev.Contacts) > 0 {
		return
	}

	b.mu.Lock()
	if !b.tracking {
		b.mu.Unlock()
		return
	}
	b.tracking = false

	if b.opts.EnableMomentum {
		if last := b.history.Last(); last != nil {
			b.momentum.activate(last.VelocityX, last.VelocityY)
		}
	}
	if b.momentum.Active {
		b.scheduleLocked()
	}
	h := b.hapticsLocked()
	b.mu.Unlock()

	if h != nil {
		h.Pulse(hapticIntensity)
	}
}

// Reset cancels any scheduled frame and atomically restores history,
// visual state, momentum and metrics to their zero baselines. Teardown
// must call this (or Close) to avoid a dangling frame callback.
func (b *Bridge) Reset() {
	b.mu.Lock()
	if b.frameReq != nil {
		b.frameReq.Cancel()
		b.frameReq = nil
	}
	b.scheduled = false
	b.tracking = false
	b.history.Clear()
	b.prediction = nil
	b.momentum.cancel()
	b.displayed = DefaultVisualState()
	b.target = DefaultVisualState()
	b.metrics.reset(b.clock.Now())
	b.mu.Unlock()
}

// Close releases the bridge. Equivalent to Reset; provided so callers can
// treat the bridge as an io.Closer-shaped resource at teardown.
func (b *Bridge) Close() error {
	b.Reset()
	return nil
}

// scheduleLocked requests the next frame callback unless one is already
// pending. Callers must hold b.mu.
func (b *Bridge) scheduleLocked() {
	if b.scheduled {
		return
	}
	b.scheduled = true
	b.frameReq = b.clock.RequestFrame(b.tick)
}

func (b *Bridge) hapticsLocked() Haptics {
	if !b.opts.EnableHaptics {
		return nil
	}
	return b.haptics
}

// tick is the cooperative frame step: blend displayed toward target,
// advance momentum, and reschedule while there is still work.
func (b *Bridge) tick(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scheduled = false
	b.frameReq = nil

	dtMs := float64(now.Sub(b.lastTick)) / float64(time.Millisecond)
	if dtMs < 0 {
		dtMs = 0
	}

	// Debounce skips work on frames that arrive too close together but
	// keeps the loop alive. lastTick is left untouched so the skipped
	// interval still counts toward the next frame's delta.
	if b.opts.DebounceUpdates && dtMs < b.opts.DebounceIntervalMs {
		b.scheduleLocked()
		return
	}
	b.lastTick = now

	b.displayed = BlendState(b.displayed, AsUpdate(b.target), b.opts.SmoothingFactor)

	if b.momentum.Active {
		dx, dy := b.momentum.advance(b.opts.MomentumFriction, dtMs)
		b.target.Transform.TranslateX += dx
		b.target.Transform.TranslateY += dy
	}

	if b.tracking || b.momentum.Active {
		b.scheduleLocked()
	}
}

// State returns a copy of the displayed visual state.
func (b *Bridge) State() VisualState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.displayed.Clone()
}

// Target returns a copy of the current target visual state.
func (b *Bridge) Target() VisualState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target.Clone()
}

// Prediction returns the current prediction, or nil when prediction is
// inactive. The returned value is a copy.
func (b *Bridge) Prediction() *Prediction {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.prediction == nil {
		return nil
	}
	p := *b.prediction
	return &p
}

// Metrics returns the most recently published metrics snapshot.
func (b *Bridge) Metrics() Metrics {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.metrics.snapshot()
}

// History returns a copy of the sample history, oldest first.
func (b *Bridge) History() []PointerSample {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]PointerSample, b.history.Len())
	copy(out, b.history.Samples())
	return out
}

// Tracking reports whether a pointer is actively tracked.
func (b *Bridge) Tracking() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tracking
}

// Momentum returns a copy of the momentum vector.
func (b *Bridge) Momentum() MomentumVector {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.momentum
}

// Options returns the bridge's current tuning.
func (b *Bridge) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opts
}

// SetOptions replaces the bridge tuning at runtime. History capacity only
// changes on the next pointer-down.
func (b *Bridge) SetOptions(opts Options) {
	b.mu.Lock()
	b.opts = opts.normalize()
	b.mu.Unlock()
}

// TransformString encodes the displayed state's transform expression.
func (b *Bridge) TransformString() string {
	return TransformString(b.State())
}

// FilterString encodes the displayed state's filter expression.
func (b *Bridge) FilterString() string {
	return FilterString(b.State())
}

// SetPredictionAccuracy records a collaborator-computed accuracy score in
// the metrics. The bridge itself never compares predicted against actual
// positions.
func (b *Bridge) SetPredictionAccuracy(v float64) {
	b.mu.Lock()
	b.metrics.setPredictionAccuracy(v)
	b.mu.Unlock()
}

// AddDroppedFrames records collaborator-observed dropped frames.
func (b *Bridge) AddDroppedFrames(n int64) {
	b.mu.Lock()
	b.metrics.addDroppedFrames(n)
	b.mu.Unlock()
}
