package bridge

// Options holds the tuning parameters for a Bridge.
type Options struct {
	TargetLatencyMs         float64 // Budget from input timestamp to processing (informational)
	EnablePrediction        bool    // Run the short-horizon predictor
	PredictionLookaheadMs   float64 // Prediction horizon (milliseconds)
	MinPredictionConfidence float64 // Gate below which prediction is suppressed
	EnableMomentum          bool    // Continue motion after release
	MomentumFriction        float64 // Per-tick velocity decay factor
	MaxTouchHistory         int     // Sample history capacity
	SmoothingFactor         float64 // Per-frame blend factor toward target
	EnableHaptics           bool    // Fire haptic pulses on pointer down/up
	DebounceUpdates         bool    // Skip frames that arrive too close together
	DebounceIntervalMs      float64 // Minimum frame spacing when debouncing
}

// DefaultOptions returns the default bridge tuning.
func DefaultOptions() Options {
	return Options{
		TargetLatencyMs:         16,
		EnablePrediction:        true,
		PredictionLookaheadMs:   32,
		MinPredictionConfidence: 0.7,
		EnableMomentum:          true,
		MomentumFriction:        0.95,
		MaxTouchHistory:         10,
		SmoothingFactor:         0.3,
		EnableHaptics:           false,
		DebounceUpdates:         false,
		DebounceIntervalMs:      8,
	}
}

// normalize applies defaults for unset values so a zero Options is usable.
func (o Options) normalize() Options {
	if o.MaxTouchHistory <= 0 {
		o.MaxTouchHistory = 10
	}
	if o.SmoothingFactor <= 0 {
		o.SmoothingFactor = 0.3
	}
	if o.PredictionLookaheadMs <= 0 {
		o.PredictionLookaheadMs = 32
	}
	if o.MomentumFriction <= 0 {
		o.MomentumFriction = 0.95
	}
	if o.DebounceIntervalMs <= 0 {
		o.DebounceIntervalMs = 8
	}
	if o.TargetLatencyMs <= 0 {
		o.TargetLatencyMs = 16
	}
	return o
}
