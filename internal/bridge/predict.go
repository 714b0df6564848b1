package bridge

import "math"

// nominalFrameMs converts a lookahead horizon into an equivalent count of
// nominal 16ms frames for friction decay.
const nominalFrameMs = 16.0

// Prediction is the most recent short-horizon prediction result. It is
// nil whenever prediction is disabled, confidence falls below the gate,
// or history holds fewer than 3 samples.
type Prediction struct {
	PredictedState VisualUpdate
	Confidence     float64
	LookaheadMs    float64
}

// PredictPosition extrapolates a future position from the sample's
// position and velocity using a friction-decay model.
//
// The velocity at the end of the window is estimated as v * friction^frames
// and the average of starting and decayed velocity is used as a constant
// rate over the window. This is a single-step trapezoidal estimate rather
// than a fully integrated decay curve: cheap, and close enough at the
// tens-of-milliseconds horizons the bridge uses.
func PredictPosition(s PointerSample, lookaheadMs, friction float64) (x, y float64) {
	frames := lookaheadMs / nominalFrameMs
	decay := math.Pow(friction, frames)

	avgVX := (s.VelocityX + s.VelocityX*decay) / 2
	avgVY := (s.VelocityY + s.VelocityY*decay) / 2

	return s.X + avgVX*lookaheadMs, s.Y + avgVY*lookaheadMs
}

// syntheticSample builds the predicted sample that is run back through
// the mapper. It carries the source sample's velocity and pressure and a
// timestamp advanced by the lookahead.
func syntheticSample(s PointerSample, lookaheadMs, friction float64) PointerSample {
	x, y := PredictPosition(s, lookaheadMs, friction)
	return PointerSample{
		ID:        s.ID,
		X:         x,
		Y:         y,
		VelocityX: s.VelocityX,
		VelocityY: s.VelocityY,
		Pressure:  s.Pressure,
		Timestamp: s.Timestamp + lookaheadMs,
	}
}
