// Package bridge converts a stream of raw pointer samples into a
// continuously updated visual state with minimal perceived delay.
//
// The pipeline combines velocity estimation over noisy timestamped
// samples, short-horizon motion prediction gated by a confidence score,
// friction-decayed momentum after release, and frame-rate-independent
// smoothing, all coordinated by a cooperative per-frame loop driven by an
// injected frame clock.
package bridge

// PointerSample is one timestamped pointer reading. Samples are immutable
// once created and owned by the bridge's history buffer until evicted.
type PointerSample struct {
	ID        int     // Contact identifier from the input device
	X         float64 // Position X (pixels)
	Y         float64 // Position Y (pixels)
	VelocityX float64 // Velocity X (pixels per millisecond)
	VelocityY float64 // Velocity Y (pixels per millisecond)
	Pressure  float64 // Contact pressure [0, 1], 0 when unreported
	Timestamp float64 // Milliseconds; must share a base within a session
}

// Contact is one raw contact point as reported by the input source.
type Contact struct {
	ID       int
	X        float64
	Y        float64
	Pressure float64
}

// PointerEvent is a raw pointer-down/move/up event. Contacts holds the
// active contact points after the event; the bridge reads only the first
// contact and the remaining-contact count.
type PointerEvent struct {
	Contacts  []Contact
	Timestamp float64 // Milliseconds, same base as PointerSample.Timestamp
}

// Transform is the geometric part of a visual state.
type Transform struct {
	TranslateX float64
	TranslateY float64
	Scale      float64
	Rotation   float64 // Degrees
}

// VisualState is a full visual snapshot: a transform plus an appearance
// descriptor. The bridge performs no clamping on any field; callers
// wanting bounds (e.g. opacity in [0,1]) must clamp inside their mapper.
type VisualState struct {
	Transform  Transform
	Opacity    float64
	Brightness float64
	Blur       float64
	Custom     map[string]float64
}

// DefaultVisualState returns the documented identity state: no offset,
// unit scale, full opacity, neutral brightness, no blur.
func DefaultVisualState() VisualState {
	return VisualState{
		Transform:  Transform{Scale: 1},
		Opacity:    1,
		Brightness: 1,
	}
}

// Clone returns a deep copy of the state (the Custom map is copied).
func (s VisualState) Clone() VisualState {
	out := s
	if s.Custom != nil {
		out.Custom = make(map[string]float64, len(s.Custom))
		for k, v := range s.Custom {
			out.Custom[k] = v
		}
	}
	return out
}

// VisualUpdate is a partial visual state. Nil fields leave the current
// value untouched; Custom keys not present are left untouched.
type VisualUpdate struct {
	TranslateX *float64
	TranslateY *float64
	Scale      *float64
	Rotation   *float64
	Opacity    *float64
	Brightness *float64
	Blur       *float64
	Custom     map[string]float64
}

// Float returns a pointer to v, for building VisualUpdate literals.
func Float(v float64) *float64 { return &v }

// AsUpdate converts a full state into an update that defines every field,
// so it can be fed through BlendState when easing one full state toward
// another.
func AsUpdate(s VisualState) VisualUpdate {
	u := VisualUpdate{
		TranslateX: Float(s.Transform.TranslateX),
		TranslateY: Float(s.Transform.TranslateY),
		Scale:      Float(s.Transform.Scale),
		Rotation:   Float(s.Transform.Rotation),
		Opacity:    Float(s.Opacity),
		Brightness: Float(s.Brightness),
		Blur:       Float(s.Blur),
	}
	if len(s.Custom) > 0 {
		u.Custom = make(map[string]float64, len(s.Custom))
		for k, v := range s.Custom {
			u.Custom[k] = v
		}
	}
	return u
}

// Mapper is the caller-supplied visual mapping function. It must be pure
// and side-effect free: the bridge may invoke it twice per sample, once
// for the real sample and once for a synthetic predicted sample. A mapper
// that panics will propagate out of the event handler or frame tick.
type Mapper func(sample PointerSample, history []PointerSample) VisualUpdate

// Haptics requests haptic pulses on pointer transitions. The bridge only
// requests a pulse; engine behaviour is up to the host.
type Haptics interface {
	Pulse(intensity string)
}
