package bridge

import "math"

const (
	// momentumStartSpeed is the minimum release speed (pixels/ms) that
	// activates momentum.
	momentumStartSpeed = 0.1
	// momentumStopSpeed is the decayed speed (pixels/ms) below which
	// momentum deactivates.
	momentumStopSpeed = 0.01
)

// MomentumVector carries post-release motion. A single mutable record
// owned by the bridge: activated at pointer-up when release speed exceeds
// the start threshold, decayed by friction each tick, deactivated when
// speed drops below the stop threshold or a new pointer-down occurs.
type MomentumVector struct {
	VelocityX float64
	VelocityY float64
	Active    bool
}

// speed returns the scalar speed in pixels per millisecond.
func (m *MomentumVector) speed() float64 {
	return math.Hypot(m.VelocityX, m.VelocityY)
}

// activate captures the release velocity if it is fast enough to coast.
func (m *MomentumVector) activate(vx, vy float64) {
	m.VelocityX = vx
	m.VelocityY = vy
	m.Active = m.speed() > momentumStartSpeed
	if !m.Active {
		m.VelocityX = 0
		m.VelocityY = 0
	}
}

// cancel unconditionally deactivates momentum.
func (m *MomentumVector) cancel() {
	m.VelocityX = 0
	m.VelocityY = 0
	m.Active = false
}

// advance decays velocity by friction for one tick and returns the
// translation delta for the elapsed dtMs. It deactivates once the decayed
// speed falls below the stop threshold, in which case the delta is zero.
func (m *MomentumVector) advance(friction, dtMs float64) (dx, dy float64) {
	if !m.Active {
		return 0, 0
	}
	m.VelocityX *= friction
	m.VelocityY *= friction
	if m.speed() < momentumStopSpeed {
		m.cancel()
		return 0, 0
	}
	return m.VelocityX * dtMs, m.VelocityY * dtMs
}
