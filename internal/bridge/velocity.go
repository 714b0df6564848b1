package bridge

// EstimateVelocity computes per-axis velocity (pixels per millisecond)
// between two samples. It returns zero velocity when there is no previous
// sample or when elapsed time is non-positive, which guards against
// out-of-order and duplicate timestamps.
func EstimateVelocity(curr PointerSample, prev *PointerSample) (vx, vy float64) {
	if prev == nil {
		return 0, 0
	}
	dt := curr.Timestamp - prev.Timestamp
	if dt <= 0 {
		return 0, 0
	}
	return (curr.X - prev.X) / dt, (curr.Y - prev.Y) / dt
}
