package bridge

// confidenceWindow is how many trailing samples the scorer inspects.
const confidenceWindow = 5

// directionBonus rewards any sustained motion over pure ratio scoring, so
// a short consistent drag can still clear the prediction gate.
const directionBonus = 0.3

// MotionConfidence scores how directionally consistent recent motion is,
// in [0, 1]. It returns a neutral 0.5 when history holds fewer than 3
// samples. Otherwise it counts, per axis, consecutive velocity pairs with
// matching sign across the last 5 samples, averages the two per-axis
// ratios and adds a flat bonus, capped at 1. Sustained motion scores
// high; jitter and reversals score low.
func MotionConfidence(history []PointerSample) float64 {
	if len(history) < 3 {
		return 0.5
	}

	window := history
	if len(window) > confidenceWindow {
		window = window[len(window)-confidenceWindow:]
	}

	var sameX, sameY int
	pairs := len(window) - 1
	for i := 1; i < len(window); i++ {
		if window[i].VelocityX*window[i-1].VelocityX > 0 {
			sameX++
		}
		if window[i].VelocityY*window[i-1].VelocityY > 0 {
			sameY++
		}
	}

	ratioX := float64(sameX) / float64(pairs)
	ratioY := float64(sameY) / float64(pairs)

	confidence := (ratioX+ratioY)/2 + directionBonus
	if confidence > 1 {
		confidence = 1
	}
	return confidence
}
