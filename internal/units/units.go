// Package units provides shared constants and validation for touch velocity units
package units

// Unit constants. Velocities are stored in px/ms throughout the bridge.
const (
	PxPerMs    = "pxms"
	PxPerS     = "pxs"
	PxPerFrame = "pxframe" // Nominal 16ms frame
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{PxPerMs, PxPerS, PxPerFrame}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "pxms, pxs, pxframe"
}

// ConvertVelocity converts a velocity from px/ms to the target units.
func ConvertVelocity(velocityPxMs float64, targetUnits string) float64 {
	switch targetUnits {
	case PxPerMs:
		return velocityPxMs
	case PxPerS:
		return velocityPxMs * 1000
	case PxPerFrame:
		return velocityPxMs * 16
	default:
		return velocityPxMs
	}
}
