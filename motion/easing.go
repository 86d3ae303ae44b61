package motion

// SmoothStep is the cubic Hermite easing 3t²-2t³. It has zero slope at both
// ends, so velocity ramps built on it start and finish without a jerk spike.
// Inputs outside [0,1] clamp to the end values.
func SmoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
