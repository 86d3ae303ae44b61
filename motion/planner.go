package motion

// Ramp sizing. Each ramp covers a fifth of the move, but never fewer than
// MinRampSteps once the move is longer than ShortMoveSteps.
const (
	RampDivisor    = 5
	MinRampSteps   = 10
	ShortMoveSteps = 20
)

// RampSteps returns the accel (and decel) length for a move of total steps.
func RampSteps(total uint32) uint32 {
	ramp := total / RampDivisor
	if total > ShortMoveSteps && ramp < MinRampSteps {
		ramp = MinRampSteps
	}
	return ramp
}

// PlanMove builds the profile for a relative move. The dominant axis sets the
// step count; feed is the cruise rate in steps per second and is raised to
// minFreq when lower. It reports false for a zero displacement.
func PlanMove(delta [NumAxes]int32, feed uint32, minFreq float64) (Move, bool) {
	var m Move
	for i, d := range delta {
		steps := absSteps(d)
		if steps > m.TotalSteps {
			m.TotalSteps = steps
		}
		switch {
		case d > 0:
			m.Direction[i] = 1
		case d < 0:
			m.Direction[i] = -1
		}
	}
	if m.TotalSteps == 0 {
		return Move{}, false
	}

	m.AccelSteps = RampSteps(m.TotalSteps)
	m.DecelSteps = m.AccelSteps
	m.MinFreq = minFreq
	m.MaxFreq = float64(feed)
	if m.MaxFreq < minFreq {
		m.MaxFreq = minFreq
	}
	return m, true
}

func absSteps(d int32) uint32 {
	if d < 0 {
		return uint32(-int64(d))
	}
	return uint32(d)
}
