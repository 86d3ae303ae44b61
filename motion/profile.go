package motion

import "go.uber.org/atomic"

// Axis indexes the logical axes. Y may be backed by several ganged motors.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
	AxisZ

	NumAxes = 3
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// Phase is the ramp segment a step falls in.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseAccel
	PhaseCruise
	PhaseDecel
)

func (p Phase) String() string {
	switch p {
	case PhaseAccel:
		return "accel"
	case PhaseCruise:
		return "cruise"
	case PhaseDecel:
		return "decel"
	default:
		return "idle"
	}
}

// Move is the immutable part of a trajectory profile, fixed when the move is
// planned. The accel and decel ramps are not clamped against TotalSteps.
type Move struct {
	TotalSteps uint32
	AccelSteps uint32
	DecelSteps uint32
	MinFreq    float64 // Hz, start and end rate
	MaxFreq    float64 // Hz, cruise rate
	Direction  [NumAxes]int8
}

// PhaseAt returns the segment that step (1-based, counted after the pulse)
// belongs to. Accel is tested first, so it wins wherever the ramps touch.
func (m *Move) PhaseAt(step uint32) Phase {
	switch {
	case step > m.TotalSteps:
		return PhaseIdle
	case m.AccelSteps > 0 && step <= m.AccelSteps:
		return PhaseAccel
	case step > m.TotalSteps-m.DecelSteps:
		return PhaseDecel
	default:
		return PhaseCruise
	}
}

// FrequencyAt returns the step rate programmed after step pulses have been
// emitted. Step 0 is the arming rate.
func (m *Move) FrequencyAt(step uint32) float64 {
	if step == 0 {
		return m.MinFreq
	}
	var freq float64
	switch m.PhaseAt(step) {
	case PhaseAccel:
		t := float64(step) / float64(m.AccelSteps)
		freq = m.MinFreq + (m.MaxFreq-m.MinFreq)*SmoothStep(t)
	case PhaseDecel:
		t := float64(m.TotalSteps-step) / float64(m.DecelSteps)
		freq = m.MinFreq + (m.MaxFreq-m.MinFreq)*SmoothStep(t)
	case PhaseCruise:
		freq = m.MaxFreq
	default:
		freq = m.MinFreq
	}
	if freq < m.MinFreq {
		freq = m.MinFreq
	}
	return freq
}

// IntervalFor converts a step rate to a timer period in microseconds, never
// shorter than minIntervalUS.
func IntervalFor(freq float64, minIntervalUS uint32) uint32 {
	if freq <= 0 {
		return minIntervalUS
	}
	period := 1000000 / freq
	if period < float64(minIntervalUS) {
		return minIntervalUS
	}
	return uint32(period)
}

// Profile is the live trajectory: the planned Move plus the fields the tick
// handler updates. It is reused in place for every move.
//
// Writers: Move and the start of a move belong to the foreground while
// moving is false; step and the end of a move belong to the tick handler.
type Profile struct {
	Move
	step   atomic.Uint32
	moving atomic.Bool
}

// CurrentStep returns the number of ticks executed in the current or last move.
func (p *Profile) CurrentStep() uint32 {
	return p.step.Load()
}

func (p *Profile) IsMoving() bool {
	return p.moving.Load()
}
