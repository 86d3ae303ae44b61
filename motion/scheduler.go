package motion

import (
	"gantry/core"

	"go.uber.org/atomic"
)

// Hardware is the set of capabilities the motion core drives.
type Hardware struct {
	Axes   [NumAxes]core.StepperOutput
	Enable core.EnableSwitch
	Pulse  core.PulseTimer
	Timer  core.TimingSource
}

func (h *Hardware) validate() error {
	for _, a := range h.Axes {
		if a == nil {
			return ErrMissingHardware
		}
	}
	if h.Enable == nil || h.Pulse == nil || h.Timer == nil {
		return ErrMissingHardware
	}
	return nil
}

// timingOID tags motion events in the core timing ring.
const timingOID = 0

// Scheduler owns the live profile and position and runs the per-tick pulse
// logic. Arming happens on the foreground; tick runs in the timing source's
// context. The moving flag hands ownership of the profile between the two.
//
// Every tick steps all axes with a nonzero direction, so the axes move in
// lock-step: a non-dominant axis travels TotalSteps, not its own distance.
// Moves are meant to be single-axis or equal-magnitude diagonals.
type Scheduler struct {
	hw            Hardware
	minIntervalUS uint32

	profile  Profile
	position [NumAxes]atomic.Int32
	interval atomic.Uint32 // last programmed period, us
}

func newScheduler(hw Hardware, minIntervalUS uint32) *Scheduler {
	return &Scheduler{hw: hw, minIntervalUS: minIntervalUS}
}

// arm loads m and starts the timing source. The caller has checked that no
// move is running.
func (s *Scheduler) arm(m Move) {
	p := &s.profile
	p.Move = m
	for i, out := range s.hw.Axes {
		out.SetDirection(m.Direction[i] > 0)
	}
	s.hw.Enable.SetEnabled(true)
	p.step.Store(0)

	interval := IntervalFor(m.MinFreq, s.minIntervalUS)
	s.interval.Store(interval)
	core.RecordTiming(core.EvtArm, timingOID, core.GetTime(), m.TotalSteps, uint32(m.MaxFreq))
	p.moving.Store(true)
	s.hw.Timer.Start(interval, s.tick)
}

// tick emits one step on every moving axis and programs the next period.
// It must not block beyond the pulse width and never allocates.
func (s *Scheduler) tick() {
	p := &s.profile
	if !p.moving.Load() {
		return
	}

	for i, out := range s.hw.Axes {
		if p.Direction[i] != 0 {
			out.StepHigh()
		}
	}
	s.hw.Pulse.WaitPulseWidth()
	for i, out := range s.hw.Axes {
		if p.Direction[i] != 0 {
			out.StepLow()
		}
	}

	for i := range s.position {
		if d := p.Direction[i]; d != 0 {
			s.position[i].Add(int32(d))
		}
	}

	step := p.step.Inc()
	interval := IntervalFor(p.FrequencyAt(step), s.minIntervalUS)
	s.hw.Timer.SetInterval(interval)
	s.interval.Store(interval)
	core.RecordTiming(core.EvtTick, timingOID, core.GetTime(), step, interval)

	if step >= p.TotalSteps {
		// Stop before releasing the profile so a new arm cannot be undone.
		s.hw.Timer.Stop()
		core.RecordTiming(core.EvtComplete, timingOID, core.GetTime(), p.TotalSteps, 0)
		p.moving.Store(false)
	}
}

func (s *Scheduler) snapshot() Position {
	return Position{
		X: s.position[AxisX].Load(),
		Y: s.position[AxisY].Load(),
		Z: s.position[AxisZ].Load(),
	}
}
