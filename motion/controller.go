package motion

import "gantry/core"

// StartResult is the outcome of a move request.
type StartResult uint8

const (
	Accepted StartResult = iota
	Busy
	NoOp
)

func (r StartResult) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case Busy:
		return "busy"
	case NoOp:
		return "noop"
	default:
		return "unknown"
	}
}

// Position is the commanded step count of each axis.
type Position struct {
	X, Y, Z int32
}

// Axis returns the count for a.
func (p Position) Axis(a Axis) int32 {
	switch a {
	case AxisX:
		return p.X
	case AxisY:
		return p.Y
	default:
		return p.Z
	}
}

// Controller is the foreground API of the motion core. Its methods must not
// be called from the tick handler.
type Controller struct {
	sched    *Scheduler
	cfg      Config
	jogSpeed uint32
}

// New wires the motion core to its hardware. The timing source is not
// started until the first move.
func New(hw Hardware, cfg Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := hw.validate(); err != nil {
		return nil, err
	}
	return &Controller{
		sched:    newScheduler(hw, cfg.MinIntervalUS),
		cfg:      cfg,
		jogSpeed: cfg.InitialJogSpeed,
	}, nil
}

// Start begins a relative move of (dx, dy, dz) steps cruising at feed steps
// per second. A request while moving is rejected without touching any state;
// a zero move is ignored.
func (c *Controller) Start(dx, dy, dz int32, feed uint32) StartResult {
	if c.sched.profile.IsMoving() {
		core.RecordTiming(core.EvtBusy, timingOID, core.GetTime(), 0, 0)
		return Busy
	}
	m, ok := PlanMove([NumAxes]int32{dx, dy, dz}, feed, c.cfg.StartFrequency)
	if !ok {
		return NoOp
	}
	c.sched.arm(m)
	return Accepted
}

func (c *Controller) IsMoving() bool {
	return c.sched.profile.IsMoving()
}

// Position returns the current counts. While a move runs the three values are
// read independently and may straddle a tick.
func (c *Controller) Position() Position {
	return c.sched.snapshot()
}

// Jog moves one axis by one revolution at the selected jog speed. dir is
// the sign of the move.
func (c *Controller) Jog(axis Axis, dir int) StartResult {
	var delta [NumAxes]int32
	if axis >= NumAxes || dir == 0 {
		return NoOp
	}
	if dir > 0 {
		delta[axis] = c.cfg.JogSteps
	} else {
		delta[axis] = -c.cfg.JogSteps
	}
	return c.Start(delta[AxisX], delta[AxisY], delta[AxisZ], c.jogSpeed)
}

// SelectSpeed picks jog preset 1, 2 or 3. It has no effect on a running move.
func (c *Controller) SelectSpeed(preset int) (uint32, bool) {
	if preset < 1 || preset > len(c.cfg.JogSpeeds) {
		return c.jogSpeed, false
	}
	c.jogSpeed = c.cfg.JogSpeeds[preset-1]
	return c.jogSpeed, true
}

// JogSpeed returns the current jog rate in steps per second.
func (c *Controller) JogSpeed() uint32 {
	return c.jogSpeed
}

// Progress returns ticks done and total ticks of the current or last move.
func (c *Controller) Progress() (step, total uint32) {
	step = c.sched.profile.CurrentStep()
	if c.IsMoving() || step > 0 {
		total = c.sched.profile.TotalSteps
	}
	return step, total
}

// IntervalUS returns the last period programmed into the timing source.
func (c *Controller) IntervalUS() uint32 {
	return c.sched.interval.Load()
}

// Faults returns the output writes the hardware rejected so far, summed over
// the axes and the enable line. Outputs that cannot fail count as zero.
func (c *Controller) Faults() uint32 {
	n := core.FaultsOf(c.sched.hw.Enable)
	for _, a := range c.sched.hw.Axes {
		n += core.FaultsOf(a)
	}
	return n
}
