package motion

import "gantry/core"

// eventLog records hardware calls in order across all fakes of one test.
type eventLog []string

type fakeOutput struct {
	name    string
	log     *eventLog
	pulses  int
	high    bool
	forward bool
	dirSets int
	faults  uint32
}

func (o *fakeOutput) Faults() uint32 { return o.faults }

func (o *fakeOutput) StepHigh() {
	o.high = true
	o.pulses++
	*o.log = append(*o.log, o.name+"^")
}

func (o *fakeOutput) StepLow() {
	o.high = false
	*o.log = append(*o.log, o.name+"v")
}

func (o *fakeOutput) SetDirection(forward bool) {
	o.forward = forward
	o.dirSets++
}

type fakeEnable struct {
	on    bool
	calls int
}

func (e *fakeEnable) SetEnabled(on bool) {
	e.on = on
	e.calls++
}

type fakePulseTimer struct {
	log   *eventLog
	waits int
}

func (p *fakePulseTimer) WaitPulseWidth() {
	p.waits++
	*p.log = append(*p.log, "wait")
}

// fakeSource is a TimingSource fired by hand.
type fakeSource struct {
	armed     bool
	interval  uint32
	fire      func()
	starts    int
	intervals []uint32
}

func (s *fakeSource) Start(intervalUS uint32, fire func()) {
	s.armed = true
	s.interval = intervalUS
	s.fire = fire
	s.starts++
}

func (s *fakeSource) SetInterval(intervalUS uint32) {
	s.interval = intervalUS
	s.intervals = append(s.intervals, intervalUS)
}

func (s *fakeSource) Stop() {
	s.armed = false
}

// Fire runs one tick if armed.
func (s *fakeSource) Fire() bool {
	if !s.armed {
		return false
	}
	s.fire()
	return true
}

// RunOut fires until the source stops, up to limit ticks.
func (s *fakeSource) RunOut(limit int) int {
	n := 0
	for n < limit && s.Fire() {
		n++
	}
	return n
}

type rig struct {
	log    eventLog
	x      *fakeOutput
	y1, y2 *fakeOutput
	z      *fakeOutput
	enable *fakeEnable
	pulse  *fakePulseTimer
	source *fakeSource
	ctl    *Controller
}

func newRig(cfg Config) *rig {
	r := &rig{enable: &fakeEnable{}, source: &fakeSource{}}
	r.x = &fakeOutput{name: "X", log: &r.log}
	r.y1 = &fakeOutput{name: "Y1", log: &r.log}
	r.y2 = &fakeOutput{name: "Y2", log: &r.log}
	r.z = &fakeOutput{name: "Z", log: &r.log}
	r.pulse = &fakePulseTimer{log: &r.log}

	hw := Hardware{
		Axes:   [NumAxes]core.StepperOutput{r.x, core.Gang{r.y1, r.y2}, r.z},
		Enable: r.enable,
		Pulse:  r.pulse,
		Timer:  r.source,
	}
	ctl, err := New(hw, cfg)
	if err != nil {
		panic(err)
	}
	r.ctl = ctl
	return r
}
