package core

import "go.uber.org/atomic"

// PeriodicTimer is a TimingSource built on the timer list. It fires from
// ProcessTimers, so its handler runs in whatever context calls ProcessTimers.
//
// Worst case: a firing that is dispatched a full period or more after its
// due time is counted as an overrun and recorded as EvtTimerPast. The next
// due time is then taken from the dispatch time instead of the missed one,
// so a stalled loop never produces a burst of catch-up firings.
type PeriodicTimer struct {
	timer    Timer
	interval uint32 // ticks
	fire     func()
	armed    bool
	overruns atomic.Uint32
	oid      uint8
}

// NewPeriodicTimer returns a disarmed timer. oid tags its timing-ring events.
func NewPeriodicTimer(oid uint8) *PeriodicTimer {
	p := &PeriodicTimer{oid: oid}
	p.timer.Handler = p.handle
	return p
}

func (p *PeriodicTimer) Start(intervalUS uint32, fire func()) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if p.armed {
		removeTimer(&p.timer)
	}
	p.fire = fire
	p.interval = ticksFromInterval(intervalUS)
	p.timer.WakeTime = GetTime() + p.interval
	p.armed = true
	insertTimer(&p.timer)
	RecordTiming(EvtTimerSchedule, p.oid, GetTime(), p.timer.WakeTime, intervalUS)
}

func (p *PeriodicTimer) SetInterval(intervalUS uint32) {
	state := disableInterrupts()
	p.interval = ticksFromInterval(intervalUS)
	restoreInterrupts(state)
}

func (p *PeriodicTimer) Stop() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	p.armed = false
	removeTimer(&p.timer)
}

// Armed reports whether the timer will fire again.
func (p *PeriodicTimer) Armed() bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return p.armed
}

// Overruns returns the number of firings that missed a whole period.
func (p *PeriodicTimer) Overruns() uint32 {
	return p.overruns.Load()
}

func (p *PeriodicTimer) handle(t *Timer) TimerResult {
	now := dispatchTime
	due := t.WakeTime
	if lag := now - due; lag >= p.interval {
		p.overruns.Inc()
		RecordTiming(EvtTimerPast, p.oid, now, due, lag)
	}

	p.fire()
	if !p.armed {
		return TimerDone
	}

	t.WakeTime = due + p.interval
	if TimerBefore(t.WakeTime, now) || t.WakeTime == now {
		t.WakeTime = now + p.interval
	}
	return TimerReschedule
}

func ticksFromInterval(us uint32) uint32 {
	ticks := TimerFromUS(us)
	if ticks == 0 {
		ticks = 1
	}
	return ticks
}
