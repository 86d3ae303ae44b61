package core

// TimerResult tells dispatch what to do with a timer after its handler ran.
type TimerResult uint8

const (
	TimerDone TimerResult = iota
	// TimerReschedule requeues the timer at its (updated) WakeTime.
	TimerReschedule
)

// Timer is an entry in the wake-ordered timer list. The list is intrusive:
// a Timer can be queued at most once.
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) TimerResult
	Next     *Timer
}

var (
	timerList *Timer
	// dispatchTime is the clock sampled by the current ProcessTimers pass.
	dispatchTime uint32
)

// ScheduleTimer queues t by WakeTime. Equal wake times run in queue order.
func ScheduleTimer(t *Timer) {
	state := disableInterrupts()
	insertTimer(t)
	restoreInterrupts(state)
}

// CancelTimer removes t and reports whether it was queued. A timer whose
// handler is running is not queued.
func CancelTimer(t *Timer) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	return removeTimer(t)
}

// ResetTimers drops every queued timer
func ResetTimers() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	for timerList != nil {
		t := timerList
		timerList, t.Next = t.Next, nil
	}
}

func insertTimer(t *Timer) {
	link := &timerList
	for *link != nil && !TimerBefore(t.WakeTime, (*link).WakeTime) {
		link = &(*link).Next
	}
	t.Next, *link = *link, t
}

func removeTimer(t *Timer) bool {
	for link := &timerList; *link != nil; link = &(*link).Next {
		if *link == t {
			*link, t.Next = t.Next, nil
			return true
		}
	}
	return false
}

// dispatchTimers runs every timer due at now, including ones a handler
// reschedules into the past.
func dispatchTimers(now uint32) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	dispatchTime = now
	for timerList != nil && !TimerBefore(now, timerList.WakeTime) {
		t := timerList
		timerList, t.Next = t.Next, nil
		if t.Handler(t) == TimerReschedule {
			insertTimer(t)
		}
	}
}
