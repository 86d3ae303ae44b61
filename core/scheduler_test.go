package core

import "testing"

func TestTimerDispatchOrder(t *testing.T) {
	ResetTimers()
	SetTime(0)

	var order []int
	mk := func(id int, wake uint32) *Timer {
		return &Timer{WakeTime: wake, Handler: func(*Timer) TimerResult {
			order = append(order, id)
			return TimerDone
		}}
	}
	ScheduleTimer(mk(3, 300))
	ScheduleTimer(mk(1, 100))
	ScheduleTimer(mk(2, 200))

	SetTime(250)
	ProcessTimers()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("dispatch order = %v, want [1 2]", order)
	}

	SetTime(300)
	ProcessTimers()
	if len(order) != 3 || order[2] != 3 {
		t.Fatalf("dispatch order = %v, want [1 2 3]", order)
	}
}

func TestTimerDispatchAcrossWrap(t *testing.T) {
	ResetTimers()
	SetTime(0xFFFFFF00)

	fired := false
	ScheduleTimer(&Timer{WakeTime: 0x00000010, Handler: func(*Timer) TimerResult {
		fired = true
		return TimerDone
	}})

	SetTime(0xFFFFFFFF)
	ProcessTimers()
	if fired {
		t.Fatal("timer past the wrap should not fire early")
	}

	SetTime(0x10)
	ProcessTimers()
	if !fired {
		t.Fatal("timer should fire after the wrap")
	}
}

func TestCancelTimer(t *testing.T) {
	ResetTimers()
	SetTime(0)

	fired := false
	tm := &Timer{WakeTime: 50, Handler: func(*Timer) TimerResult {
		fired = true
		return TimerDone
	}}
	ScheduleTimer(tm)
	if !CancelTimer(tm) {
		t.Fatal("CancelTimer should find a queued timer")
	}
	if CancelTimer(tm) {
		t.Error("second CancelTimer should report false")
	}

	SetTime(100)
	ProcessTimers()
	if fired {
		t.Error("cancelled timer fired")
	}
}

func TestTimerReschedule(t *testing.T) {
	ResetTimers()
	SetTime(0)

	count := 0
	ScheduleTimer(&Timer{WakeTime: 10, Handler: func(tm *Timer) TimerResult {
		count++
		if count == 3 {
			return TimerDone
		}
		tm.WakeTime += 10
		return TimerReschedule
	}})

	SetTime(100)
	ProcessTimers()
	if count != 3 {
		t.Errorf("handler ran %d times, want 3", count)
	}
}
