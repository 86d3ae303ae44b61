package core

import "sync"

// DebugWriter receives one diagnostic line.
type DebugWriter func(string)

// TimingEvent is one entry of the motion trace ring.
type TimingEvent struct {
	EventType uint8
	OID       uint8
	Clock     uint32
	Value1    uint32
	Value2    uint32
}

// Event codes. Value meanings are listed per code.
const (
	EvtArm           = 1 // total steps, max freq
	EvtBusy          = 2 // -
	EvtTimerSchedule = 3 // first wake, interval us
	EvtTick          = 4 // step just taken, next interval us
	EvtTimerPast     = 5 // missed due time, lag us
	EvtComplete      = 6 // total steps
)

var evtNames = [...]string{
	EvtArm:           "ARM",
	EvtBusy:          "BUSY",
	EvtTimerSchedule: "TIMER_SCHED",
	EvtTick:          "TICK",
	EvtTimerPast:     "TIMER_PAST!",
	EvtComplete:      "COMPLETE",
}

func (e TimingEvent) String() string {
	name := "UNKNOWN"
	if int(e.EventType) < len(evtNames) && evtNames[e.EventType] != "" {
		name = evtNames[e.EventType]
	}
	return name + " oid=" + utoa(uint32(e.OID)) + " clock=" + utoa(e.Clock) +
		" v1=" + utoa(e.Value1) + " v2=" + utoa(e.Value2)
}

// TimingRingSize is the number of most recent events kept.
const TimingRingSize = 32

var (
	debugOut     DebugWriter
	debugEnabled bool

	// Ticks record from the timing context, everything else from the
	// foreground. On the target both hold the lock for a few stores.
	timingMu   sync.Mutex
	timingRing [TimingRingSize]TimingEvent
	timingHead uint8
	tickEvents uint32
)

// SetDebugWriter routes diagnostics to w and turns them on. A nil writer
// turns them off.
func SetDebugWriter(w DebugWriter) {
	debugOut = w
	debugEnabled = w != nil
}

// SetDebugEnabled mutes or unmutes the current writer.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled && debugOut != nil
}

func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes msg synchronously. Never call it from a tick.
func DebugPrintln(msg string) {
	if debugEnabled {
		debugOut(msg)
	}
}

// RecordTiming appends an event to the ring, overwriting the oldest. It does
// not allocate and is safe to call from a tick.
func RecordTiming(eventType, oid uint8, clock, value1, value2 uint32) {
	timingMu.Lock()
	if eventType == EvtTick {
		tickEvents++
	}
	timingRing[timingHead] = TimingEvent{
		EventType: eventType,
		OID:       oid,
		Clock:     clock,
		Value1:    value1,
		Value2:    value2,
	}
	timingHead = (timingHead + 1) % TimingRingSize
	timingMu.Unlock()
}

// TimingEvents returns the recorded events from oldest to newest.
func TimingEvents() []TimingEvent {
	timingMu.Lock()
	defer timingMu.Unlock()
	events := make([]TimingEvent, 0, TimingRingSize)
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(timingHead+i)%TimingRingSize]
		if evt.EventType != 0 {
			events = append(events, evt)
		}
	}
	return events
}

// TickCount is the number of EvtTick records since the last clear,
// including those already overwritten in the ring.
func TickCount() uint32 {
	timingMu.Lock()
	defer timingMu.Unlock()
	return tickEvents
}

// DumpTimingRing writes the ring through the debug writer, oldest first.
func DumpTimingRing() {
	if !debugEnabled {
		return
	}
	events := TimingEvents()
	debugOut("[TIMING] ticks=" + utoa(TickCount()) + " events=" + utoa(uint32(len(events))))
	for _, evt := range events {
		debugOut("[TIMING] " + evt.String())
	}
}

func ClearTimingRing() {
	timingMu.Lock()
	defer timingMu.Unlock()
	timingRing = [TimingRingSize]TimingEvent{}
	timingHead = 0
	tickEvents = 0
}
