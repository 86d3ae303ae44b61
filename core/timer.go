package core

import "go.uber.org/atomic"

// The motion timebase counts microseconds. RP2040's hardware timer runs at
// exactly this rate so ticks and microseconds coincide on the target.
const (
	TimerFreq = 1000000 // 1MHz
)

var (
	bootTime uint32 // Time at boot for uptime calculation

	// Set by the platform clock poller; read from the tick handler and the
	// foreground, which are separate goroutines on the host.
	systemTicks atomic.Uint32
)

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	return systemTicks.Load()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	systemTicks.Store(ticks)
}

// AdvanceTime moves the system time forward by the given number of ticks
func AdvanceTime(ticks uint32) {
	systemTicks.Add(ticks)
}

// GetUptime returns ticks elapsed since TimerInit, wrapping at 32 bits
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromUS converts microseconds to timer ticks
func TimerFromUS(us uint32) uint32 {
	return uint32(uint64(us) * TimerFreq / 1000000)
}

// TimerToUS converts timer ticks to microseconds
func TimerToUS(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000000 / TimerFreq)
}

// TimerBefore reports whether a is strictly earlier than b, tolerating wraparound
func TimerBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// TimerInit initializes the system timer
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers runs the timers due at the current system time
func ProcessTimers() {
	dispatchTimers(GetTime())
}
