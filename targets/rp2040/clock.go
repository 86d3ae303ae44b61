//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"gantry/core"
)

// TIMERAWL of the RP2040 timer block: the low word of a free-running 1 MHz
// counter, so one count is one core tick.
var timerRawLow = (*volatile.Register32)(unsafe.Pointer(uintptr(0x40054000 + 0x0C)))

// syncClock copies the hardware counter into the core timebase.
func syncClock() {
	core.SetTime(timerRawLow.Get())
}
