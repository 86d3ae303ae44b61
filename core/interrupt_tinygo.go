//go:build tinygo

package core

import "runtime/interrupt"

type irqState = interrupt.State

// disableInterrupts masks interrupts and returns the previous mask. Calls
// nest: the tick handler reprograms its timer while dispatch holds the mask.
func disableInterrupts() irqState {
	return interrupt.Disable()
}

func restoreInterrupts(state irqState) {
	interrupt.Restore(state)
}
