//go:build !tinygo

package core

// irqState is the saved interrupt mask. Host builds have no interrupts to
// mask: timers dispatch on the goroutine that calls ProcessTimers.
type irqState struct{}

func disableInterrupts() irqState { return irqState{} }

func restoreInterrupts(irqState) {}
