//go:build rp2040

package main

import (
	"time"

	"tinygo.org/x/drivers/delay"
)

// DelayPulseTimer busy-waits the step pulse width with cycle-counted delays.
type DelayPulseTimer struct {
	width time.Duration
}

func NewDelayPulseTimer(widthUS uint32) *DelayPulseTimer {
	return &DelayPulseTimer{width: time.Duration(widthUS) * time.Microsecond}
}

func (p *DelayPulseTimer) WaitPulseWidth() {
	delay.Sleep(p.width)
}
