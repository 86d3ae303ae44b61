package sim

import (
	"time"

	"github.com/benbjohnson/clock"
)

// maxSpins bounds WaitPulseWidth even on a clock that never advances.
const maxSpins = 100000

// SpinPulseTimer busy-waits on a clock for the step pulse width.
type SpinPulseTimer struct {
	clk   clock.Clock
	width time.Duration
}

func NewSpinPulseTimer(clk clock.Clock, width time.Duration) *SpinPulseTimer {
	return &SpinPulseTimer{clk: clk, width: width}
}

func (p *SpinPulseTimer) WaitPulseWidth() {
	start := p.clk.Now()
	for i := 0; i < maxSpins && p.clk.Since(start) < p.width; i++ {
	}
}
