package core

// PulseEmitter drives the step output of one axis. The two edges are split so
// several axes can be raised together, held for one shared pulse width, and
// lowered together. Hardware one-shot backends do the whole pulse in StepHigh
// and make StepLow a no-op.
//
// Both methods run inside the tick handler and must not block or allocate.
type PulseEmitter interface {
	StepHigh()
	StepLow()
}

// DirectionLatch sets the direction output of one axis.
type DirectionLatch interface {
	SetDirection(forward bool)
}

// StepperOutput is the per-axis pair of outputs a motor driver needs.
type StepperOutput interface {
	PulseEmitter
	DirectionLatch
}

// EnableSwitch gates power to all motor drivers.
type EnableSwitch interface {
	SetEnabled(on bool)
}

// PulseTimer holds the step outputs high for at least the driver's minimum
// pulse width. Implementations must return within a bounded time.
type PulseTimer interface {
	WaitPulseWidth()
}

// TimingSource is a reprogrammable periodic timer with microsecond resolution.
type TimingSource interface {
	// Start arms the source: fire runs every intervalUS microseconds, the
	// first time one interval from now. Restarting an armed source resets
	// its phase.
	Start(intervalUS uint32, fire func())

	// SetInterval changes the period. Called from fire, it sets the delay
	// until the next firing.
	SetInterval(intervalUS uint32)

	// Stop disarms the source. Safe to call from fire.
	Stop()
}

// FaultCounter is implemented by outputs that count rejected writes instead
// of returning errors from the tick handler.
type FaultCounter interface {
	Faults() uint32
}

// FaultsOf returns v's fault count, or 0 when v does not count faults.
func FaultsOf(v interface{}) uint32 {
	if fc, ok := v.(FaultCounter); ok {
		return fc.Faults()
	}
	return 0
}

// Gang mirrors every pulse and direction change onto several outputs, used
// for an axis driven by two motors in parallel.
type Gang []StepperOutput

func (g Gang) StepHigh() {
	for _, o := range g {
		o.StepHigh()
	}
}

func (g Gang) StepLow() {
	for _, o := range g {
		o.StepLow()
	}
}

func (g Gang) SetDirection(forward bool) {
	for _, o := range g {
		o.SetDirection(forward)
	}
}

// Faults sums the members' fault counts.
func (g Gang) Faults() uint32 {
	var n uint32
	for _, o := range g {
		n += FaultsOf(o)
	}
	return n
}

// NoPulseWait is the PulseTimer for backends that time the pulse in hardware.
type NoPulseWait struct{}

func (NoPulseWait) WaitPulseWidth() {}
