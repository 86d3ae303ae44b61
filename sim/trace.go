package sim

import (
	"sync"

	"go.uber.org/zap"

	"gantry/core"
)

// TraceDriver is a core.GPIODriver that keeps pin levels in memory and counts
// rising edges, so a simulated machine can be checked pulse for pulse.
type TraceDriver struct {
	logger *zap.SugaredLogger
	maxPin core.GPIOPin

	mu         sync.Mutex
	configured map[core.GPIOPin]bool
	levels     map[core.GPIOPin]bool
	rises      map[core.GPIOPin]uint64
}

// NewTraceDriver accepts pins 0 through maxPin.
func NewTraceDriver(maxPin core.GPIOPin, logger *zap.SugaredLogger) *TraceDriver {
	return &TraceDriver{
		logger:     logger,
		maxPin:     maxPin,
		configured: map[core.GPIOPin]bool{},
		levels:     map[core.GPIOPin]bool{},
		rises:      map[core.GPIOPin]uint64{},
	}
}

func (d *TraceDriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin > d.maxPin {
		return core.ErrInvalidPin
	}
	d.mu.Lock()
	d.configured[pin] = true
	d.mu.Unlock()
	d.logger.Debugw("configure output", "pin", pin)
	return nil
}

func (d *TraceDriver) SetPin(pin core.GPIOPin, value bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.configured[pin] {
		return core.ErrInvalidPin
	}
	if value && !d.levels[pin] {
		d.rises[pin]++
	}
	d.levels[pin] = value
	return nil
}

func (d *TraceDriver) GetPin(pin core.GPIOPin) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.configured[pin] {
		return false, core.ErrInvalidPin
	}
	return d.levels[pin], nil
}

// Rises returns the number of low-to-high transitions seen on pin.
func (d *TraceDriver) Rises(pin core.GPIOPin) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rises[pin]
}

// Level returns the last level written to pin.
func (d *TraceDriver) Level(pin core.GPIOPin) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[pin]
}
