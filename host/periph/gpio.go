// Package periph drives the gantry step/dir/enable lines from a Linux board
// through periph.io, for bench runs of the host simulator on real drivers.
package periph

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"gantry/core"
)

// GPIODriver implements core.GPIODriver on top of the periph.io registry.
// Machine pin N maps to the global GPIO line Offset+N.
type GPIODriver struct {
	offset int
	logger *zap.SugaredLogger

	mu   sync.Mutex
	pins map[core.GPIOPin]gpio.PinIO
}

// NewGPIODriver initializes the periph host drivers once.
func NewGPIODriver(offset int, logger *zap.SugaredLogger) (*GPIODriver, error) {
	state, err := host.Init()
	if err != nil {
		return nil, errors.Wrap(err, "initialize periph host drivers")
	}
	for _, failure := range state.Failed {
		logger.Debugw("periph driver failed", "error", failure)
	}
	return newGPIODriver(offset, logger), nil
}

func newGPIODriver(offset int, logger *zap.SugaredLogger) *GPIODriver {
	return &GPIODriver{
		offset: offset,
		logger: logger,
		pins:   map[core.GPIOPin]gpio.PinIO{},
	}
}

func (d *GPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	name := strconv.Itoa(d.offset + int(pin))
	line := gpioreg.ByName(name)
	if line == nil {
		return errors.Wrapf(core.ErrInvalidPin, "no global pin found for %q", name)
	}
	if err := line.Out(gpio.Low); err != nil {
		return errors.Wrapf(err, "configure %s as output", line)
	}

	d.mu.Lock()
	d.pins[pin] = line
	d.mu.Unlock()
	d.logger.Debugw("configured output", "pin", pin, "line", line.Name())
	return nil
}

func (d *GPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	line, err := d.lookup(pin)
	if err != nil {
		return err
	}
	return line.Out(gpio.Level(value))
}

func (d *GPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	line, err := d.lookup(pin)
	if err != nil {
		return false, err
	}
	return bool(line.Read()), nil
}

func (d *GPIODriver) lookup(pin core.GPIOPin) (gpio.PinIO, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	line, ok := d.pins[pin]
	if !ok {
		return nil, core.ErrInvalidPin
	}
	return line, nil
}
