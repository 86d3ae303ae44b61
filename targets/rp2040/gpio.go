//go:build rp2040

package main

import (
	"machine"

	"gantry/core"
)

const maxGPIO = 29

// RPGPIODriver drives bank 0 pins through machine.Pin. Pin numbers are GPIO
// numbers.
type RPGPIODriver struct {
	configured [maxGPIO + 1]bool
}

func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{}
}

// ConfigureOutput is idempotent; the pin starts low.
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if pin > maxGPIO {
		return core.ErrInvalidPin
	}
	if !d.configured[pin] {
		p := machine.Pin(pin)
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
		d.configured[pin] = true
	}
	return nil
}

func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	if pin > maxGPIO || !d.configured[pin] {
		return core.ErrInvalidPin
	}
	machine.Pin(pin).Set(value)
	return nil
}

func (d *RPGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	if pin > maxGPIO || !d.configured[pin] {
		return false, core.ErrInvalidPin
	}
	return machine.Pin(pin).Get(), nil
}
