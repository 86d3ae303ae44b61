//go:build rp2040

package pio

import (
	"device/arm"
	"device/rp"
	"machine"

	"gantry/core"
)

// SIOStepper drives step and dir through the single-cycle IO block. The
// pulse width is held by the caller between StepHigh and StepLow.
type SIOStepper struct {
	// Masks for the active and idle levels, swapped when inverted
	stepOnMask, stepOffMask uint32
	stepOnSet               bool
	dirMask                 uint32
	invertDir               bool
}

// NewSIOStepper configures both pins as outputs with step idle.
func NewSIOStepper(stepPin, dirPin core.GPIOPin, invertStep, invertDir bool) *SIOStepper {
	step := machine.Pin(stepPin)
	dir := machine.Pin(dirPin)
	step.Configure(machine.PinConfig{Mode: machine.PinOutput})
	dir.Configure(machine.PinConfig{Mode: machine.PinOutput})

	s := &SIOStepper{
		stepOnMask:  1 << stepPin,
		stepOffMask: 1 << stepPin,
		stepOnSet:   !invertStep,
		dirMask:     1 << dirPin,
		invertDir:   invertDir,
	}
	s.StepLow()
	s.SetDirection(false)
	return s
}

func (s *SIOStepper) StepHigh() {
	if s.stepOnSet {
		rp.SIO.GPIO_OUT_SET.Set(s.stepOnMask)
	} else {
		rp.SIO.GPIO_OUT_CLR.Set(s.stepOnMask)
	}
}

func (s *SIOStepper) StepLow() {
	if s.stepOnSet {
		rp.SIO.GPIO_OUT_CLR.Set(s.stepOffMask)
	} else {
		rp.SIO.GPIO_OUT_SET.Set(s.stepOffMask)
	}
}

// SetDirection latches the direction level. Dir-to-step setup for TMC
// drivers is 20ns; 3 NOPs is ~24ns @ 125MHz.
func (s *SIOStepper) SetDirection(forward bool) {
	if forward != s.invertDir {
		rp.SIO.GPIO_OUT_SET.Set(s.dirMask)
	} else {
		rp.SIO.GPIO_OUT_CLR.Set(s.dirMask)
	}
	arm.Asm("nop\nnop\nnop")
}
