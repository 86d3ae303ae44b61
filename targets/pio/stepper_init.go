//go:build rp2040

package pio

import (
	"errors"

	"gantry/core"
	"gantry/standalone"
)

const (
	numPIO        = 2
	smPerPIO      = 4
	stateMachines = numPIO * smPerPIO
)

// ErrNoStateMachine is returned once every state machine drives a motor.
var ErrNoStateMachine = errors.New("pio: all state machines in use")

// smInUse is indexed pio*smPerPIO + sm. nextSM rotates so consecutive axes
// land on different state machines of the same block first.
var (
	smInUse [stateMachines]bool
	nextSM  int
)

// Steppers returns the stepper factory for backend together with the pulse
// timer it needs. The "gpio" backend drives SIO registers and holds the pulse
// with wait; the "pio" backend times the pulse in a state machine.
func Steppers(backend string, pulseWidthUS uint32, wait core.PulseTimer) (standalone.StepperFactory, core.PulseTimer) {
	if backend == "pio" {
		return func(stepPin, dirPin core.GPIOPin, invertStep, invertDir bool) (core.StepperOutput, error) {
			pioNum, smNum, ok := allocatePIO()
			if !ok {
				return nil, ErrNoStateMachine
			}
			return NewPIOStepper(pioNum, smNum, stepPin, dirPin, invertStep, invertDir, pulseWidthUS)
		}, core.NoPulseWait{}
	}
	return func(stepPin, dirPin core.GPIOPin, invertStep, invertDir bool) (core.StepperOutput, error) {
		return NewSIOStepper(stepPin, dirPin, invertStep, invertDir), nil
	}, wait
}

func allocatePIO() (pioNum, smNum uint8, ok bool) {
	for i := 0; i < stateMachines; i++ {
		slot := (nextSM + i) % stateMachines
		if !smInUse[slot] {
			smInUse[slot] = true
			nextSM = (slot + 1) % stateMachines
			return uint8(slot / smPerPIO), uint8(slot % smPerPIO), true
		}
	}
	return 0, 0, false
}
