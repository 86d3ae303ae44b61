package core

import "go.uber.org/atomic"

// GPIOStepper drives a step/dir driver through plain GPIO pins.
type GPIOStepper struct {
	driver     GPIODriver
	stepPin    GPIOPin
	dirPin     GPIOPin
	invertStep bool
	invertDir  bool
	faults     atomic.Uint32 // failed pin writes
}

// NewGPIOStepper configures both pins as outputs and parks them at the idle
// step level and the reverse direction level.
func NewGPIOStepper(driver GPIODriver, stepPin, dirPin GPIOPin, invertStep, invertDir bool) (*GPIOStepper, error) {
	if err := driver.ConfigureOutput(stepPin); err != nil {
		return nil, err
	}
	if err := driver.ConfigureOutput(dirPin); err != nil {
		return nil, err
	}
	s := &GPIOStepper{
		driver:     driver,
		stepPin:    stepPin,
		dirPin:     dirPin,
		invertStep: invertStep,
		invertDir:  invertDir,
	}
	s.StepLow()
	s.SetDirection(false)
	return s, nil
}

func (s *GPIOStepper) StepHigh() {
	s.write(s.stepPin, !s.invertStep)
}

func (s *GPIOStepper) StepLow() {
	s.write(s.stepPin, s.invertStep)
}

// SetDirection drives the dir pin high for forward unless inverted.
func (s *GPIOStepper) SetDirection(forward bool) {
	s.write(s.dirPin, forward != s.invertDir)
}

// Faults returns how many pin writes the driver rejected.
func (s *GPIOStepper) Faults() uint32 {
	return s.faults.Load()
}

func (s *GPIOStepper) write(pin GPIOPin, level bool) {
	if err := s.driver.SetPin(pin, level); err != nil {
		s.faults.Inc()
	}
}

// GPIOEnable drives the shared driver-enable line. Most step/dir drivers use
// an active-low EN input.
type GPIOEnable struct {
	driver    GPIODriver
	pin       GPIOPin
	activeLow bool
	faults    atomic.Uint32
}

// NewGPIOEnable configures the pin and leaves the drivers disabled.
func NewGPIOEnable(driver GPIODriver, pin GPIOPin, activeLow bool) (*GPIOEnable, error) {
	if err := driver.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	e := &GPIOEnable{driver: driver, pin: pin, activeLow: activeLow}
	e.SetEnabled(false)
	return e, nil
}

func (e *GPIOEnable) SetEnabled(on bool) {
	if err := e.driver.SetPin(e.pin, on != e.activeLow); err != nil {
		e.faults.Inc()
	}
}

func (e *GPIOEnable) Faults() uint32 {
	return e.faults.Load()
}
