package standalone

import (
	"gantry/core"
	"gantry/motion"
	"gantry/standalone/config"
)

// wireError prefixes a wiring failure with the pin or axis it concerns and
// keeps the cause reachable through errors.Is.
type wireError struct {
	what string
	err  error
}

func (e *wireError) Error() string { return e.what + ": " + e.err.Error() }

func (e *wireError) Unwrap() error { return e.err }

// StepperFactory builds the outputs of one motor from its pins.
type StepperFactory func(stepPin, dirPin core.GPIOPin, invertStep, invertDir bool) (core.StepperOutput, error)

// GPIOSteppers returns a factory producing plain GPIO step/dir outputs.
func GPIOSteppers(driver core.GPIODriver) StepperFactory {
	return func(stepPin, dirPin core.GPIOPin, invertStep, invertDir bool) (core.StepperOutput, error) {
		return core.NewGPIOStepper(driver, stepPin, dirPin, invertStep, invertDir)
	}
}

// NewHardware wires the configured pins into the capabilities the motion
// core needs. Axes with several motors get a core.Gang.
func NewHardware(cfg *config.MachineConfig, gpio core.GPIODriver, steppers StepperFactory,
	pulse core.PulseTimer, timer core.TimingSource) (motion.Hardware, error) {

	hw := motion.Hardware{Pulse: pulse, Timer: timer}

	for i, name := range config.AxisNames {
		axisCfg, ok := cfg.Axes[name]
		if !ok {
			return hw, config.ErrMissingAxis
		}
		if len(axisCfg.StepPins) == 0 || len(axisCfg.StepPins) != len(axisCfg.DirPins) {
			return hw, config.ErrMissingPins
		}

		outputs := make(core.Gang, 0, len(axisCfg.StepPins))
		for j := range axisCfg.StepPins {
			stepPin, err := core.ParsePin(axisCfg.StepPins[j])
			if err != nil {
				return hw, &wireError{"axis " + name + ": step pin " + axisCfg.StepPins[j], err}
			}
			dirPin, err := core.ParsePin(axisCfg.DirPins[j])
			if err != nil {
				return hw, &wireError{"axis " + name + ": dir pin " + axisCfg.DirPins[j], err}
			}
			out, err := steppers(stepPin, dirPin, axisCfg.InvertStep, axisCfg.InvertDir)
			if err != nil {
				return hw, &wireError{"axis " + name, err}
			}
			outputs = append(outputs, out)
		}

		if len(outputs) == 1 {
			hw.Axes[i] = outputs[0]
		} else {
			hw.Axes[i] = outputs
		}
	}

	enPin, err := core.ParsePin(cfg.EnablePin)
	if err != nil {
		return hw, &wireError{"enable pin " + cfg.EnablePin, err}
	}
	enable, err := core.NewGPIOEnable(gpio, enPin, !cfg.EnableActiveHigh)
	if err != nil {
		return hw, &wireError{"enable pin " + cfg.EnablePin, err}
	}
	hw.Enable = enable

	return hw, nil
}

// NewMachine builds the motion controller and console for cfg.
func NewMachine(cfg *config.MachineConfig, gpio core.GPIODriver, steppers StepperFactory,
	pulse core.PulseTimer, timer core.TimingSource) (*Manager, error) {

	hw, err := NewHardware(cfg, gpio, steppers, pulse, timer)
	if err != nil {
		return nil, err
	}
	ctl, err := motion.New(hw, cfg.MotionConfig())
	if err != nil {
		return nil, err
	}
	return NewManager(cfg, ctl), nil
}
