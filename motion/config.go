package motion

import "errors"

// Config holds the tunables of the motion core.
type Config struct {
	// StartFrequency is the step rate every move starts and ends at, in Hz.
	// It is also the floor for the cruise rate.
	StartFrequency float64

	// MinIntervalUS floors the tick period, capping the step rate.
	MinIntervalUS uint32

	// JogSteps is the length of one manual jog (one motor revolution).
	JogSteps int32

	// JogSpeeds are the cruise rates selected by presets 1, 2 and 3.
	JogSpeeds [3]uint32

	// InitialJogSpeed is the jog rate before any preset is selected.
	InitialJogSpeed uint32
}

// DefaultConfig returns the tunables for 200 step/rev motors on the
// dispensing gantry.
func DefaultConfig() Config {
	return Config{
		StartFrequency:  500,
		MinIntervalUS:   100,
		JogSteps:        200,
		JogSpeeds:       [3]uint32{500, 2000, 5000},
		InitialJogSpeed: 1000,
	}
}

var (
	ErrBadStartFrequency = errors.New("motion: start frequency must be positive")
	ErrBadMinInterval    = errors.New("motion: minimum interval must be positive")
	ErrMissingHardware   = errors.New("motion: hardware capability missing")
)

// Validate checks the values the tick handler divides by.
func (c Config) Validate() error {
	if !(c.StartFrequency > 0) {
		return ErrBadStartFrequency
	}
	if c.MinIntervalUS == 0 {
		return ErrBadMinInterval
	}
	return nil
}
