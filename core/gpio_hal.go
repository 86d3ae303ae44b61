package core

import "errors"

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// ErrInvalidPin is returned by drivers for pins they cannot drive.
var ErrInvalidPin = errors.New("invalid gpio pin")

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads back the current pin level
	GetPin(pin GPIOPin) (bool, error)
}

// ParsePin parses a pin name of the form "gpio12" or "12".
func ParsePin(name string) (GPIOPin, error) {
	s := name
	if len(s) > 4 && (s[:4] == "gpio" || s[:4] == "GPIO") {
		s = s[4:]
	}
	if len(s) == 0 || len(s) > 3 {
		return 0, ErrInvalidPin
	}
	var n uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, ErrInvalidPin
		}
		n = n*10 + uint32(c-'0')
	}
	return GPIOPin(n), nil
}
