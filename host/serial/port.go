// Package serial opens the gantry console over a USB CDC or UART device.
package serial

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/tarm/serial"
)

// DefaultBaud matches the firmware UART. USB CDC ignores it.
const DefaultBaud = 115200

// Port is what the console client needs from a link. Tests substitute
// in-process pipes to the simulator.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

// Config selects the device. A zero ReadTimeout blocks reads until data
// arrives, which the line reader relies on.
type Config struct {
	Device      string
	Baud        int
	ReadTimeout time.Duration
}

func DefaultConfig(device string) *Config {
	return &Config{Device: device, Baud: DefaultBaud}
}

// Open opens cfg.Device. The returned port's Flush discards unread input.
func Open(cfg *Config) (Port, error) {
	if cfg == nil || cfg.Device == "" {
		return nil, errors.New("serial: no device given")
	}
	if cfg.Baud <= 0 {
		return nil, errors.Errorf("serial: bad baud rate %d", cfg.Baud)
	}

	p, err := serial.OpenPort(&serial.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.Device)
	}
	return p, nil
}
