// Package sim runs the gantry firmware on the host. Ticks come from a
// clock.Clock instead of a hardware alarm and pins are traced in memory
// or driven through periph.io.
package sim

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gantry/core"
	"gantry/standalone"
	"gantry/standalone/config"
)

// Machine is a wired simulated machine.
type Machine struct {
	Manager *standalone.Manager
	Source  *ClockSource
	GPIO    core.GPIODriver
}

// NewMachine wires cfg onto driver with ticks from clk.
func NewMachine(cfg *config.MachineConfig, driver core.GPIODriver, clk clock.Clock, logger *zap.SugaredLogger) (*Machine, error) {
	src := NewClockSource(clk, logger.Named("ticks"))
	pulse := NewSpinPulseTimer(clk, time.Duration(cfg.PulseWidthUS)*time.Microsecond)

	m, err := standalone.NewMachine(cfg, driver, standalone.GPIOSteppers(driver), pulse, src)
	if err != nil {
		return nil, errors.Wrap(err, "wire simulated machine")
	}
	return &Machine{Manager: m, Source: src, GPIO: driver}, nil
}

// BridgeDebug routes core debug output into logger at debug level.
func BridgeDebug(logger *zap.SugaredLogger) {
	core.SetDebugWriter(func(s string) { logger.Debug(s) })
	core.SetDebugEnabled(logger.Desugar().Core().Enabled(zap.DebugLevel))
}
