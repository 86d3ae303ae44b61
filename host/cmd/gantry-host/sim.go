package main

import (
	"os"
	"os/signal"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"gantry/core"
	"gantry/host/periph"
	"gantry/sim"
	"gantry/standalone/config"
)

const simMaxPin = 29

func simAction(c *cli.Context, logger *zap.SugaredLogger) error {
	cfg, err := loadMachineConfig(c.String(flagConfig))
	if err != nil {
		return err
	}

	var driver core.GPIODriver
	switch c.String(flagBackend) {
	case backendTrace:
		driver = sim.NewTraceDriver(simMaxPin, logger.Named("pins"))
	case backendPeriph:
		if driver, err = periph.NewGPIODriver(c.Int(flagGPIOOffset), logger.Named("periph")); err != nil {
			return err
		}
	default:
		return errors.Errorf("unknown backend %q", c.String(flagBackend))
	}

	sim.BridgeDebug(logger.Named("core"))
	clk := clock.New()
	machine, err := sim.NewMachine(cfg, driver, clk, logger.Named("sim"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	runErr := sim.NewConsole(machine.Manager, clk, logger.Named("console")).Run(ctx, c.App.Reader, c.App.Writer)
	machine.Source.Stop()
	core.DumpTimingRing()
	logger.Infow("simulation finished",
		"ticks", machine.Source.Fires(),
		"overruns", machine.Source.Overruns(),
		"faults", machine.Manager.Controller().Faults(),
		"position", machine.Manager.Controller().Position())

	if trace, ok := driver.(*sim.TraceDriver); ok {
		summary, err := pulseTable(cfg, trace)
		if err != nil {
			return err
		}
		logger.Info("\n" + summary)
	}
	return runErr
}

func loadMachineConfig(path string) (*config.MachineConfig, error) {
	if path == "" {
		return config.DefaultGantryConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read machine config")
	}
	cfg, err := config.LoadConfig(data)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return cfg, nil
}

// pulseTable lists the step pulses counted on every configured step pin.
func pulseTable(cfg *config.MachineConfig, trace *sim.TraceDriver) (string, error) {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Axis", "Step pin", "Pulses", "Dir level"})
	for _, name := range config.AxisNames {
		axis := cfg.Axes[name]
		for i, pinName := range axis.StepPins {
			step, err := core.ParsePin(pinName)
			if err != nil {
				return "", errors.Wrapf(err, "axis %s", name)
			}
			dir, err := core.ParsePin(axis.DirPins[i])
			if err != nil {
				return "", errors.Wrapf(err, "axis %s", name)
			}
			t.AppendRow(table.Row{strings.ToUpper(name), pinName, trace.Rises(step), trace.Level(dir)})
		}
	}
	return t.Render(), nil
}
