// Command gantry-host drives the gantry firmware over its serial console and
// runs the same firmware core as a host simulation.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gantry/host/mcu"
	"gantry/host/serial"
)

const (
	flagDevice     = "device"
	flagBaud       = "baud"
	flagDebug      = "debug"
	flagLogJSON    = "log-json"
	flagTimeout    = "timeout"
	flagListen     = "listen"
	flagConfig     = "config"
	flagBackend    = "backend"
	flagGPIOOffset = "gpio-offset"
	flagStartFreq  = "start-frequency"
	flagMinPeriod  = "min-interval"

	backendTrace  = "trace"
	backendPeriph = "periph"
)

func main() {
	var logger *zap.SugaredLogger

	app := &cli.App{
		Name:  "gantry-host",
		Usage: "drive and simulate the gantry motion controller",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagDevice,
				Aliases: []string{"d"},
				Value:   "/dev/ttyACM0",
				Usage:   "serial `DEVICE` of the firmware console",
			},
			&cli.IntFlag{
				Name:  flagBaud,
				Value: 115200,
				Usage: "baud rate (ignored for USB CDC)",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
			&cli.BoolFlag{
				Name:  flagLogJSON,
				Usage: "log as JSON",
			},
		},
		Before: func(c *cli.Context) error {
			var err error
			logger, err = newLogger(c.Bool(flagDebug), c.Bool(flagLogJSON))
			return err
		},
		After: func(c *cli.Context) error {
			if logger != nil {
				_ = logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "send",
				Usage:     "send console lines and print the replies",
				ArgsUsage: "LINE...",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  flagListen,
						Value: 500 * time.Millisecond,
						Usage: "how long to print replies after the last line",
					},
				},
				Action: func(c *cli.Context) error {
					return sendAction(c, logger)
				},
			},
			{
				Name:  "shell",
				Usage: "interactive motion shell",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  flagTimeout,
						Value: 30 * time.Second,
						Usage: "limit for a single shell command",
					},
				},
				Action: func(c *cli.Context) error {
					return shellAction(c, logger)
				},
			},
			{
				Name:  "jog",
				Usage: "full-screen jog pad",
				Action: func(c *cli.Context) error {
					return jogAction(c, logger)
				},
			},
			{
				Name:      "plan",
				Usage:     "print the motion profile of a relative move",
				ArgsUsage: "DX DY DZ [FEED]",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagStartFreq,
						Value: 500,
						Usage: "start and end step rate in steps/s",
					},
					&cli.UintFlag{
						Name:  flagMinPeriod,
						Value: 100,
						Usage: "shortest step period in microseconds",
					},
				},
				Action: planAction,
			},
			{
				Name:  "sim",
				Usage: "run the firmware core on this machine, console on stdin/stdout",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "machine configuration `FILE` (JSON)",
					},
					&cli.StringFlag{
						Name:  flagBackend,
						Value: backendTrace,
						Usage: "pin backend: trace or periph",
					},
					&cli.IntFlag{
						Name:  flagGPIOOffset,
						Usage: "global GPIO number of machine pin 0 (periph backend)",
					},
				},
				Action: func(c *cli.Context) error {
					return simAction(c, logger)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(debug, jsonOutput bool) (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if jsonOutput {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return l.Sugar(), nil
}

func connect(c *cli.Context, logger *zap.SugaredLogger) (*mcu.MCU, error) {
	cfg := serial.DefaultConfig(c.String(flagDevice))
	cfg.Baud = c.Int(flagBaud)
	logger.Debugw("connecting", "device", cfg.Device, "baud", cfg.Baud)
	return mcu.Connect(cfg, logger.Named("mcu"))
}

func sendAction(c *cli.Context, logger *zap.SugaredLogger) (err error) {
	if c.NArg() == 0 {
		return errors.New("send needs at least one line")
	}
	m, err := connect(c, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Combine(err, m.Close()) }()

	for _, line := range c.Args().Slice() {
		if err := m.Send(line); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(c.Context, c.Duration(flagListen))
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-m.Lines():
			if !ok {
				return nil
			}
			fmt.Fprintln(c.App.Writer, line)
		}
	}
}
