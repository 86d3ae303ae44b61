//go:build rp2040

// Command rp2040 is the gantry firmware for RP2040 boards. It runs the
// console on USB CDC and dispatches step ticks from the main loop.
package main

import (
	"machine"
	"time"

	"gantry/core"
	"gantry/standalone"
	"gantry/standalone/config"
	"gantry/targets/pio"
)

const (
	rxBufferSize = 256
	stepTimerOID = 1
)

func main() {
	// Clear whatever watchdog state a previous image left armed.
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	cfg := config.DefaultGantryConfig()
	link := newUSBLink(cfg.Baud, rxBufferSize)
	syncClock()
	core.TimerInit()

	steppers, pulse := pio.Steppers(cfg.StepBackend, cfg.PulseWidthUS, NewDelayPulseTimer(cfg.PulseWidthUS))
	manager, err := standalone.NewMachine(cfg, NewRPGPIODriver(), steppers, pulse, core.NewPeriodicTimer(stepTimerOID))
	if err != nil {
		blinkError()
	}

	go link.readLoop()
	manager.Start()
	for {
		syncClock()
		link.feed(manager)
		manager.Poll()
		link.flush(manager)
		core.ProcessTimers()

		// Let the reader goroutine run.
		time.Sleep(10 * time.Microsecond)
	}
}

// blinkError flashes the LED forever when the machine cannot be wired.
func blinkError() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
