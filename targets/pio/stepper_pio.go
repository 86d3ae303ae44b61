//go:build rp2040

package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"gantry/core"
)

// One-shot pulse program. Each word pulled from the TX FIFO produces one
// step pulse whose high time is (word+2) state machine cycles:
//
//	0: pull block
//	1: out x, 32
//	2: set pins, 1
//	3: jmp x--, 3
//	4: set pins, 0
//
// The program length is pulseProgramLen.
func buildPulseProgram(invert bool) []uint16 {
	on, off := uint8(1), uint8(0)
	if invert {
		on, off = off, on
	}
	return []uint16{
		rp2pio.EncodePull(false, true),
		rp2pio.EncodeOut(rp2pio.SrcDestX, 32),
		rp2pio.EncodeSet(rp2pio.SrcDestPins, on),
		rp2pio.EncodeJmp(3, rp2pio.JmpXNZeroDec),
		rp2pio.EncodeSet(rp2pio.SrcDestPins, off),
	}
}

const (
	pulseProgramOrigin = -1 // relocatable

	// 125MHz / 125 = one state machine cycle per microsecond
	pulseClockDiv = 125
)

// loaded program offsets per [pio][inverted]
var (
	programLoaded [2][2]bool
	programOffset [2][2]uint8
)

// PIOStepper emits each step pulse from a PIO state machine, so the tick
// handler only pushes a FIFO word. Direction stays on a plain output.
type PIOStepper struct {
	sm        rp2pio.StateMachine
	dirPin    machine.Pin
	invertDir bool
	width     uint32 // FIFO word for the configured pulse width
}

// NewPIOStepper loads the pulse program (once per PIO and polarity) and
// starts state machine smNum on stepPin.
func NewPIOStepper(pioNum, smNum uint8, stepPin, dirPin core.GPIOPin, invertStep, invertDir bool, pulseWidthUS uint32) (*PIOStepper, error) {
	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}
	polarity := 0
	if invertStep {
		polarity = 1
	}

	program := buildPulseProgram(invertStep)
	if !programLoaded[pioNum][polarity] {
		// AddProgram relocates the jump for the chosen offset.
		offset, err := pioHW.AddProgram(program, pulseProgramOrigin)
		if err != nil {
			return nil, err
		}
		programLoaded[pioNum][polarity] = true
		programOffset[pioNum][polarity] = offset
	}
	offset := programOffset[pioNum][polarity]

	sm := pioHW.StateMachine(smNum)
	sm.TryClaim()

	step := machine.Pin(stepPin)
	step.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(step, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(wrapBounds(offset, uint8(len(program))))
	cfg.SetClkDivIntFrac(pulseClockDiv, 0)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(step, 1, true)
	sm.SetPinsConsecutive(step, 1, invertStep)
	sm.SetEnabled(true)

	dir := machine.Pin(dirPin)
	dir.Configure(machine.PinConfig{Mode: machine.PinOutput})

	width := uint32(0)
	if pulseWidthUS > 2 {
		width = pulseWidthUS - 2
	}
	s := &PIOStepper{sm: sm, dirPin: dir, invertDir: invertDir, width: width}
	s.SetDirection(false)
	return s, nil
}

// StepHigh queues one pulse. The FIFO holds four words, far more than the
// tick rate can use, so a full FIFO means the state machine has stalled.
func (s *PIOStepper) StepHigh() {
	if !s.sm.IsTxFIFOFull() {
		s.sm.TxPut(s.width)
	}
}

// StepLow is a no-op: the state machine ends the pulse.
func (s *PIOStepper) StepLow() {}

func (s *PIOStepper) SetDirection(forward bool) {
	s.dirPin.Set(forward != s.invertDir)
}
