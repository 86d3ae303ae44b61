package config

import (
	"encoding/json"
	"errors"

	"gantry/motion"
)

// AxisConfig describes the motor outputs of one logical axis. An axis with
// several step pins drives ganged motors that always move together.
type AxisConfig struct {
	StepPins   []string `json:"step_pins"`
	DirPins    []string `json:"dir_pins"`
	InvertStep bool     `json:"invert_step"`
	InvertDir  bool     `json:"invert_dir"`
}

// MachineConfig represents the complete machine configuration
type MachineConfig struct {
	Axes map[string]AxisConfig `json:"axes"` // "x", "y", "z"

	EnablePin        string `json:"enable_pin"`
	EnableActiveHigh bool   `json:"enable_active_high"` // EN is active-low unless set

	// StepBackend selects how pulses are produced on the RP2040: "gpio"
	// toggles pins around a timed wait, "pio" uses a one-shot state machine.
	StepBackend  string `json:"step_backend"`
	PulseWidthUS uint32 `json:"pulse_width_us"`

	// Motion parameters, all in steps and steps per second
	StartFrequency  float64  `json:"start_frequency"`
	MinIntervalUS   uint32   `json:"min_interval_us"`
	DefaultFeed     uint32   `json:"default_feed"`
	JogSteps        int32    `json:"jog_steps"`
	JogSpeeds       []uint32 `json:"jog_speeds"`
	InitialJogSpeed uint32   `json:"initial_jog_speed"`

	// Console
	LineBufferSize int  `json:"line_buffer_size"`
	NoEcho         bool `json:"no_echo"`
	Baud           int  `json:"baud"`
}

var (
	ErrMissingAxis     = errors.New("config: axis missing")
	ErrMissingPins     = errors.New("config: axis needs matching step and dir pins")
	ErrMissingEnable   = errors.New("config: enable pin missing")
	ErrBadJogSpeeds    = errors.New("config: exactly three jog speeds required")
	ErrBadStepBackend  = errors.New("config: step backend must be gpio or pio")
	ErrBadLineBuffer   = errors.New("config: line buffer too small")
	ErrBadMotionConfig = errors.New("config: start frequency and minimum interval must be positive")
)

// AxisNames lists the axes in motion.Axis order.
var AxisNames = [motion.NumAxes]string{"x", "y", "z"}

// LoadConfig parses a JSON configuration string and returns a MachineConfig
func LoadConfig(jsonData []byte) (*MachineConfig, error) {
	var config MachineConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values with sensible defaults
func applyDefaults(config *MachineConfig) {
	def := motion.DefaultConfig()

	if config.StepBackend == "" {
		config.StepBackend = "gpio"
	}
	if config.PulseWidthUS == 0 {
		config.PulseWidthUS = 2
	}
	if config.StartFrequency == 0 {
		config.StartFrequency = def.StartFrequency
	}
	if config.MinIntervalUS == 0 {
		config.MinIntervalUS = def.MinIntervalUS
	}
	if config.DefaultFeed == 0 {
		config.DefaultFeed = 2000
	}
	if config.JogSteps == 0 {
		config.JogSteps = def.JogSteps
	}
	if len(config.JogSpeeds) == 0 {
		config.JogSpeeds = def.JogSpeeds[:]
	}
	if config.InitialJogSpeed == 0 {
		config.InitialJogSpeed = def.InitialJogSpeed
	}
	if config.LineBufferSize == 0 {
		config.LineBufferSize = 128
	}
	if config.Baud == 0 {
		config.Baud = 115200
	}
}

// Validate checks that every axis can be wired and the motion values are usable
func (c *MachineConfig) Validate() error {
	for _, name := range AxisNames {
		axis, ok := c.Axes[name]
		if !ok {
			return ErrMissingAxis
		}
		if len(axis.StepPins) == 0 || len(axis.StepPins) != len(axis.DirPins) {
			return ErrMissingPins
		}
	}
	if c.EnablePin == "" {
		return ErrMissingEnable
	}
	if c.StepBackend != "gpio" && c.StepBackend != "pio" {
		return ErrBadStepBackend
	}
	if len(c.JogSpeeds) != 3 {
		return ErrBadJogSpeeds
	}
	if c.LineBufferSize < 2 {
		return ErrBadLineBuffer
	}
	if err := c.MotionConfig().Validate(); err != nil {
		return ErrBadMotionConfig
	}
	return nil
}

// MotionConfig extracts the motion core tunables.
func (c *MachineConfig) MotionConfig() motion.Config {
	mc := motion.Config{
		StartFrequency:  c.StartFrequency,
		MinIntervalUS:   c.MinIntervalUS,
		JogSteps:        c.JogSteps,
		InitialJogSpeed: c.InitialJogSpeed,
	}
	copy(mc.JogSpeeds[:], c.JogSpeeds)
	return mc
}

// DefaultGantryConfig returns the wiring of the dispensing gantry: a CNC
// shield layout moved onto RP2040 GPIOs, with Y driven by two motors.
func DefaultGantryConfig() *MachineConfig {
	config := &MachineConfig{
		Axes: map[string]AxisConfig{
			"x": {
				StepPins: []string{"gpio2"},
				DirPins:  []string{"gpio3"},
			},
			"y": {
				StepPins: []string{"gpio4", "gpio6"},
				DirPins:  []string{"gpio5", "gpio7"},
			},
			"z": {
				StepPins: []string{"gpio8"},
				DirPins:  []string{"gpio9"},
			},
		},
		EnablePin: "gpio10",
	}
	applyDefaults(config)
	return config
}
