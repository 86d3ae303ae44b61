// Package mcu talks to the gantry firmware over its line console.
package mcu

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"gantry/host/serial"
)

const lineQueue = 128

var (
	// ErrBusy is returned by Move when a move is already running.
	ErrBusy = errors.New("mcu: machine busy")
	// ErrClosed is returned once the console stops producing lines.
	ErrClosed = errors.New("mcu: console closed")
)

// Position is a machine position in steps.
type Position struct {
	X, Y, Z int32
}

func (p Position) String() string {
	return fmt.Sprintf("X%d Y%d Z%d", p.X, p.Y, p.Z)
}

// MCU is a connection to the firmware console. A background reader splits
// the console output into lines; each line is delivered once, either to an
// Expect call or to a Lines consumer.
type MCU struct {
	port   serial.Port
	logger *zap.SugaredLogger

	writeMu sync.Mutex

	lines     chan string
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

// Connect opens the serial device described by cfg.
func Connect(cfg *serial.Config, logger *zap.SugaredLogger) (*MCU, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "open console port")
	}
	return New(port, logger), nil
}

// New starts a client on an already open port.
func New(port serial.Port, logger *zap.SugaredLogger) *MCU {
	m := &MCU{
		port:   port,
		logger: logger,
		lines:  make(chan string, lineQueue),
		done:   make(chan struct{}),
	}
	go m.readLoop()
	return m
}

func (m *MCU) readLoop() {
	defer close(m.lines)

	r := bufio.NewReader(m.port)
	for {
		s, err := r.ReadString('\n')
		if line := strings.TrimSpace(s); line != "" {
			m.logger.Debugw("rx", "line", line)
			select {
			case m.lines <- line:
			case <-m.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				m.logger.Debugw("console read stopped", "error", err)
			}
			return
		}
	}
}

// Lines returns the stream of console lines. It is closed when the
// connection ends.
func (m *MCU) Lines() <-chan string {
	return m.lines
}

// Send writes one command line.
func (m *MCU) Send(line string) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.logger.Debugw("tx", "line", line)
	if _, err := io.WriteString(m.port, line+"\n"); err != nil {
		return errors.Wrapf(err, "send %q", line)
	}
	return nil
}

// Key sends a single jog or speed key. Keys only take effect at the start of
// an input line.
func (m *MCU) Key(b byte) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if _, err := m.port.Write([]byte{b}); err != nil {
		return errors.Wrapf(err, "send key %q", b)
	}
	return nil
}

// Expect consumes lines until match accepts one and returns it.
func (m *MCU) Expect(ctx context.Context, match func(string) bool) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case line, ok := <-m.lines:
			if !ok {
				return "", ErrClosed
			}
			if match(line) {
				return line, nil
			}
		}
	}
}

// Position queries the current position with M114.
func (m *MCU) Position(ctx context.Context) (Position, error) {
	if err := m.Send("M114"); err != nil {
		return Position{}, err
	}
	line, err := m.Expect(ctx, func(s string) bool { return strings.HasPrefix(s, "X:") })
	if err != nil {
		return Position{}, errors.Wrap(err, "wait for position report")
	}
	return ParsePosition(line)
}

// Move starts an absolute move to target at feed steps per second. It
// returns once the firmware accepted or refused the move.
func (m *MCU) Move(ctx context.Context, target Position, feed uint32) error {
	line := fmt.Sprintf("G1 X%d Y%d Z%d F%d", target.X, target.Y, target.Z, feed)
	if err := m.Send(line); err != nil {
		return err
	}
	reply, err := m.Expect(ctx, func(s string) bool {
		return s == "busy" || strings.HasPrefix(s, "S-Curve Move:")
	})
	if err != nil {
		return errors.Wrap(err, "wait for move acknowledgement")
	}
	if reply == "busy" {
		return ErrBusy
	}
	return nil
}

// WaitIdle waits for the completion report of the running move.
func (m *MCU) WaitIdle(ctx context.Context) (Position, error) {
	line, err := m.Expect(ctx, func(s string) bool { return strings.HasPrefix(s, "ok: Pos ") })
	if err != nil {
		return Position{}, errors.Wrap(err, "wait for move completion")
	}
	return ParsePosition(line)
}

// Close flushes and closes the port and stops the reader.
func (m *MCU) Close() error {
	m.closeOnce.Do(func() {
		close(m.done)
		m.closeErr = multierr.Combine(m.port.Flush(), m.port.Close())
	})
	return m.closeErr
}

var positionPrefixes = []string{"ok: Pos ", "Man -> Pos:", ""}

// ParsePosition reads any of the console's position reports:
// "X:1 Y:2 Z:3", "ok: Pos X1 Y2 Z3" and "Man -> Pos: 1 2 3".
func ParsePosition(line string) (Position, error) {
	line = strings.TrimSpace(line)
	var rest string
	for _, prefix := range positionPrefixes {
		if strings.HasPrefix(line, prefix) {
			rest = line[len(prefix):]
			break
		}
	}

	fields := strings.Fields(rest)
	if len(fields) != 3 {
		return Position{}, errors.Errorf("unrecognized position report %q", line)
	}
	var v [3]int32
	for i, f := range fields {
		n, err := strconv.ParseInt(strings.TrimLeft(f, "XYZ:"), 10, 32)
		if err != nil {
			return Position{}, errors.Wrapf(err, "position report %q", line)
		}
		v[i] = int32(n)
	}
	return Position{X: v[0], Y: v[1], Z: v[2]}, nil
}
