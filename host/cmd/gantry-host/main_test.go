package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.viam.com/test"

	"gantry/host/mcu"
	"gantry/motion"
	"gantry/sim"
	"gantry/standalone/config"
)

type pipePort struct {
	io.Reader
	io.Writer
	closers []io.Closer
}

func (p *pipePort) Close() error {
	var err error
	for _, c := range p.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}

func (p *pipePort) Flush() error { return nil }

func newSimulatedMCU(t *testing.T) *mcu.MCU {
	t.Helper()
	logger := zap.NewNop().Sugar()

	machine, err := sim.NewMachine(config.DefaultGantryConfig(), sim.NewTraceDriver(simMaxPin, logger), clock.New(), logger)
	test.That(t, err, test.ShouldBeNil)

	toDevice, hostOut := io.Pipe()
	hostIn, fromDevice := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	go sim.NewConsole(machine.Manager, clock.New(), logger).Run(ctx, toDevice, fromDevice)

	m := mcu.New(&pipePort{Reader: hostIn, Writer: hostOut, closers: []io.Closer{hostOut, hostIn}}, logger)
	t.Cleanup(func() {
		cancel()
		m.Close()
	})
	return m
}

func TestParseMoveArgs(t *testing.T) {
	from := mcu.Position{X: 1, Y: 2, Z: 3}

	target, feed, err := parseMoveArgs([]string{"x=10", "Z=-4"}, from)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, target, test.ShouldResemble, mcu.Position{X: 10, Y: 2, Z: -4})
	test.That(t, feed, test.ShouldEqual, uint32(defaultFeed))

	_, feed, err = parseMoveArgs([]string{"f=800"}, from)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, feed, test.ShouldEqual, uint32(800))

	for _, bad := range [][]string{{"x10"}, {"w=1"}, {"y=abc"}, {"f=-1"}} {
		_, _, err := parseMoveArgs(bad, from)
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestShellSession(t *testing.T) {
	var out bytes.Buffer
	sh := &shell{m: newSimulatedMCU(t), out: &out, timeout: 10 * time.Second}
	ctx := context.Background()

	for _, line := range []string{"move x=40 y=-10 f=5000", "wait", "where", "speed 2", "jog z-", "wait"} {
		quit, err := sh.exec(ctx, line)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, quit, test.ShouldBeFalse)
	}

	text := out.String()
	test.That(t, text, test.ShouldContainSubstring, "moving to X40 Y-10 Z0 at 5000 steps/s")
	// Axes step in lock-step, so Y travels as far as the dominant X.
	test.That(t, text, test.ShouldContainSubstring, "idle at X40 Y-40 Z0")
	test.That(t, text, test.ShouldContainSubstring, "Speed: 2000")
	test.That(t, text, test.ShouldContainSubstring, "Man -> Pos: 40 -40 0")
	test.That(t, text, test.ShouldContainSubstring, "idle at X40 Y-40 Z-200")

	quit, err := sh.exec(ctx, "quit")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, quit, test.ShouldBeTrue)
}

func TestShellRejectsBadInput(t *testing.T) {
	sh := &shell{m: newSimulatedMCU(t), out: io.Discard, timeout: time.Second}
	ctx := context.Background()

	for _, line := range []string{"speed 9", "jog w+", "raw 'unterminated", "move x", "move w=3"} {
		_, err := sh.exec(ctx, line)
		test.That(t, err, test.ShouldNotBeNil)
	}
	quit, err := sh.exec(ctx, "   ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, quit, test.ShouldBeFalse)
}

func TestShellForwardsConsoleLines(t *testing.T) {
	m := newSimulatedMCU(t)
	sh := &shell{m: m, out: io.Discard, timeout: 10 * time.Second}
	ctx := context.Background()

	quit, err := sh.exec(ctx, "G1 Z25 F3000")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, quit, test.ShouldBeFalse)

	waitCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	pos, err := m.WaitIdle(waitCtx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos, test.ShouldResemble, mcu.Position{Z: 25})
}

func TestPlanTable(t *testing.T) {
	m, ok := motion.PlanMove([motion.NumAxes]int32{100, 0, 0}, 4000, 500)
	test.That(t, ok, test.ShouldBeTrue)

	out := planTable(m, 100)
	for _, want := range []string{"100 steps, ramps 20/20", "accel", "cruise", "decel", "4000.0"} {
		test.That(t, out, test.ShouldContainSubstring, want)
	}
}

func TestLoadMachineConfig(t *testing.T) {
	cfg, err := loadMachineConfig("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Axes["y"].StepPins, test.ShouldResemble, []string{"gpio4", "gpio6"})

	path := filepath.Join(t.TempDir(), "machine.json")
	data := `{"axes": {"x": {"step_pins": ["gpio12"], "dir_pins": ["gpio13"]},
		"y": {"step_pins": ["gpio4"], "dir_pins": ["gpio5"]},
		"z": {"step_pins": ["gpio8"], "dir_pins": ["gpio9"]}},
		"enable_pin": "gpio10"}`
	test.That(t, os.WriteFile(path, []byte(data), 0o600), test.ShouldBeNil)
	cfg, err = loadMachineConfig(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Axes["x"].StepPins, test.ShouldResemble, []string{"gpio12"})

	_, err = loadMachineConfig(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPulseTable(t *testing.T) {
	logger := zap.NewNop().Sugar()
	cfg := config.DefaultGantryConfig()
	trace := sim.NewTraceDriver(simMaxPin, logger)
	_, err := sim.NewMachine(cfg, trace, clock.New(), logger)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, trace.SetPin(6, true), test.ShouldBeNil)
	out, err := pulseTable(cfg, trace)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "gpio6")
	test.That(t, strings.Count(out, "gpio"), test.ShouldEqual, 4)
}

func screenText(s tcell.SimulationScreen) string {
	cells, width, _ := s.GetContents()
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 && i%width == 0 {
			b.WriteByte('\n')
		}
		if len(cell.Runes) == 0 {
			b.WriteByte(' ')
			continue
		}
		b.WriteString(string(cell.Runes))
	}
	return b.String()
}

// viewText reads the screen on the view's own goroutine.
func viewText(t *testing.T, s tcell.SimulationScreen) string {
	t.Helper()
	text := make(chan string, 1)
	if err := s.PostEvent(tcell.NewEventInterrupt(func() { text <- screenText(s) })); err != nil {
		return ""
	}
	select {
	case got := <-text:
		return got
	case <-time.After(5 * time.Second):
		t.Fatal("jog view stopped handling events")
		return ""
	}
}

func TestJogViewSendsKeys(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	test.That(t, screen.Init(), test.ShouldBeNil)
	defer screen.Fini()
	screen.SetSize(80, 24)

	view := &jogView{screen: screen, m: newSimulatedMCU(t)}
	done := make(chan error, 1)
	go func() { done <- view.run(context.Background()) }()

	screen.InjectKey(tcell.KeyRune, '3', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'd', tcell.ModNone)

	deadline := time.Now().Add(10 * time.Second)
	text := viewText(t, screen)
	for !strings.Contains(text, "ok: Pos X200 Y0 Z0") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
		text = viewText(t, screen)
	}
	test.That(t, text, test.ShouldContainSubstring, "Gantry jog pad")
	test.That(t, text, test.ShouldContainSubstring, "Speed: 5000")
	test.That(t, text, test.ShouldContainSubstring, "ok: Pos X200 Y0 Z0")

	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	select {
	case err := <-done:
		test.That(t, err, test.ShouldBeNil)
	case <-time.After(5 * time.Second):
		t.Fatal("jog view did not exit on Escape")
	}
}
