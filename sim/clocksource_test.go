package sim

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.viam.com/test"
)

func advanceUntil(clk *clock.Mock, step time.Duration, max int, done func() bool) {
	for i := 0; i < max && !done(); i++ {
		clk.Add(step)
	}
}

func TestClockSourceFires(t *testing.T) {
	clk := clock.NewMock()
	src := NewClockSource(clk, zap.NewNop().Sugar())

	var n atomic.Uint32
	src.Start(1000, func() { n.Inc() })
	advanceUntil(clk, time.Millisecond, 200, func() bool { return n.Load() >= 5 })
	test.That(t, n.Load(), test.ShouldBeGreaterThanOrEqualTo, uint32(5))

	src.Stop()
	time.Sleep(5 * time.Millisecond)
	stopped := n.Load()
	for i := 0; i < 10; i++ {
		clk.Add(time.Millisecond)
	}
	test.That(t, n.Load(), test.ShouldEqual, stopped)
	test.That(t, src.Overruns(), test.ShouldEqual, uint32(0))
}

func TestClockSourceStopFromFire(t *testing.T) {
	clk := clock.NewMock()
	src := NewClockSource(clk, zap.NewNop().Sugar())

	var n atomic.Uint32
	src.Start(500, func() {
		if n.Inc() == 3 {
			src.Stop()
		}
	})
	advanceUntil(clk, 500*time.Microsecond, 200, func() bool { return n.Load() >= 3 })
	for i := 0; i < 10; i++ {
		clk.Add(500 * time.Microsecond)
	}
	test.That(t, n.Load(), test.ShouldEqual, uint32(3))
	test.That(t, src.Fires(), test.ShouldEqual, uint64(3))
}

func TestClockSourceRestartReplacesRun(t *testing.T) {
	clk := clock.NewMock()
	src := NewClockSource(clk, zap.NewNop().Sugar())

	var first, second atomic.Uint32
	src.Start(1000, func() { first.Inc() })
	advanceUntil(clk, time.Millisecond, 200, func() bool { return first.Load() >= 1 })

	src.Start(1000, func() { second.Inc() })
	time.Sleep(5 * time.Millisecond)
	before := first.Load()
	advanceUntil(clk, time.Millisecond, 200, func() bool { return second.Load() >= 3 })

	test.That(t, second.Load(), test.ShouldBeGreaterThanOrEqualTo, uint32(3))
	test.That(t, first.Load(), test.ShouldEqual, before)
	src.Stop()
}

func TestClockSourceCountsOverruns(t *testing.T) {
	src := NewClockSource(clock.New(), zap.NewNop().Sugar())

	var n atomic.Uint32
	src.Start(1000, func() {
		if n.Inc() == 1 {
			time.Sleep(10 * time.Millisecond)
		}
	})
	deadline := time.Now().Add(2 * time.Second)
	for n.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	src.Stop()

	test.That(t, n.Load(), test.ShouldBeGreaterThanOrEqualTo, uint32(3))
	test.That(t, src.Overruns(), test.ShouldBeGreaterThanOrEqualTo, uint32(1))
}

func TestSpinPulseTimerBoundedOnFrozenClock(t *testing.T) {
	p := NewSpinPulseTimer(clock.NewMock(), time.Second)
	start := time.Now()
	p.WaitPulseWidth()
	test.That(t, time.Since(start), test.ShouldBeLessThan, time.Second)
}
