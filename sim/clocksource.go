package sim

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"gantry/core"
)

// ClockSource is a core.TimingSource driven by a clock.Clock. Each armed run
// gets its own goroutine and fire runs on it, standing in for the timer
// interrupt of the target.
type ClockSource struct {
	clk    clock.Clock
	logger *zap.SugaredLogger
	epoch  time.Time

	mu  sync.Mutex
	run *clockRun

	interval atomic.Duration
	fires    atomic.Uint64
	overruns atomic.Uint32
}

type clockRun struct {
	stop    chan struct{}
	once    sync.Once
	stopped atomic.Bool
}

func (r *clockRun) halt() {
	r.stopped.Store(true)
	r.once.Do(func() { close(r.stop) })
}

// NewClockSource returns a disarmed source.
func NewClockSource(clk clock.Clock, logger *zap.SugaredLogger) *ClockSource {
	return &ClockSource{clk: clk, logger: logger, epoch: clk.Now()}
}

func (s *ClockSource) Start(intervalUS uint32, fire func()) {
	s.mu.Lock()
	if s.run != nil {
		s.run.halt()
	}
	r := &clockRun{stop: make(chan struct{})}
	s.run = r
	s.interval.Store(usToDuration(intervalUS))
	s.mu.Unlock()

	go s.loop(r, fire)
}

func (s *ClockSource) SetInterval(intervalUS uint32) {
	s.interval.Store(usToDuration(intervalUS))
}

func (s *ClockSource) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.run != nil {
		s.run.halt()
		s.run = nil
	}
}

// Fires returns the number of ticks delivered since creation.
func (s *ClockSource) Fires() uint64 {
	return s.fires.Load()
}

// Overruns returns how many ticks came a whole period or more late.
func (s *ClockSource) Overruns() uint32 {
	return s.overruns.Load()
}

func (s *ClockSource) loop(r *clockRun, fire func()) {
	period := s.interval.Load()
	next := s.clk.Now().Add(period)
	t := s.clk.Timer(period)
	defer t.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-t.C:
		}
		if r.stopped.Load() {
			return
		}

		now := s.clk.Now()
		if lag := now.Sub(next); lag >= period {
			s.overruns.Inc()
			s.logger.Debugw("late tick", "lag", lag, "period", period)
			next = now
		}
		core.SetTime(uint32(now.Sub(s.epoch) / time.Microsecond))

		fire()
		s.fires.Inc()
		if r.stopped.Load() {
			return
		}

		period = s.interval.Load()
		next = next.Add(period)
		t.Reset(s.clk.Until(next))
	}
}

func usToDuration(us uint32) time.Duration {
	if us == 0 {
		us = 1
	}
	return time.Duration(us) * time.Microsecond
}
