package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/brakezone/core"
)

// DefaultTickInterval is a 60 Hz frame
const DefaultTickInterval = time.Second / 60

// Scheduler drives a Scenario on a fixed tick
type Scheduler struct {
	scenario *Scenario
	interval time.Duration

	// OnTick runs after every tick on the scheduler goroutine; set before Start
	OnTick func(running bool)

	tickCount atomic.Uint64

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
}

// NewScheduler creates a scheduler; interval <= 0 uses DefaultTickInterval
func NewScheduler(scenario *Scenario, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		scenario: scenario,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Interval returns the tick period
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Ticks returns the number of ticks performed
func (s *Scheduler) Ticks() uint64 {
	return s.tickCount.Load()
}

// Step performs one tick at the scenario clock's current time
func (s *Scheduler) Step() bool {
	running := s.scenario.Advance(s.scenario.Clock().Now())
	s.tickCount.Add(1)
	if s.OnTick != nil {
		s.OnTick(running)
	}
	return running
}

// Start runs the loop on its own goroutine until ctx is done or Stop is called
func (s *Scheduler) Start(ctx context.Context) {
	if s.running.CompareAndSwap(false, true) {
		s.wg.Add(1)
		core.Go(func() {
			defer s.wg.Done()
			s.Run(ctx)
		})
	}
}

// Stop halts the loop and waits for it; safe to call more than once
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
	s.running.Store(false)
}

// Run blocks, ticking until ctx is done or Stop is called
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.Step()
		}
	}
}
