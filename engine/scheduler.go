package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// TickerScheduler drives frames from a time.Ticker on its own goroutine.
// Used where there is no display to sync against.
type TickerScheduler struct {
	interval time.Duration

	running  atomic.Bool
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTickerScheduler creates a scheduler firing every interval.
func NewTickerScheduler(interval time.Duration) *TickerScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &TickerScheduler{
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the ticker loop. Later calls are ignored.
func (s *TickerScheduler) Start(frame func(now time.Time)) {
	s.wg.Add(1)
	if !s.running.CompareAndSwap(false, true) {
		s.wg.Done()
		return
	}
	go s.loop(frame)
}

// Stop halts the loop and waits for an in-flight frame to return.
// No frame runs after Stop returns.
func (s *TickerScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

func (s *TickerScheduler) loop(frame func(now time.Time)) {
	defer s.wg.Done()

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case now := <-t.C:
			// Prefer stopping over a frame that raced the close
			select {
			case <-s.stopChan:
				return
			default:
			}
			frame(now)
		}
	}
}

// ManualScheduler runs frames only when stepped. Deterministic, for headless runs
// and tests. Not safe for concurrent use.
type ManualScheduler struct {
	frame   func(now time.Time)
	stopped bool
	now     time.Time
	step    time.Duration
}

// NewManualScheduler creates a scheduler whose clock starts at start and advances
// by step on every Step.
func NewManualScheduler(start time.Time, step time.Duration) *ManualScheduler {
	return &ManualScheduler{now: start, step: step}
}

// Start records the frame callback.
func (s *ManualScheduler) Start(frame func(now time.Time)) {
	if s.stopped {
		return
	}
	s.frame = frame
}

// Stop drops the callback; later steps do nothing.
func (s *ManualScheduler) Stop() {
	s.stopped = true
	s.frame = nil
}

// Step advances the clock and runs one frame. Returns false if nothing ran.
func (s *ManualScheduler) Step() bool {
	if s.frame == nil {
		return false
	}
	s.now = s.now.Add(s.step)
	s.frame(s.now)
	return true
}

// Run steps n frames, stopping early once nothing is scheduled.
func (s *ManualScheduler) Run(n int) int {
	ran := 0
	for ran < n && s.Step() {
		ran++
	}
	return ran
}

// Now returns the scheduler clock.
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// Scheduled returns the number of pending frame callbacks (0 or 1).
func (s *ManualScheduler) Scheduled() int {
	if s.frame == nil {
		return 0
	}
	return 1
}
