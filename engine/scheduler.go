package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// ErrSchedulerRunning is returned by Start on a scheduler that is running.
var ErrSchedulerRunning = errors.New("scheduler already running")

// Scheduler drives a Ticker on a fixed period. Ticks run one at a time on a
// single goroutine, so a tick always finishes before the next one starts.
type Scheduler struct {
	ticker   Ticker
	interval time.Duration
	clock    clock.Clock
	log      *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// SchedulerOption customises a scheduler.
type SchedulerOption func(*Scheduler)

// WithSchedulerClock sets the clock the period is measured on.
func WithSchedulerClock(c clock.Clock) SchedulerOption {
	return func(s *Scheduler) { s.clock = c }
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(l *zap.Logger) SchedulerOption {
	return func(s *Scheduler) {
		if l != nil {
			s.log = l
		}
	}
}

// NewScheduler creates a stopped scheduler. The interval must be positive.
func NewScheduler(t Ticker, interval time.Duration, opts ...SchedulerOption) (*Scheduler, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil ticker", ErrInvalidConfig)
	}
	if interval <= 0 {
		return nil, fmt.Errorf("%w: tick interval %s must be positive", ErrInvalidConfig, interval)
	}
	s := &Scheduler{
		ticker:   t,
		interval: interval,
		clock:    clock.New(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Interval returns the tick period.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Start begins ticking until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		select {
		case <-s.done:
		default:
			return ErrSchedulerRunning
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	tk := s.clock.Ticker(s.interval)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go s.run(ctx, tk, done)
	s.log.Info("scheduler started", zap.Duration("interval", s.interval))
	return nil
}

// Running reports whether the tick loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Stop cancels the timer and waits for the loop to exit. It is safe to call
// any number of times; once it returns no further tick will fire.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, tk *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			if ctx.Err() != nil {
				return
			}
			s.ticker.Tick()
		}
	}
}
