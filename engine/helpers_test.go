package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

// seqRand replays a fixed sequence of draws, cycling when exhausted.
// An empty sequence always returns 0.5, which means no jitter and no anomaly.
type seqRand struct {
	vals []float64
	i    int
}

func (r *seqRand) Float64() float64 {
	if len(r.vals) == 0 {
		return 0.5
	}
	v := r.vals[r.i%len(r.vals)]
	r.i++
	return v
}

// calm draws 0.5 for every sensor and 0.9 for the anomaly check.
func calm() *seqRand {
	return &seqRand{vals: []float64{0.5, 0.5, 0.5, 0.5, 0.9}}
}

// spikeEvery returns a sequence with an anomaly hit on every tick.
func spikeEvery() *seqRand {
	return &seqRand{vals: []float64{0.5, 0.5, 0.5, 0.5, 0.0}}
}

// fakeSpeaker records calls. A non-zero delay makes Speak block like a
// real speech backend.
type fakeSpeaker struct {
	mu      sync.Mutex
	spoken  []string
	cancels int
	err     error
	delay   time.Duration
}

func (s *fakeSpeaker) Speak(text string) error {
	s.mu.Lock()
	s.spoken = append(s.spoken, text)
	err, delay := s.err, s.delay
	s.mu.Unlock()
	time.Sleep(delay)
	return err
}

func (s *fakeSpeaker) Cancel() {
	s.mu.Lock()
	s.cancels++
	s.mu.Unlock()
}

func (s *fakeSpeaker) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spoken)
}

func (s *fakeSpeaker) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.spoken...)
}

func (s *fakeSpeaker) cancelCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancels
}

func newTestGate(t *testing.T, src AlertSource, sp Speaker) *Gate {
	t.Helper()
	g := NewGate(src, sp, nil)
	t.Cleanup(g.Close)
	return g
}

func newTestEngine(t *testing.T, p Params, rng Rand) (*Engine, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 1, 30, 14, 0, 0, 0, time.UTC))
	eng, err := NewEngine(p, WithRand(rng), WithClock(mock))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return eng, mock
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
