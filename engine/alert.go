package engine

import (
	"sync"

	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/model"
)

// speechQueue bounds announcements waiting for the speaker.
const speechQueue = 8

// Speaker is the external voice capability. Calls may block on slow
// backends; the gate makes them from its own goroutine.
type Speaker interface {
	Speak(text string) error
	Cancel()
}

// AlertSource exposes the newest buffered alert.
type AlertSource interface {
	Head() (model.AlertRecord, bool)
}

// AnnouncementText is what gets spoken for an alert.
func AnnouncementText(a model.AlertRecord) string {
	return "Alert: " + a.Message
}

type speechJob struct {
	id   string
	text string
}

// Gate decides which alerts are spoken. Only anomaly alerts at the head of
// the buffer are eligible, and each alert ID is announced at most once.
// The gate is Active until paused and stays Paused until resumed.
//
// Decisions are made synchronously; speaking and cancelling happen on a
// single worker goroutine, so Observe, Pause and Resume never wait on the
// speaker. When the queue is full the announcement is dropped.
type Gate struct {
	source  AlertSource
	speaker Speaker
	log     *zap.Logger

	mu        sync.Mutex
	syslog    *SystemLog
	lastID    string
	paused    bool
	announced uint64

	jobs      chan speechJob
	cancels   chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewGate creates an active gate watching src. A nil speaker only tracks
// announcements. Call Close to stop the speaker worker.
func NewGate(src AlertSource, sp Speaker, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Gate{source: src, speaker: sp, log: log}
	if sp != nil {
		g.jobs = make(chan speechJob, speechQueue)
		g.cancels = make(chan struct{}, 1)
		g.quit = make(chan struct{})
		g.done = make(chan struct{})
		go g.run()
	}
	return g
}

// LogTo mirrors pause, resume and announcements into the operator log.
func (g *Gate) LogTo(l *SystemLog) {
	g.mu.Lock()
	g.syslog = l
	g.mu.Unlock()
}

// OnTick adapts the gate to an engine tick hook.
func (g *Gate) OnTick(TickResult) {
	g.Observe()
}

// Observe inspects the newest alert and announces it if eligible.
// It reports whether an announcement was made.
func (g *Gate) Observe() bool {
	g.mu.Lock()
	if g.paused {
		g.mu.Unlock()
		return false
	}
	head, ok := g.claimHeadLocked()
	syslog := g.syslog
	g.mu.Unlock()
	if ok {
		g.announce(head, syslog)
	}
	return ok
}

// Pause silences the gate and requests cancellation of speech in flight.
// Queued announcements are skipped.
func (g *Gate) Pause() {
	g.mu.Lock()
	g.paused = true
	syslog := g.syslog
	g.mu.Unlock()

	if g.cancels != nil {
		select {
		case g.cancels <- struct{}{}:
		default: // a cancel is already pending
		}
	}
	if syslog != nil {
		syslog.Log(model.LogNormal, "Voice alerts paused")
	}
	g.log.Info("voice announcements paused")
}

// Resume reactivates the gate and immediately announces the newest alert
// if it is an anomaly that has not been spoken yet.
func (g *Gate) Resume() bool {
	g.mu.Lock()
	g.paused = false
	head, ok := g.claimHeadLocked()
	syslog := g.syslog
	g.mu.Unlock()

	if syslog != nil {
		syslog.Log(model.LogNormal, "Voice alerts resumed")
	}
	g.log.Info("voice announcements resumed")
	if ok {
		g.announce(head, syslog)
	}
	return ok
}

// Paused reports whether the gate is paused.
func (g *Gate) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// LastAnnouncedID returns the ID of the last announced alert, or "".
func (g *Gate) LastAnnouncedID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastID
}

// Announcements returns how many alerts have been announced.
func (g *Gate) Announcements() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.announced
}

// Close stops the speaker worker after the call in progress, if any.
// Pending announcements are discarded. Safe to call more than once.
func (g *Gate) Close() {
	if g.quit == nil {
		return
	}
	g.closeOnce.Do(func() { close(g.quit) })
	<-g.done
}

// claimHeadLocked marks the head alert announced if it is eligible. It is
// marked before speaking so a failing speaker is not retried every tick.
func (g *Gate) claimHeadLocked() (model.AlertRecord, bool) {
	head, ok := g.source.Head()
	if !ok || !head.IsAnomaly || head.ID == g.lastID {
		return model.AlertRecord{}, false
	}
	g.lastID = head.ID
	g.announced++
	return head, true
}

func (g *Gate) announce(head model.AlertRecord, syslog *SystemLog) {
	text := AnnouncementText(head)
	if syslog != nil {
		syslog.Log(model.LogAnomaly, "Voice: "+text)
	}
	if g.jobs == nil {
		return
	}
	select {
	case g.jobs <- speechJob{id: head.ID, text: text}:
	default:
		g.log.Warn("announcement dropped, speaker busy", zap.String("alert", head.ID))
	}
}

func (g *Gate) run() {
	defer close(g.done)
	for {
		select {
		case <-g.quit:
			return
		default:
		}

		select {
		case <-g.quit:
			return
		case <-g.cancels:
			g.speaker.Cancel()
		case job := <-g.jobs:
			if g.Paused() {
				continue
			}
			if err := g.speaker.Speak(job.text); err != nil {
				g.log.Warn("announcement failed", zap.String("alert", job.id), zap.Error(err))
				continue
			}
			g.log.Info("announced alert", zap.String("alert", job.id))
		}
	}
}
