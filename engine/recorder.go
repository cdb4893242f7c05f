package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/model"
)

// RecordFrame is one tick written to a recording.
type RecordFrame struct {
	Tick       uint64              `json:"tick"`
	Timestamp  time.Time           `json:"ts"`
	Reading    model.SensorReading `json:"reading"`
	Status     model.MachineStatus `json:"status"`
	Alerts     []model.AlertRecord `json:"alerts,omitempty"`
	IsAnomaly  bool                `json:"anomaly"`
	RUL        float64             `json:"rul"`
	Efficiency float64             `json:"efficiency"`
	EcoMode    bool                `json:"eco"`
}

// Recorder wraps a ticker and writes every tick as a JSON line.
type Recorder struct {
	inner  Ticker
	log    *zap.Logger
	mu     sync.Mutex
	writer *json.Encoder
	frames uint64
	failed uint64
}

// NewRecorder creates a recorder that writes JSON lines to w.
func NewRecorder(inner Ticker, w io.Writer, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{inner: inner, log: log, writer: json.NewEncoder(w)}
}

// Base returns the underlying engine.
func (r *Recorder) Base() *Engine {
	return r.inner.Base()
}

// Tick advances the inner ticker and records the result. Write failures
// are logged and never fail the tick.
func (r *Recorder) Tick() TickResult {
	res := r.inner.Tick()
	eng := r.inner.Base()
	frame := RecordFrame{
		Tick:       res.Tick,
		Timestamp:  res.Timestamp,
		Reading:    res.Reading,
		Status:     res.Status,
		Alerts:     res.Alerts,
		IsAnomaly:  res.IsAnomaly,
		RUL:        res.RUL,
		Efficiency: eng.Efficiency(),
		EcoMode:    eng.EcoMode(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.writer.Encode(frame); err != nil {
		r.failed++
		if r.failed == 1 {
			r.log.Warn("recording tick failed", zap.Uint64("tick", res.Tick), zap.Error(err))
		}
		return res
	}
	r.frames++
	return res
}

// Frames returns how many ticks were written.
func (r *Recorder) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// ReadFrames decodes a recording. Blank lines are skipped.
func ReadFrames(rd io.Reader) ([]RecordFrame, error) {
	var frames []RecordFrame
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var f RecordFrame
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, f)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return frames, nil
}

// RecordingSummary aggregates a recording for the replay report.
type RecordingSummary struct {
	Frames    int
	First     time.Time
	Last      time.Time
	Anomalies int
	Alerts    int
	ByStatus  map[model.MachineStatus]int
	StartRUL  float64
	EndRUL    float64
	EcoFrames int
}

// Summarize folds frames into a RecordingSummary.
func Summarize(frames []RecordFrame) RecordingSummary {
	s := RecordingSummary{ByStatus: make(map[model.MachineStatus]int)}
	for i, f := range frames {
		if i == 0 {
			s.First = f.Timestamp
			s.StartRUL = f.RUL
		}
		s.Frames++
		s.Last = f.Timestamp
		s.EndRUL = f.RUL
		s.Alerts += len(f.Alerts)
		s.ByStatus[f.Status]++
		if f.IsAnomaly {
			s.Anomalies++
		}
		if f.EcoMode {
			s.EcoFrames++
		}
	}
	return s
}
