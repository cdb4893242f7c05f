package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

// runJSON runs the requested number of ticks and prints the state.
func runJSON(a *app, out io.Writer) error {
	n := a.opts.Ticks
	if n <= 0 {
		n = 1
	}
	for i := 0; i < n; i++ {
		a.step()
	}

	st := a.eng.State()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(st)
}

// runReplay prints a summary of a recording made with -record.
func runReplay(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open replay file: %w", err)
	}
	defer f.Close()

	frames, err := engine.ReadFrames(f)
	if err != nil {
		return fmt.Errorf("cannot parse replay file: %w", err)
	}
	fmt.Fprint(out, renderReplay(engine.Summarize(frames)))
	return nil
}

func renderReplay(s engine.RecordingSummary) string {
	if s.Frames == 0 {
		return "Recording is empty.\n"
	}
	var sb strings.Builder
	sb.WriteString(titleLine("twinmon recording") + "\n")
	sb.WriteString(fmt.Sprintf("  Ticks:      %s\n", humanize.Comma(int64(s.Frames))))
	sb.WriteString(fmt.Sprintf("  Span:       %s .. %s (%s)\n",
		s.First.Format(time.RFC3339), s.Last.Format(time.RFC3339), s.Last.Sub(s.First)))
	sb.WriteString(fmt.Sprintf("  Anomalies:  %d\n", s.Anomalies))
	sb.WriteString(fmt.Sprintf("  Alerts:     %d\n", s.Alerts))
	sb.WriteString(fmt.Sprintf("  Eco ticks:  %d\n", s.EcoFrames))
	sb.WriteString(fmt.Sprintf("  RUL:        %.2f%% -> %.2f%%\n", s.StartRUL, s.EndRUL))
	for _, st := range []model.MachineStatus{model.StatusHealthy, model.StatusWarning, model.StatusCritical} {
		sb.WriteString(fmt.Sprintf("  %-10s  %d\n", st.String()+":", s.ByStatus[st]))
	}
	return sb.String()
}
