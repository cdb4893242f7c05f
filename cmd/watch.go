package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
)

// ── ANSI color/style codes ──────────────────────────────────────────────────

const (
	R = "\033[0m" // reset
	B = "\033[1m" // bold
	D = "\033[2m" // dim

	FCyn = "\033[36m"
	FYel = "\033[33m"

	FBRed = "\033[91m"
	FBGrn = "\033[92m"
	FBYel = "\033[93m"
	FBWht = "\033[97m"

	BRed = "\033[41m"
	BGrn = "\033[42m"
	BYel = "\033[43m"
	BBlu = "\033[44m"
)

// ── Styling helpers ─────────────────────────────────────────────────────────

// cval colors a value: green below warn, yellow above warn, red above crit.
func cval(s string, v, warn, crit float64) string {
	switch {
	case v > crit:
		return fmt.Sprintf("%s%s%s%s", B, FBRed, s, R)
	case v > warn:
		return fmt.Sprintf("%s%s%s", FBYel, s, R)
	default:
		return fmt.Sprintf("%s%s%s", FBGrn, s, R)
	}
}

func statusBadge(s model.MachineStatus) string {
	switch s {
	case model.StatusHealthy:
		return fmt.Sprintf(" %s HEALTHY %s", BGrn+B+FBWht, R)
	case model.StatusWarning:
		return fmt.Sprintf(" %s WARNING %s", BYel+B+FBWht, R)
	case model.StatusCritical:
		return fmt.Sprintf(" %s CRITICAL %s", BRed+B+FBWht, R)
	default:
		return s.String()
	}
}

// barInv draws a remaining-capacity bar: full is good (green), empty is bad.
func barInv(pct float64, w int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100.0 * float64(w))
	if filled > w {
		filled = w
	}
	var c string
	switch model.BandForRUL(pct) {
	case model.RULOptimal:
		c = FBGrn
	case model.RULWarning:
		c = FYel
	default:
		c = FBRed
	}
	return fmt.Sprintf("%s%s%s%s%s", c, strings.Repeat("#", filled), D, strings.Repeat("-", w-filled), R)
}

func titleLine(t string) string {
	pad := 78 - len(t) - 2
	if pad < 0 {
		pad = 0
	}
	return fmt.Sprintf("%s%s== %s %s%s", B, FCyn, t, strings.Repeat("=", pad), R)
}

func hr() string {
	return fmt.Sprintf("%s%s%s", D, strings.Repeat("-", 78), R)
}

// watchFrame renders one tick of -watch output.
func watchFrame(st *model.State, th engine.Thresholds, voice string, iteration, count int, interval time.Duration) string {
	var sb strings.Builder

	ts := model.TimeLabel(st.Timestamp)
	iter := fmt.Sprintf("#%d", iteration)
	if count > 0 {
		iter = fmt.Sprintf("#%d/%d", iteration, count)
	}
	sb.WriteString(fmt.Sprintf(" %s%s twinmon v%s %s  %s %s  %s%s%s  %s\n",
		B, BBlu+FBWht, Version, R,
		B+ts+R,
		statusBadge(st.Status),
		D, interval, R,
		D+iter+R))
	sb.WriteString(hr() + "\n")

	r := st.Reading
	sb.WriteString(titleLine("SENSORS") + "\n")
	sb.WriteString(fmt.Sprintf("  Temperature  %s °C\n",
		cval(fmt.Sprintf("%6.1f", r.Temperature), r.Temperature, th.TempWarning, th.TempCritical)))
	sb.WriteString(fmt.Sprintf("  Vibration    %s mm/s\n",
		cval(fmt.Sprintf("%6.2f", r.Vibration), r.Vibration, th.StressVib, th.VibCritical)))
	sb.WriteString(fmt.Sprintf("  Speed        %6s rpm\n", humanize.Comma(int64(r.RPM))))
	sb.WriteString(fmt.Sprintf("  Power        %6.1f A\n", r.Power))
	sb.WriteString("\n")

	sb.WriteString(titleLine("HEALTH") + "\n")
	sb.WriteString(fmt.Sprintf("  RUL          %6.2f%%  %s  %s\n", st.RUL, barInv(st.RUL, 30), model.RULVerdict(st.RUL)))
	mode := "normal"
	if st.EcoMode {
		mode = FBGrn + "eco" + R
	}
	sb.WriteString(fmt.Sprintf("  Efficiency   %6.1f%%  mode %s  voice %s\n", st.Efficiency, mode, voice))
	sb.WriteString("\n")

	sb.WriteString(titleLine(fmt.Sprintf("ALERTS (%d)", len(st.Alerts))) + "\n")
	if len(st.Alerts) == 0 {
		sb.WriteString(fmt.Sprintf("  %sNo active alerts%s\n", FBGrn, R))
	}
	for _, a := range st.Alerts {
		tag := fmt.Sprintf(" %s!%s ", FBYel, R)
		if a.Kind == model.AlertCritical {
			tag = fmt.Sprintf("%s%s!!%s ", B, FBRed, R)
		}
		anomaly := ""
		if a.IsAnomaly {
			anomaly = fmt.Sprintf(" %s[anomaly]%s", FBRed, R)
		}
		sb.WriteString(fmt.Sprintf("  %s %s%s%s\n", D+model.TimeLabel(a.CreatedAt)+R, tag, a.Message, anomaly))
	}
	return sb.String()
}

func voiceLabel(g *engine.Gate) string {
	if g.Paused() {
		return FBYel + "paused" + R
	}
	return fmt.Sprintf("on (%d spoken)", g.Announcements())
}

// runWatch prints a frame after every scheduled tick until ctx is done or
// -count frames have been shown.
func runWatch(ctx context.Context, a *app, out io.Writer) error {
	ticks := make(chan engine.TickResult, 1)
	a.eng.OnTick(func(r engine.TickResult) {
		select {
		case ticks <- r:
		default:
		}
	})

	sched, err := a.scheduler()
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	th := a.eng.Params().Thresholds
	iteration := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintf(out, "\n%sStopped.%s\n", D, R)
			return nil
		case <-ticks:
			iteration++
			st := a.eng.State()
			fmt.Fprint(out, "\033[2J\033[H")
			fmt.Fprint(out, watchFrame(&st, th, voiceLabel(a.gate), iteration, a.opts.WatchCount, a.interval()))
			fmt.Fprintln(out, hr())
			fmt.Fprintf(out, " %sCtrl+C%s to quit\n", B, R)
			if a.opts.WatchCount > 0 && iteration >= a.opts.WatchCount {
				return nil
			}
		}
	}
}
