package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ftahirops/twinmon/config"
	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/util"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

// Options holds CLI flags. Zero values mean "use the config file".
type Options struct {
	Interval   time.Duration
	Role       string
	Seed       uint64
	Eco        bool
	WatchMode  bool
	WatchCount int
	JSONMode   bool
	Ticks      int
	ServeMode  bool
	Addr       string
	Speech     string
	DataDir    string
	ConfigPath string
	RecordPath string
	ReplayPath string
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `twinmon v%s: digital twin monitor for an industrial motor

Usage:
  twinmon [OPTIONS] [INTERVAL]

Modes:
  (default)         Interactive dashboard (bubbletea, fullscreen)
  -watch            Plain terminal output, one frame per tick
  -json             Run -ticks ticks, print the state as JSON, then exit
  -serve            Headless simulation with HTTP/websocket API
  -replay FILE      Summarize a recording made with -record
  -version          Print version and exit

Options:
  -interval N       Tick period in seconds (default: config, 1)
  -role NAME        Dashboard role: admin, technician, viewer
  -seed N           Random seed (0 = time based)
  -eco              Start in eco mode
  -count N          Frames for -watch (0 = infinite)
  -ticks N          Ticks for -json (default: 1)
  -addr HOST:PORT   Listen address for -serve
  -speech KIND      Voice backend: log, command, redis, mqtt, none
  -datadir PATH     Directory for the dashboard log file
  -config FILE      Config file (default: ~/.config/twinmon/config.json)
  -record FILE      Write every tick to FILE as JSON lines

Positional:
  INTERVAL          First positional arg sets interval: twinmon 2 = twinmon -interval 2

Examples:
  twinmon                            Dashboard as admin, 1s ticks
  twinmon -role viewer               Read-only dashboard
  twinmon -watch -count 10           Ten text frames then exit
  twinmon -json -ticks 100 -seed 7   Deterministic state after 100 ticks
  twinmon -serve -addr :8090         API on port 8090
  twinmon -speech command            Speak through speech.command from config
  twinmon -record /tmp/run.jsonl
  twinmon -replay /tmp/run.jsonl
`, Version)
}

// Run parses flags and starts the application.
func Run() error {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts Options
	var intervalSec int
	var showVersion bool

	fs := flag.NewFlagSet("twinmon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.IntVar(&intervalSec, "interval", 0, "Tick period in seconds")
	fs.StringVar(&opts.Role, "role", "", "Dashboard role (admin, technician, viewer)")
	fs.Uint64Var(&opts.Seed, "seed", 0, "Random seed (0 = time based)")
	fs.BoolVar(&opts.Eco, "eco", false, "Start in eco mode")
	fs.BoolVar(&opts.WatchMode, "watch", false, "Plain terminal output mode")
	fs.IntVar(&opts.WatchCount, "count", 0, "Number of frames for -watch (0=infinite)")
	fs.BoolVar(&opts.JSONMode, "json", false, "Print the state after -ticks ticks as JSON and exit")
	fs.IntVar(&opts.Ticks, "ticks", 1, "Ticks to run in -json mode")
	fs.BoolVar(&opts.ServeMode, "serve", false, "Run headless with the HTTP API")
	fs.StringVar(&opts.Addr, "addr", "", "Listen address for -serve")
	fs.StringVar(&opts.Speech, "speech", "", "Voice backend (log, command, redis, mqtt, none)")
	fs.StringVar(&opts.DataDir, "datadir", "", "Data directory for the log file")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file path")
	fs.StringVar(&opts.RecordPath, "record", "", "Record ticks to file")
	fs.StringVar(&opts.ReplayPath, "replay", "", "Summarize a recorded file")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.Usage = func() { printUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Fprintf(stdout, "twinmon v%s\n", Version)
		return nil
	}

	// Support positional arg for interval: `twinmon 5` = `twinmon -interval 5`
	if rest := fs.Args(); len(rest) > 0 {
		if n, err := strconv.Atoi(rest[0]); err == nil && n > 0 {
			intervalSec = n
		}
	}
	if intervalSec < 0 {
		return fmt.Errorf("interval must be positive, got %d", intervalSec)
	}
	opts.Interval = time.Duration(intervalSec) * time.Second

	if opts.ReplayPath != "" {
		return runReplay(opts.ReplayPath, stdout)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	role, err := model.ParseRole(cfg.Role)
	if err != nil {
		return err
	}

	tui := !opts.WatchMode && !opts.JSONMode && !opts.ServeMode
	log, err := newLogger(cfg, tui)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	a, err := newApp(cfg, opts, role, log, opts.JSONMode)
	if err != nil {
		return err
	}
	defer a.close()

	switch {
	case opts.JSONMode:
		return runJSON(a, stdout)
	case opts.WatchMode:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, a, stdout)
	case opts.ServeMode:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, a)
	}
	return runTUI(a)
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(opts Options) (config.Config, error) {
	var cfg config.Config
	var err error
	if opts.ConfigPath != "" {
		cfg, err = config.LoadFile(opts.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cfg, err
	}

	if opts.Interval > 0 {
		cfg.IntervalSec = int(opts.Interval / time.Second)
	}
	if opts.Role != "" {
		cfg.Role = opts.Role
	}
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if opts.Addr != "" {
		cfg.HTTP.Addr = opts.Addr
	}
	if opts.Speech != "" {
		cfg.Speech.Kind = opts.Speech
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger logs to a file in dashboard mode, since bubbletea owns the
// terminal, and to stderr otherwise.
func newLogger(cfg config.Config, toFile bool) (*zap.Logger, error) {
	if !toFile {
		return util.NewLogger(cfg.LogLevel, "")
	}
	dir := cfg.DataPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return util.NewLogger(cfg.LogLevel, filepath.Join(dir, "twinmon.log"))
}
