package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ftahirops/twinmon/engine"
	"github.com/ftahirops/twinmon/model"
	"github.com/ftahirops/twinmon/speech"
)

// EnvPrefix is prepended to every environment override, e.g.
// TWINMON_INTERVAL_SEC or TWINMON_SPEECH_KIND.
const EnvPrefix = "TWINMON"

// Config holds user-configurable defaults and integrations.
type Config struct {
	IntervalSec     int    `json:"interval_sec" mapstructure:"interval_sec"`
	AlertCapacity   int    `json:"alert_capacity" mapstructure:"alert_capacity"`
	HistoryCapacity int    `json:"history_capacity" mapstructure:"history_capacity"`
	LogCapacity     int    `json:"log_capacity" mapstructure:"log_capacity"`
	Seed            uint64 `json:"seed" mapstructure:"seed"`
	Role            string `json:"role" mapstructure:"role"`
	LogLevel        string `json:"log_level" mapstructure:"log_level"`
	DataDir         string `json:"data_dir" mapstructure:"data_dir"`

	HTTP       HTTPConfig    `json:"http" mapstructure:"http"`
	Speech     speech.Config `json:"speech" mapstructure:"speech"`
	Simulation engine.Params `json:"simulation" mapstructure:"simulation"`
}

// HTTPConfig controls the headless API server.
type HTTPConfig struct {
	Addr string `json:"addr" mapstructure:"addr"`
}

// Default returns a config with sensible defaults.
func Default() Config {
	p := engine.DefaultParams()
	return Config{
		IntervalSec:     1,
		AlertCapacity:   p.AlertCapacity,
		HistoryCapacity: p.HistoryCapacity,
		LogCapacity:     p.LogCapacity,
		Role:            string(model.RoleAdmin),
		LogLevel:        "info",
		HTTP:            HTTPConfig{Addr: "127.0.0.1:8090"},
		Speech:          speech.DefaultConfig(),
		Simulation:      p,
	}
}

// Path returns ~/.config/twinmon/config.json (or XDG_CONFIG_HOME).
// Returns empty string if home directory cannot be determined.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "twinmon", "config.json")
}

// Load reads .env from the working directory, then the config file at
// Path(), then TWINMON_* environment overrides.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFile(Path())
}

// LoadFile loads defaults, the file at path if it exists, and environment
// overrides. A missing file is not an error.
func LoadFile(path string) (Config, error) {
	v := viper.New()
	if err := setDefaults(v, Default()); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("config: read %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path := Path()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as indented JSON.
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Params returns the engine parameters with the top-level capacities applied.
func (c Config) Params() engine.Params {
	p := c.Simulation
	p.AlertCapacity = c.AlertCapacity
	p.HistoryCapacity = c.HistoryCapacity
	p.LogCapacity = c.LogCapacity
	return p
}

// Validate checks everything that can be checked without side effects.
func (c Config) Validate() error {
	if c.IntervalSec <= 0 {
		return fmt.Errorf("%w: interval_sec %d must be positive", engine.ErrInvalidConfig, c.IntervalSec)
	}
	if _, err := model.ParseRole(c.Role); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.Params().Validate()
}

// DataPath returns the configured data directory, falling back to
// ~/.local/share/twinmon (or XDG_DATA_HOME).
func (c Config) DataPath() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return os.TempDir()
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "twinmon")
}

// setDefaults registers every leaf of def as a dotted viper default, so
// nested keys such as simulation.normal.temp_fluctuation can be overridden
// from the environment.
func setDefaults(v *viper.Viper, def Config) error {
	data, err := json.Marshal(def)
	if err != nil {
		return err
	}
	var tree map[string]interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return err
	}
	flatten("", tree, v.SetDefault)
	if len(v.AllKeys()) == 0 {
		return errors.New("config: no defaults registered")
	}
	return nil
}

func flatten(prefix string, tree map[string]interface{}, set func(string, interface{})) {
	for k, val := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := val.(map[string]interface{}); ok {
			flatten(key, sub, set)
			continue
		}
		set(key, val)
	}
}
