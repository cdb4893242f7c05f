// Package speech provides the outbound voice channel for anomaly alerts.
// Every speaker returns from Speak promptly; slow work happens in the
// background or on a bounded timeout.
package speech

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnknownKind is returned by New for an unsupported backend.
var ErrUnknownKind = errors.New("unknown speech backend")

// Backend kinds.
const (
	KindLog     = "log"
	KindCommand = "command"
	KindRedis   = "redis"
	KindMQTT    = "mqtt"
	KindNone    = "none"
)

// Speaker speaks announcement text and can cut it short.
type Speaker interface {
	Speak(text string) error
	Cancel()
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Kind         string        `json:"kind" mapstructure:"kind"`
	Command      string        `json:"command" mapstructure:"command"`
	RedisAddr    string        `json:"redis_addr" mapstructure:"redis_addr"`
	RedisChannel string        `json:"redis_channel" mapstructure:"redis_channel"`
	MQTTBroker   string        `json:"mqtt_broker" mapstructure:"mqtt_broker"`
	MQTTTopic    string        `json:"mqtt_topic" mapstructure:"mqtt_topic"`
	MQTTClientID string        `json:"mqtt_client_id" mapstructure:"mqtt_client_id"`
	Timeout      time.Duration `json:"timeout" mapstructure:"timeout"`
}

// DefaultConfig logs announcements and publishes nowhere.
func DefaultConfig() Config {
	return Config{
		Kind:         KindLog,
		RedisAddr:    "127.0.0.1:6379",
		RedisChannel: "twinmon:voice",
		MQTTBroker:   "tcp://127.0.0.1:1883",
		MQTTTopic:    "twinmon/voice",
		MQTTClientID: "twinmon",
		Timeout:      5 * time.Second,
	}
}

// New builds the configured speaker. Network backends connect eagerly so a
// bad address fails at startup rather than on the first anomaly.
func New(cfg Config, log *zap.Logger) (Speaker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case "", KindLog:
		return NewLogSpeaker(log), nil
	case KindNone:
		return Silent{}, nil
	case KindCommand:
		if cfg.Command == "" {
			return nil, fmt.Errorf("speech: command backend needs a command")
		}
		return NewCommandSpeaker(cfg.Command, cfg.Timeout, log), nil
	case KindRedis:
		return DialRedis(cfg.RedisAddr, cfg.RedisChannel, cfg.Timeout, log)
	case KindMQTT:
		return DialMQTT(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, cfg.Timeout, log)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
}

// message is the payload published by the network backends.
type message struct {
	Event string `json:"event"`
	Text  string `json:"text,omitempty"`
	TS    string `json:"ts"`
}

func encode(event, text string) ([]byte, error) {
	return json.Marshal(message{Event: event, Text: text, TS: time.Now().Format(time.RFC3339)})
}

// Silent drops every announcement.
type Silent struct{}

func (Silent) Speak(string) error { return nil }
func (Silent) Cancel()            {}
func (Silent) Close() error       { return nil }

// LogSpeaker writes announcements to the structured log.
type LogSpeaker struct {
	log *zap.Logger
}

// NewLogSpeaker creates a speaker backed by log.
func NewLogSpeaker(log *zap.Logger) *LogSpeaker {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSpeaker{log: log.Named("voice")}
}

func (s *LogSpeaker) Speak(text string) error {
	s.log.Info(text)
	return nil
}

func (s *LogSpeaker) Cancel() {
	s.log.Debug("speech cancelled")
}

func (s *LogSpeaker) Close() error { return nil }
