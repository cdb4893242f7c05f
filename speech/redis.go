package speech

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// redisPublisher is the slice of the redis client the speaker needs.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSpeaker publishes announcements on a pub/sub channel for an external
// text-to-speech consumer. Cancel publishes a cancel event on the same channel.
type RedisSpeaker struct {
	pub     redisPublisher
	client  *redis.Client
	channel string
	timeout time.Duration
	log     *zap.Logger
}

// DialRedis connects to addr and verifies the connection with PING.
func DialRedis(addr, channel string, timeout time.Duration, log *zap.Logger) (*RedisSpeaker, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
		MaxRetries:   1,
	})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("speech: connect redis %s: %w", addr, err)
	}
	s := newRedisSpeaker(client, channel, timeout, log)
	s.client = client
	return s, nil
}

func newRedisSpeaker(pub redisPublisher, channel string, timeout time.Duration, log *zap.Logger) *RedisSpeaker {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSpeaker{pub: pub, channel: channel, timeout: timeout, log: log.Named("voice")}
}

func (s *RedisSpeaker) publish(event, text string) error {
	data, err := encode(event, text)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.pub.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("speech: publish %s: %w", s.channel, err)
	}
	return nil
}

func (s *RedisSpeaker) Speak(text string) error {
	return s.publish("speak", text)
}

func (s *RedisSpeaker) Cancel() {
	if err := s.publish("cancel", ""); err != nil {
		s.log.Warn("cancel not delivered", zap.Error(err))
	}
}

func (s *RedisSpeaker) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
