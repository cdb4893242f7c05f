package speech

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

type mqttPublisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTSpeaker publishes announcements to a broker topic at QoS 1.
type MQTTSpeaker struct {
	pub     mqttPublisher
	client  mqtt.Client
	topic   string
	timeout time.Duration
	log     *zap.Logger
}

// DialMQTT connects to broker and returns a speaker publishing on topic.
func DialMQTT(broker, clientID, topic string, timeout time.Duration, log *zap.Logger) (*MQTTSpeaker, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetConnectTimeout(timeout)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		return nil, fmt.Errorf("speech: connect mqtt %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("speech: connect mqtt %s: %w", broker, err)
	}
	s := newMQTTSpeaker(client, topic, timeout, log)
	s.client = client
	return s, nil
}

func newMQTTSpeaker(pub mqttPublisher, topic string, timeout time.Duration, log *zap.Logger) *MQTTSpeaker {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQTTSpeaker{pub: pub, topic: topic, timeout: timeout, log: log.Named("voice")}
}

func (s *MQTTSpeaker) publish(event, text string) error {
	data, err := encode(event, text)
	if err != nil {
		return err
	}
	token := s.pub.Publish(s.topic, 1, false, data)
	if !token.WaitTimeout(s.timeout) {
		return fmt.Errorf("speech: publish %s: timed out", s.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("speech: publish %s: %w", s.topic, err)
	}
	return nil
}

func (s *MQTTSpeaker) Speak(text string) error {
	return s.publish("speak", text)
}

func (s *MQTTSpeaker) Cancel() {
	if err := s.publish("cancel", ""); err != nil {
		s.log.Warn("cancel not delivered", zap.Error(err))
	}
}

func (s *MQTTSpeaker) Close() error {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	return nil
}
