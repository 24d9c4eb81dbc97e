package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// DefaultTopic is the prefix rtl_433 consumers subscribe to (rtl_433/#).
const DefaultTopic = "rtl_433"

const publishTimeout = 5 * time.Second

// Publisher is the part of an MQTT client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTConfig configures the MQTT sink.
type MQTTConfig struct {
	Broker   string
	Topic    string
	ClientID string
}

// MQTT publishes each reading as JSON under <topic>/<model>/<channel>/<id>.
type MQTT struct {
	topic  string
	client Publisher
	conn   mqtt.Client
}

// DialMQTT connects to the broker and returns a ready sink.
func DialMQTT(cfg MQTTConfig) (*MQTT, error) {
	if cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}
	clientID := cfg.ClientID
	if clientID == "" {
		hostname, _ := os.Hostname()
		clientID = fmt.Sprintf("rtl433/%s-%d-%d", hostname, os.Getpid(), rand.Int())
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	s := NewMQTT(client, cfg.Topic)
	s.conn = client
	return s, nil
}

// NewMQTT wraps an already connected client.
func NewMQTT(client Publisher, topic string) *MQTT {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTT{topic: topic, client: client}
}

// Name implements Sink.
func (*MQTT) Name() string { return "mqtt" }

// Topic returns the topic a reading is published to.
func (s *MQTT) Topic(r Reading) string {
	return fmt.Sprintf("%s/%s/%d/%d", s.topic, r.Model, r.Channel, r.ID)
}

// Emit implements Sink.
func (s *MQTT) Emit(ctx context.Context, r Reading) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal reading: %w", err)
	}
	token := s.client.Publish(s.Topic(r), 1, false, payload)
	timer := time.NewTimer(publishTimeout)
	defer timer.Stop()
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("publish to %s timed out", s.Topic(r))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.Topic(r), err)
	}
	return nil
}

// Close disconnects a client opened by DialMQTT.
func (s *MQTT) Close() {
	if s.conn != nil {
		s.conn.Disconnect(250)
	}
}
