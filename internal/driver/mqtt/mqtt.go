// Package mqtt publishes composited frames to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/stagefx/internal/config"
	"github.com/coreman2200/stagefx/internal/render"
)

var ErrNotConnected = errors.New("mqtt: not connected")

// Publisher is the part of a paho client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Sink sends one JSON frame message per tick. QoS 0 publishes without
// waiting; higher levels wait up to Timeout for the broker.
type Sink struct {
	pub     Publisher
	client  paho.Client
	topic   string
	qos     byte
	frameID uint64
	clock   func() float64

	Timeout time.Duration
}

func New(pub Publisher, topic string, qos byte) *Sink {
	return &Sink{pub: pub, topic: topic, qos: qos, Timeout: 50 * time.Millisecond}
}

// Dial connects to the configured broker.
func Dial(c config.MQTT) (*Sink, error) {
	opts := paho.NewClientOptions().
		AddBroker(c.Broker).
		SetClientID(c.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt connection lost")
		})
	if c.Username != "" {
		opts.SetUsername(c.Username)
		opts.SetPassword(c.Password)
	}
	client := paho.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(5 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timeout", c.Broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", c.Broker, err)
	}
	log.Info().Str("broker", c.Broker).Str("topic", c.Topic).Msg("mqtt connected")
	s := New(client, c.Topic, c.QoS)
	s.client = client
	return s, nil
}

// SetClock supplies the show time stamped on each message.
func (s *Sink) SetClock(fn func() float64) { s.clock = fn }

func (s *Sink) Write(f render.Frame) error {
	if s.client != nil && !s.client.IsConnectionOpen() {
		return ErrNotConnected
	}
	s.frameID++
	var tMs float64
	if s.clock != nil {
		tMs = s.clock()
	}
	b, err := json.Marshal(render.Wire(s.frameID, tMs, f))
	if err != nil {
		return err
	}
	tok := s.pub.Publish(s.topic, s.qos, false, b)
	if s.qos == 0 {
		return nil
	}
	if !tok.WaitTimeout(s.Timeout) {
		return fmt.Errorf("mqtt publish frame %d: timeout", s.frameID)
	}
	return tok.Error()
}

func (s *Sink) Close() error {
	if s.client != nil {
		s.client.Disconnect(250)
	}
	return nil
}
