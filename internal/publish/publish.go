// Package publish sends station snapshots to an MQTT broker.
package publish

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/bartgrantham/gofm/internal/config"
	"github.com/bartgrantham/gofm/rds"
)

var (
	ErrNotConnected = errors.New("publish: not connected")
	ErrTimeout      = errors.New("publish: timeout")
)

// Fields whose changes are worth a message.  PTY, TP and TA change too often
// to be worth one.
const Interesting = rds.FieldPI | rds.FieldPS | rds.FieldRT | rds.FieldPTYN | rds.FieldAF | rds.FieldTime

const defaultTimeout = 5 * time.Second

// Client is the part of mqtt.Client a Publisher needs.
type Client interface {
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher publishes snapshots as JSON to <topic>/<PI>.
type Publisher struct {
	client  Client
	topic   string
	qos     byte
	retain  bool
	timeout time.Duration
	logger  *slog.Logger
}

// WithLogger sets the logger for the publisher
func WithLogger(logger *slog.Logger) func(p *Publisher) {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithTimeout bounds how long Publish waits for the broker.
func WithTimeout(d time.Duration) func(p *Publisher) {
	return func(p *Publisher) {
		p.timeout = d
	}
}

func New(client Client, cfg config.MQTTConfig, options ...func(p *Publisher)) *Publisher {
	p := &Publisher{
		client:  client,
		topic:   strings.TrimSuffix(cfg.Topic, "/"),
		qos:     cfg.QoS,
		retain:  cfg.Retain,
		timeout: defaultTimeout,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// Connect dials the broker in cfg.  The client reconnects on its own after
// that; Publish fails with ErrNotConnected while it is away.
func Connect(cfg config.MQTTConfig, options ...func(p *Publisher)) (*Publisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	if strings.HasPrefix(cfg.Broker, "ssl://") || strings.HasPrefix(cfg.Broker, "tls://") {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetClientID(cfg.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	p := New(nil, cfg, options...)
	p.logger = p.logger.With(slog.String("broker", cfg.Broker))
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.logger.Warn("connection lost", slog.String("err", err.Error()))
	})
	client := mqtt.NewClient(opts)
	p.client = client

	if err := p.dial(client); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}
	p.logger.Info("connected")
	return p, nil
}

type dialer interface {
	Connect() mqtt.Token
	Disconnect(quiesce uint)
}

// dial waits for the first connection.  A client that never got through is
// disconnected so it stops retrying in the background.
func (p *Publisher) dial(c dialer) error {
	token := c.Connect()
	if !token.WaitTimeout(p.timeout) {
		c.Disconnect(0)
		return ErrTimeout
	}
	if err := token.Error(); err != nil {
		c.Disconnect(0)
		return err
	}
	return nil
}

// Wants reports whether u changed something subscribers care about.
func Wants(u rds.Update) bool {
	return u.Fields.Has(Interesting)
}

// Topic is where snapshots of the station with the given PI go.
func (p *Publisher) Topic(snap rds.Snapshot) string {
	return p.topic + "/" + snap.PIHex()
}

func (p *Publisher) Publish(snap rds.Snapshot) error {
	if !p.client.IsConnected() {
		return ErrNotConnected
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	topic := p.Topic(snap)
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publishing to %s: %w", topic, ErrTimeout)
	}
	if err = token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	p.logger.Debug("published", slog.String("topic", topic), slog.Int("bytes", len(payload)))
	return nil
}

func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
