// Package bus publishes domain events to NATS JetStream
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"newsletter/internal/platform/config"

	"github.com/nats-io/nats.go"
)

// Config is the SERVICE_NATS_ scoped configuration
type Config struct {
	Enabled       bool
	URL           string
	SubjectPrefix string
}

// FromConfig reads SERVICE_NATS_ prefixed settings
func FromConfig(cfg config.Conf) Config {
	c := Config{
		Enabled:       cfg.MayBool("ENABLED", false),
		SubjectPrefix: cfg.MayString("SUBJECT_PREFIX", "newsletter"),
	}
	if c.Enabled {
		c.URL = cfg.MayString("URL", nats.DefaultURL)
	}
	return c
}

// Publisher is the surface services depend on
type Publisher interface {
	Publish(ctx context.Context, subject string, v any) error
}

// Bus wraps a NATS JetStream connection for publishing events
type Bus struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	prefix string
}

// New connects to NATS, returns nil, nil when the bus is disabled
func New(c Config, opts ...nats.Option) (*Bus, error) {
	if !c.Enabled {
		return nil, nil
	}
	opts = append([]nats.Option{nats.Name("newsletter")}, opts...)
	nc, err := nats.Connect(c.URL, opts...)
	if err != nil {
		return nil, err
	}
	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}
	return &Bus{conn: nc, js: js, prefix: strings.TrimSuffix(c.SubjectPrefix, ".")}, nil
}

// Subject joins the configured prefix with name
func (b *Bus) Subject(name string) string {
	if b == nil || b.prefix == "" {
		return name
	}
	return b.prefix + "." + name
}

// Publish encodes v as JSON and publishes it under the prefixed subject
func (b *Bus) Publish(ctx context.Context, subject string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = b.js.Publish(b.Subject(subject), data, nats.Context(ctx))
	return err
}

// Ping reports whether the connection is up
func (b *Bus) Ping(context.Context) error {
	if b == nil {
		return errors.New("nil bus")
	}
	if !b.conn.IsConnected() {
		return nats.ErrConnectionClosed
	}
	return nil
}

// Close drains the connection
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}
