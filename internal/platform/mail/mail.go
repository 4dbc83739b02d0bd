// Package mail delivers transactional email through a pluggable transport
package mail

import (
	"context"
	"fmt"
	"time"

	"newsletter/internal/platform/config"
)

// Message is one outbound email
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport hands a message to an email provider, it never retries
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Transport kinds selectable through EMAIL_TRANSPORT
const (
	KindHTTP = "http"
	KindSES  = "ses"
	KindLog  = "log"
)

// Config is the EMAIL_ scoped configuration
type Config struct {
	Kind     string
	Sender   string
	Timeout  time.Duration
	BaseURL  string
	APIToken string

	SESRegion    string
	SESAccessKey string
	SESSecretKey string
}

// FromConfig reads EMAIL_ prefixed settings
func FromConfig(cfg config.Conf) Config {
	c := Config{
		Kind:    cfg.MayEnum("TRANSPORT", KindHTTP, KindHTTP, KindSES, KindLog),
		Sender:  cfg.MayString("SENDER", ""),
		Timeout: cfg.MayDuration("TIMEOUT", 10*time.Second),
	}
	switch c.Kind {
	case KindHTTP:
		c.BaseURL = cfg.MustURL("BASE_URL").String()
		c.APIToken = cfg.MustString("API_TOKEN")
		c.Sender = cfg.MustString("SENDER")
	case KindSES:
		c.SESRegion = cfg.MayString("SES_REGION", "us-east-1")
		c.SESAccessKey = cfg.MayString("SES_ACCESS_KEY", "")
		c.SESSecretKey = cfg.MayString("SES_SECRET_KEY", "")
		c.Sender = cfg.MustString("SENDER")
	}
	return c
}

// New builds the transport selected by c.Kind
func New(ctx context.Context, c Config) (Transport, error) {
	switch c.Kind {
	case KindHTTP, "":
		return NewHTTP(c.BaseURL, c.Sender, c.APIToken, c.Timeout)
	case KindSES:
		return NewSES(ctx, c)
	case KindLog:
		return NewLog(c.Sender), nil
	default:
		return nil, fmt.Errorf("mail: unknown transport %q", c.Kind)
	}
}
