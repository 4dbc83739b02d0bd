// Package cache opens the shared redis client
package cache

import (
	"context"
	"fmt"
	"time"

	"newsletter/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

// Config is the SERVICE_REDIS_ scoped configuration
type Config struct {
	Enabled     bool
	URL         string
	TokenTTL    time.Duration
	DialTimeout time.Duration
	OpTimeout   time.Duration
}

// FromConfig reads SERVICE_REDIS_ prefixed settings
func FromConfig(cfg config.Conf) Config {
	c := Config{
		Enabled:     cfg.MayBool("ENABLED", false),
		TokenTTL:    cfg.MayDuration("TOKEN_TTL", 24*time.Hour),
		DialTimeout: cfg.MayDuration("DIAL_TIMEOUT", 2*time.Second),
		OpTimeout:   cfg.MayDuration("OP_TIMEOUT", 250*time.Millisecond),
	}
	if c.Enabled {
		c.URL = cfg.MustString("URL")
	}
	return c
}

// Client wraps go-redis with a health check
type Client struct {
	*redis.Client

	// TokenTTL bounds how long cached token lookups live
	TokenTTL time.Duration
}

// Open parses the URL, applies timeouts and pings once
// returns nil, nil when the cache is disabled
func Open(ctx context.Context, c Config) (*Client, error) {
	if !c.Enabled {
		return nil, nil
	}
	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if c.DialTimeout > 0 {
		opts.DialTimeout = c.DialTimeout
	}
	if c.OpTimeout > 0 {
		opts.ReadTimeout = c.OpTimeout
		opts.WriteTimeout = c.OpTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client, TokenTTL: c.TokenTTL}, nil
}

// Ping satisfies readiness probes
func (c *Client) Ping(ctx context.Context) error { return c.Client.Ping(ctx).Err() }
