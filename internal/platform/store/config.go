package store

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"newsletter/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled bool

	// URL wins when set; otherwise the parts below are assembled into one
	URL      string
	User     string
	Password string
	Host     string
	Port     int
	Database string
	SSLMode  string

	MaxConns       int32
	LogSQL         bool
	SlowQueryMs    int
	ConnectTimeout time.Duration
	ConnectRetries int
}

// DSN returns the connection string for the pool
func (c PGConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// PGFromConfig reads SERVICE_PGSQL_ scoped settings
// DBURL wins, otherwise USER and NAME are required and the rest have defaults
func PGFromConfig(cfg config.Conf) PGConfig {
	c := PGConfig{
		Enabled:        true,
		URL:            cfg.MayString("DBURL", ""),
		MaxConns:       int32(cfg.MayInt("MAX_CONNS", 4)),
		SlowQueryMs:    cfg.MayInt("SLOW_MS", 500),
		LogSQL:         cfg.MayBool("LOG_SQL", false),
		ConnectTimeout: cfg.MayDuration("CONNECT_TIMEOUT", 2*time.Second),
		ConnectRetries: cfg.MayInt("CONNECT_RETRIES", 20),
	}
	if c.URL != "" {
		return c
	}
	c.User = cfg.MustString("USER")
	c.Password = cfg.MayString("PASSWORD", "")
	c.Host = cfg.MayString("HOST", "localhost")
	c.Port = cfg.MayInt("PORT", 5432)
	c.Database = cfg.MustString("NAME")
	c.SSLMode = cfg.MayString("SSLMODE", "")
	return c
}
