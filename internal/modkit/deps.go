// Package modkit provides module wiring and core deps
package modkit

import (
	"newsletter/internal/modkit/repokit"
	"newsletter/internal/platform/bus"
	"newsletter/internal/platform/cache"
	"newsletter/internal/platform/config"
	"newsletter/internal/platform/logger"
	"newsletter/internal/platform/mail"
	"newsletter/internal/platform/metrics"
)

// Deps holds core dependencies passed to modules
// Redis and Bus are optional and nil when disabled
type Deps struct {
	Log     logger.Logger
	Cfg     config.Conf
	PG      repokit.TxRunner
	Redis   *cache.Client
	Bus     *bus.Bus
	Mail    mail.Transport
	Metrics *metrics.Metrics
}
