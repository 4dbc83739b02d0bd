// Package module wires subscriptions into the API using modkit
package module

import (
	modkit "newsletter/internal/modkit"
	"newsletter/internal/modkit/httpkit"
	"newsletter/internal/services/subscriptions/domain"
	shttp "newsletter/internal/services/subscriptions/http"
	"newsletter/internal/services/subscriptions/repo"
	"newsletter/internal/services/subscriptions/service"

	"github.com/prometheus/client_golang/prometheus"
)

// Module implements the subscriptions module
type Module struct {
	deps  modkit.Deps
	built modkit.Built
	opts  Options
	svc   *service.Svc
	ports Ports
}

// New constructs the module, routes mount at the parent router unless a prefix is given
func New(deps modkit.Deps, opts Options, mods ...modkit.Option) *Module {
	if deps.Mail == nil {
		panic("subscriptions module requires a mail transport")
	}
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("subscriptions"),
		modkit.WithPrefix(""),
	}, mods...)...)

	var emails, cacheCounts *prometheus.CounterVec
	if deps.Metrics != nil {
		emails, cacheCounts = deps.Metrics.EmailsSent, deps.Metrics.TokenCache
	}

	so := service.Options{
		Notifier: service.NewMailNotifier(deps.Mail, emails),
		Metrics:  deps.Metrics,
	}
	if deps.Redis != nil {
		rdb, ttl := deps.Redis.Client, deps.Redis.TokenTTL
		so.WrapTokens = func(ts domain.TokenStore) domain.TokenStore {
			return repo.NewCachedTokens(ts, rdb, ttl, cacheCounts)
		}
	}
	// a nil *bus.Bus must stay a nil interface
	if deps.Bus != nil {
		so.Events = deps.Bus
	}

	s := service.New(deps.PG, repo.NewPG(), so)
	return &Module{
		deps:  deps,
		built: b,
		opts:  opts,
		svc:   s,
		ports: Ports{Service: s, Reconciler: s},
	}
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Options returns the resolved options
func (m *Module) Options() Options { return m.opts }

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	m.built.Mount(r, func(rr httpkit.Router) {
		shttp.Register(rr, m.svc, shttp.Config{
			BaseURL:        m.opts.BaseURL,
			ConflictStatus: m.opts.ConflictStatus,
		})
	})
}
