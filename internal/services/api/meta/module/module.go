// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"time"

	modkit "newsletter/internal/modkit"
	"newsletter/internal/modkit/httpkit"

	metahttp "newsletter/internal/services/api/meta/http"
)

// Module implements the modkit.Module interface
type Module struct {
	built     modkit.Built
	deps      metahttp.Deps
	startedAt time.Time
}

// New constructs a meta module, checks are reported by /meta/ready in order
func New(service string, checks []metahttp.Check, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	now := time.Now()
	return &Module{
		built:     b,
		startedAt: now,
		deps: metahttp.Deps{
			ServiceName: service,
			StartedAt:   now,
			Checks:      checks,
		},
	}
}

// MountRoutes implements the modkit.Module interface
// the bare /health heartbeat sits at the parent router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Get("/health", metahttp.Heartbeat)
	r.Head("/health", metahttp.Heartbeat)
	m.built.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, m.deps) })
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return m.built.Name }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
