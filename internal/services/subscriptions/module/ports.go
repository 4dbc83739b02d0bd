package module

import (
	"context"

	"newsletter/internal/services/subscriptions/domain"
	"newsletter/internal/services/subscriptions/service"
)

// Reconciler runs the stale pending subscriber pass
type Reconciler interface {
	Reconcile(ctx context.Context, in service.ReconcileInput) (service.ReconcileReport, error)
}

// Ports are what other modules and binaries may use from subscriptions
type Ports struct {
	Service    domain.ServicePort
	Reconciler Reconciler
}

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return m.ports }
