// Package module defines the contract every mountable service module satisfies
package module

import (
	phttp "newsletter/internal/platform/net/http"
)

// Module mounts its routes on a router and exposes ports for cross wiring,
// a cli reaches the subscriptions Reconciler this way without an http hop
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
