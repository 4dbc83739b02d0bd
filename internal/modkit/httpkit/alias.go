// Package httpkit is what service modules import for routing and binding,
// it re-exports the platform http seam so modules never reach into it directly
package httpkit

import (
	"net/http"

	phttp "newsletter/internal/platform/net/http"
)

type (
	Envelope = phttp.Envelope
	Response = phttp.Response
	Handler  = phttp.Handler
	Router   = phttp.Router
)

// Call adapts a (data, error) handler to the envelope writer
func Call(fn func(*http.Request) (any, error)) Handler { return phttp.Call(fn) }
