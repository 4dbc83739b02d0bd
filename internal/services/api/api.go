// Package api provides the HTTP API for the application
package api

import (
	"net/http"

	"newsletter/internal/modkit"
	"newsletter/internal/modkit/httpkit"
	"newsletter/internal/modkit/swaggerkit"
	phttp "newsletter/internal/platform/net/http"
	"newsletter/internal/platform/net/middleware"

	metahttp "newsletter/internal/services/api/meta/http"
	metamod "newsletter/internal/services/api/meta/module"
	subsmod "newsletter/internal/services/subscriptions/module"
)

// Options are the API options
type Options struct {
	ServiceName   string
	Deps          modkit.Deps
	Stack         httpkit.StackOptions
	Subscriptions subsmod.Options
	Checks        []metahttp.Check
	EnableDocs    bool
}

// Mount mounts the API service onto the given router and returns the mounted modules
func Mount(r phttp.Router, opt Options) []modkit.Module {
	if opt.ServiceName == "" {
		opt.ServiceName = "newsletter-api"
	}

	// metrics and tracing wrap everything, including the access log
	var mw []func(http.Handler) http.Handler
	if opt.Deps.Metrics != nil {
		mw = append(mw, opt.Deps.Metrics.Instrument)
	}
	mw = append(mw, middleware.Trace(opt.ServiceName))
	mw = append(mw, httpkit.CommonStack(opt.Stack)...)
	r.Use(mw...)

	swaggerkit.Mount(r, opt.EnableDocs)
	if opt.Deps.Metrics != nil {
		r.Handle("/metrics", opt.Deps.Metrics.Handler())
	}

	mods := []modkit.Module{
		metamod.New(opt.ServiceName, opt.Checks),
		subsmod.New(opt.Deps, opt.Subscriptions),
	}
	for _, m := range mods {
		m.MountRoutes(r)
	}
	return mods
}
