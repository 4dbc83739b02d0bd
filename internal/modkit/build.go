package modkit

import (
	"net/http"

	phttp "newsletter/internal/platform/net/http"
)

// Built is the resolved option set a module keeps around
type Built struct {
	Name     string
	Prefix   string
	Mw       []func(http.Handler) http.Handler
	Register func(phttp.Router)
}

// Build applies Option funcs and fills defaults
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.register == nil {
		c.register = func(phttp.Router) {}
	}
	return Built{
		Name:     c.name,
		Prefix:   c.prefix,
		Mw:       append([]func(http.Handler) http.Handler(nil), c.mw...),
		Register: c.register,
	}
}

// Mount attaches b's routes to r, grouping instead of routing when there is no prefix
func (b Built) Mount(r phttp.Router, register func(phttp.Router)) {
	attach := func(sub phttp.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		register(sub)
		b.Register(sub)
	}
	if b.Prefix == "" || b.Prefix == "/" {
		r.Group(attach)
		return
	}
	r.Route(b.Prefix, attach)
}
