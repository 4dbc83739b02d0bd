package http

import "net/http"

// Handler is the plain net/http handler signature routes are registered with
type Handler = func(http.ResponseWriter, *http.Request)

// Router is the surface modules mount against, chi sits behind it (see AdaptChi)
type Router interface {
	Get(path string, h Handler)
	Post(path string, h Handler)
	// Head is for probes that skip the body, /health answers both
	Head(path string, h Handler)

	Handle(path string, h http.Handler)
	Use(mw ...func(http.Handler) http.Handler)
	Group(fn func(Router))
	Route(pattern string, fn func(Router))

	Mux() http.Handler
}
