package httpkit

import (
	"net/http"

	"newsletter/internal/platform/net/http/bind"
)

// Get registers a handler that takes its input from the URL
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Call(h))
}

// Post registers a handler that reads the body itself
func Post(r Router, path string, h func(*http.Request) (any, error)) {
	r.Post(path, Call(h))
}

// PostForm mounts a POST handler fed by a decoded and validated urlencoded body
func PostForm[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, Call(func(req *http.Request) (any, error) {
		in, err := bind.ParseForm[T](req)
		if err != nil {
			return nil, err
		}
		return h(req, in)
	}))
}

// GetQuery mounts a GET handler fed by a decoded and validated query string
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Get(path, Call(func(req *http.Request) (any, error) {
		in, err := bind.Query[T](req)
		if err != nil {
			return nil, err
		}
		return h(req, in)
	}))
}
