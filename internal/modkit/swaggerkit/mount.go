// Package swaggerkit serves the OpenAPI document and the Swagger UI
package swaggerkit

import (
	_ "embed"
	"net/http"

	phttp "newsletter/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var doc []byte

// Mount the Swagger UI and JSON document under /docs if enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusPermanentRedirect)
	})
	r.Get("/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(doc)
	})
	r.Handle("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))
}
