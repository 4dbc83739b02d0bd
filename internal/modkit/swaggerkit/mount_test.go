package swaggerkit

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	phttp "newsletter/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
)

func TestMount(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, true)

	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("doc.json status = %d", rec.Code)
	}
	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc is not json: %v", err)
	}
	for _, p := range []string{"/subscribe", "/subscriptions/confirm"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Fatalf("doc misses %s", p)
		}
	}

	rec = httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))
	if rec.Code != http.StatusPermanentRedirect {
		t.Fatalf("redirect status = %d", rec.Code)
	}
}

func TestMount_Disabled(t *testing.T) {
	r := phttp.AdaptChi(chi.NewRouter())
	Mount(r, false)
	rec := httptest.NewRecorder()
	r.Mux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs/doc.json", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}
