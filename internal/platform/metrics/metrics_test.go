package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.Registrations.WithLabelValues("done", "ok").Inc()
	m.Registrations.WithLabelValues("persisting", "error").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Registrations.WithLabelValues("done", "ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Registrations.WithLabelValues("persisting", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), `newsletter_registrations_total{outcome="ok",stage="done"} 1`)
}

func TestInstrument(t *testing.T) {
	m := New()
	h := m.Instrument(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/subscribe", nil))

	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = New()
		_ = New()
	})
}
