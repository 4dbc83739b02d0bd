// Package metrics holds the Prometheus collectors for the service
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors, registered on their own registry
type Metrics struct {
	reg *prometheus.Registry

	Registrations *prometheus.CounterVec
	Confirmations *prometheus.CounterVec
	EmailsSent    *prometheus.CounterVec
	TokenCache    *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors plus the go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Registrations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_registrations_total",
			Help: "Registration attempts by terminal stage and outcome",
		}, []string{"stage", "outcome"}),
		Confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_confirmations_total",
			Help: "Confirmation attempts by outcome",
		}, []string{"outcome"}),
		EmailsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_emails_total",
			Help: "Confirmation emails handed to the provider by outcome",
		}, []string{"outcome"}),
		TokenCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "newsletter_token_cache_total",
			Help: "Token cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsletter_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"code", "method"}),
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Instrument records request latency by status code and method
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return promhttp.InstrumentHandlerDuration(m.HTTPDuration, next)
}

// Registry exposes the underlying registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }
