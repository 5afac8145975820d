package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tiene su propio registry: cada router (y cada test) arma el suyo.
type Metrics struct {
	reg *prometheus.Registry

	AnimalsCreated prometheus.Counter
	AnimalsDeduped prometheus.Counter
	TokenBinds     *prometheus.CounterVec
	HistoryOps     *prometheus.CounterVec
	PublicLookups  *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		AnimalsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "clinic_animals_created_total",
			Help: "Animals inserted by the identity resolver",
		}),
		AnimalsDeduped: f.NewCounter(prometheus.CounterOpts{
			Name: "clinic_animals_deduplicated_total",
			Help: "Creation requests resolved to an existing (name, owner) pair",
		}),
		TokenBinds: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_token_binds_total",
			Help: "Lookup artifact bind attempts by result",
		}, []string{"result"}),
		HistoryOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_history_operations_total",
			Help: "History ledger mutations by operation",
		}, []string{"op"}),
		PublicLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_public_lookups_total",
			Help: "Public record lookups by result",
		}, []string{"result"}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_http_requests_total",
			Help: "HTTP requests by method, route pattern and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clinic_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler expone el registry en formato texto de Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) IncrementAnimalsCreated() { m.AnimalsCreated.Inc() }

func (m *Metrics) IncrementAnimalsDeduped() { m.AnimalsDeduped.Inc() }

// ObserveBind registra "ok", "already_bound" o "error".
func (m *Metrics) ObserveBind(result string) { m.TokenBinds.WithLabelValues(result).Inc() }

func (m *Metrics) ObserveHistoryOp(op string) { m.HistoryOps.WithLabelValues(op).Inc() }

func (m *Metrics) ObservePublicLookup(found bool) {
	if found {
		m.PublicLookups.WithLabelValues("found").Inc()
		return
	}
	m.PublicLookups.WithLabelValues("not_found").Inc()
}

// ObserveHTTP registra un request terminado. Llamar con time.Now() del inicio.
func (m *Metrics) ObserveHTTP(method, route string, status int, start time.Time) {
	m.HTTPRequests.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
