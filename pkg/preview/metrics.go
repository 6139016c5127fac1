package preview

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the Prometheus instruments for one server instance.
//
// Each Server owns its own registry rather than registering against the
// process-global default: a stopped and restarted server re-creates its
// collectors, and the default registry rejects duplicate registration.
type metrics struct {
	registry *prometheus.Registry

	// requestsTotal counts asset requests by outcome. The label is the
	// resolution kind, not the path; project paths are unbounded and would
	// blow up cardinality.
	requestsTotal *prometheus.CounterVec

	// reloadSessions is the number of live reload subscribers (SSE + WS).
	reloadSessions prometheus.Gauge

	// reloadsTotal counts NotifyReload calls.
	reloadsTotal prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &metrics{
		registry: registry,

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "microes",
			Subsystem: "preview",
			Name:      "requests_total",
			Help:      "Asset requests served, by resolution outcome",
		}, []string{"outcome"}),

		reloadSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "microes",
			Subsystem: "preview",
			Name:      "reload_sessions",
			Help:      "Currently connected live-reload subscribers",
		}),

		reloadsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "microes",
			Subsystem: "preview",
			Name:      "reloads_total",
			Help:      "Reload notifications broadcast to subscribers",
		}),
	}
}

// handler serves the instance registry in the Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
