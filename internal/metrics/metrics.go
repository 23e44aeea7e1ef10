package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atikulmunna/weblog/internal/parser"
)

// Metrics counts parse outcomes on its own registry. It satisfies
// stream.Observer.
type Metrics struct {
	registry *prometheus.Registry
	lines    *prometheus.CounterVec
	invalid  *prometheus.CounterVec
	bytes    prometheus.Counter
}

// New creates and registers the weblog collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		lines: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weblog_lines_total",
				Help: "Total number of input lines by parse outcome",
			},
			[]string{"outcome"},
		),
		invalid: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weblog_invalid_lines_total",
				Help: "Invalid lines by error kind",
			},
			[]string{"kind"},
		),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weblog_content_bytes_total",
			Help: "Sum of content sizes of parsed records",
		}),
	}
	m.registry.MustRegister(m.lines, m.invalid, m.bytes)
	return m
}

// Observe records a single parse outcome.
func (m *Metrics) Observe(o parser.Outcome) {
	if o.Valid() {
		m.lines.WithLabelValues("parsed").Inc()
		m.bytes.Add(float64(o.Record.ContentSize))
		return
	}
	m.lines.WithLabelValues("failed").Inc()
	m.invalid.WithLabelValues(o.Invalid.Kind).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
