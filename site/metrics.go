package site

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "corner_site"

// Metrics records build outcomes in a dedicated registry.
type Metrics struct {
	registry      *prometheus.Registry
	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	routes        prometheus.Gauge
	fetchErrors   prometheus.Counter
}

func newMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		registry: reg,
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "builds_total",
			Help:      "Static builds by result",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "build_duration_seconds",
			Help:      "Static build duration",
			Buckets:   prometheus.DefBuckets,
		}),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "sitemap_routes",
			Help:      "Locations listed in the last generated sitemap",
		}),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "content_fetch_errors_total",
			Help:      "Failed content collection fetches",
		}),
	}
	reg.MustRegister(m.builds, m.buildDuration, m.routes, m.fetchErrors)
	return m
}

func (m *Metrics) observeBuild(start time.Time, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(time.Since(start).Seconds())
}

// WriteTextfile writes the registry in the text exposition format for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
