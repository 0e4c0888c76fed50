// Package metrics exposes Prometheus counters for saves and interactions.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Save results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the collectors registered for one process.
type Metrics struct {
	registry *prometheus.Registry

	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram
	Interactions *prometheus.CounterVec
	Zooms        prometheus.Counter
	Items        *prometheus.GaugeVec
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corkboard",
			Name:      "snapshot_saves_total",
			Help:      "Snapshot saves by result.",
		}, []string{"result"}),
		SaveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "corkboard",
			Name:      "snapshot_save_seconds",
			Help:      "Time spent writing a snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		Interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "corkboard",
			Name:      "interactions_total",
			Help:      "Completed pointer gestures by mode.",
		}, []string{"mode"}),
		Zooms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "corkboard",
			Name:      "zoom_events_total",
			Help:      "Wheel zoom steps applied.",
		}),
		Items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "corkboard",
			Name:      "open_project_items",
			Help:      "Items on the open project by type.",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		m.Saves, m.SaveDuration, m.Interactions, m.Zooms, m.Items,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSave records one save attempt.
func (m *Metrics) ObserveSave(seconds float64, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.Saves.WithLabelValues(result).Inc()
	m.SaveDuration.Observe(seconds)
}

// ObserveInteraction records a finished gesture.
func (m *Metrics) ObserveInteraction(mode string) {
	if m == nil {
		return
	}
	m.Interactions.WithLabelValues(mode).Inc()
}

// ObserveZoom records one wheel step.
func (m *Metrics) ObserveZoom() {
	if m == nil {
		return
	}
	m.Zooms.Inc()
}

// SetItemCounts replaces the per-type item gauge.
func (m *Metrics) SetItemCounts(counts map[string]int) {
	if m == nil {
		return
	}
	m.Items.Reset()
	for typ, n := range counts {
		m.Items.WithLabelValues(typ).Set(float64(n))
	}
}
