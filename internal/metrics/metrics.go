// Package metrics holds the Prometheus collectors of the chatbot.
//
// Collectors live on a private registry so several servers (and tests) can
// coexist in one process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "monchatbot"

// Metrics groups the chatbot collectors.
type Metrics struct {
	Registry *prometheus.Registry

	// RequestsTotal counts HTTP requests. Labels: route, status.
	RequestsTotal *prometheus.CounterVec
	// RequestDuration measures HTTP handling time. Labels: route.
	RequestDuration *prometheus.HistogramVec
	// RepliesTotal counts router replies. Labels: stage.
	RepliesTotal *prometheus.CounterVec
	// LookupsTotal counts knowledge lookups. Labels: source, outcome.
	LookupsTotal *prometheus.CounterVec
	// MemoryEntries is the current number of memorized entries.
	MemoryEntries prometheus.Gauge
}

// New creates the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"route"},
		),
		RepliesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "router",
				Name:      "replies_total",
				Help:      "Replies by routing stage",
			},
			[]string{"stage"},
		),
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "knowledge",
				Name:      "lookups_total",
				Help:      "Knowledge source lookups by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		MemoryEntries: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "memory",
				Name:      "entries",
				Help:      "Number of memorized question/response pairs",
			},
		),
	}
}

// ObserveLookup records one knowledge lookup. It matches knowledge.ObserveFunc.
func (m *Metrics) ObserveLookup(source, outcome string) {
	m.LookupsTotal.WithLabelValues(source, outcome).Inc()
}

// ObserveReply records the stage of one router reply and the memory size
// after it.
func (m *Metrics) ObserveReply(stage string, memoryEntries int) {
	m.RepliesTotal.WithLabelValues(stage).Inc()
	m.MemoryEntries.Set(float64(memoryEntries))
}
