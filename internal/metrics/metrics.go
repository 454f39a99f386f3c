// Package metrics exposes Prometheus collectors for tax calculations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tax"

// Metrics groups the collectors recorded by the tax service.
type Metrics struct {
	Calculations        *prometheus.CounterVec
	CalculationDuration prometheus.Histogram
	CacheLookups        *prometheus.CounterVec
	EventsPublished     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Tax calculations by outcome.",
		}, []string{"outcome"}),
		CalculationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent computing a tax result.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Published tax.calculated events by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(m.Calculations, m.CalculationDuration, m.CacheLookups, m.EventsPublished)
	return m
}

func (m *Metrics) ObserveCalculation(outcome string, elapsed time.Duration) {
	m.Calculations.WithLabelValues(outcome).Inc()
	m.CalculationDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheResult(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) EventPublished(outcome string) {
	m.EventsPublished.WithLabelValues(outcome).Inc()
}
