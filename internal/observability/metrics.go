package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// hazard calculation engine.
type Metrics struct {
	Calculations     prometheus.Counter
	CalcErrors       prometheus.Counter
	SourcesProcessed prometheus.Counter
	GmmEvaluations   prometheus.Counter
	CalcsInFlight    prometheus.Gauge

	CalcDuration  prometheus.Histogram
	SourcesPerSet prometheus.Histogram
}

// NewMetrics creates and registers all calculation metrics with the
// default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Calculations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazcurve",
			Name:      "calculations_total",
			Help:      "Total completed hazard calculations.",
		}),
		CalcErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazcurve",
			Name:      "calculation_errors_total",
			Help:      "Total hazard calculations aborted by an error.",
		}),
		SourcesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazcurve",
			Name:      "sources_processed_total",
			Help:      "Total sources expanded into rupture inputs.",
		}),
		GmmEvaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hazcurve",
			Name:      "gmm_evaluations_total",
			Help:      "Total ground-motion model invocations.",
		}),
		CalcsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hazcurve",
			Name:      "calculations_in_flight",
			Help:      "Hazard calculations currently running.",
		}),
		CalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazcurve",
			Name:      "calculation_duration_seconds",
			Help:      "Duration of a complete per-site hazard calculation.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}),
		SourcesPerSet: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hazcurve",
			Name:      "sources_per_set",
			Help:      "Number of in-range sources per source set.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		}),
	}

	prometheus.MustRegister(
		m.Calculations,
		m.CalcErrors,
		m.SourcesProcessed,
		m.GmmEvaluations,
		m.CalcsInFlight,
		m.CalcDuration,
		m.SourcesPerSet,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Calculations:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazcurve", Name: "calculations_total"}),
		CalcErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazcurve", Name: "calculation_errors_total"}),
		SourcesProcessed: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazcurve", Name: "sources_processed_total"}),
		GmmEvaluations:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hazcurve", Name: "gmm_evaluations_total"}),
		CalcsInFlight:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hazcurve", Name: "calculations_in_flight"}),
		CalcDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazcurve", Name: "calculation_duration_seconds"}),
		SourcesPerSet:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hazcurve", Name: "sources_per_set"}),
	}
}
