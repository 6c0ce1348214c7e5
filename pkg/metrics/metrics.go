package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const OutcomeOK = "ok"

type Metrics struct {
	registry        *prometheus.Registry
	annotations     *prometheus.CounterVec
	detectorLatency *prometheus.HistogramVec
	inFlight        prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		annotations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "landmark_annotations_total",
			Help: "Annotation requests by detector and outcome",
		}, []string{"detector", "outcome"}),
		detectorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landmark_detector_duration_seconds",
			Help:    "Wall-clock time spent waiting on the detector",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"detector", "outcome"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "landmark_annotations_in_flight",
			Help: "Annotation requests currently being processed",
		}),
	}

	registry.MustRegister(
		m.annotations,
		m.detectorLatency,
		m.inFlight,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Begin marks an annotation as started. The returned func records the
// detector that served it and the outcome, and must be called exactly once.
func (m *Metrics) Begin() func(detector, outcome string) {
	m.inFlight.Inc()
	return func(detector, outcome string) {
		m.inFlight.Dec()
		m.annotations.WithLabelValues(detector, outcome).Inc()
	}
}

func (m *Metrics) ObserveDetector(detector string, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = "error"
	}
	m.detectorLatency.WithLabelValues(detector, outcome).Observe(elapsed.Seconds())
}
