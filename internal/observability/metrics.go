package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storm_radar"

// Metrics holds the Prometheus counters, histograms, and gauges for the radar pipeline.
type Metrics struct {
	PipelineRunning prometheus.Gauge

	// Rendering.
	FramesRendered  prometheus.Counter
	RenderDuration  prometheus.Histogram
	FramesPublished *prometheus.CounterVec // labels: outcome={success,error}
	FrameDegraded   *prometheus.CounterVec // labels: source={features,raster,location}

	// Acquisition.
	FetchRequests *prometheus.CounterVec   // labels: source={features,raster,location}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: source
	FeatureCache  *prometheus.CounterVec   // labels: result={hit,miss,expired}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRunning,
		m.FramesRendered,
		m.RenderDuration,
		m.FramesPublished,
		m.FrameDegraded,
		m.FetchRequests,
		m.FetchDuration,
		m.FeatureCache,
	)
	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Total frames rendered.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of rasterizing and compositing one frame.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),
		FramesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_published_total",
			Help:      "Frames handed to the frame sink by outcome.",
		}, []string{"outcome"}),
		FrameDegraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_degraded_total",
			Help:      "Frames rendered with a substituted empty input, by source.",
		}, []string{"source"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Upstream fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Upstream fetch duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		FeatureCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feature_cache_total",
			Help:      "Feature cache lookups by result.",
		}, []string{"result"}),
	}
}
