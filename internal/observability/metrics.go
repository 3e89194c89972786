package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline.
type Metrics struct {
	IndexFetches *prometheus.CounterVec // labels: model, outcome={success,error}
	RangeFetches *prometheus.CounterVec // labels: model, outcome={success,http_error,decode_error}
	HoursSkipped prometheus.Counter
	RunsActive   prometheus.Gauge

	PointRecordsEmitted prometheus.Counter
	GridSamplesTaken    prometheus.Counter
	TilesEmitted        prometheus.Counter
	SinkRejections      prometheus.Counter

	RangeFetchDuration prometheus.Histogram
	BatchFlushDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.IndexFetches,
		m.RangeFetches,
		m.HoursSkipped,
		m.RunsActive,
		m.PointRecordsEmitted,
		m.GridSamplesTaken,
		m.TilesEmitted,
		m.SinkRejections,
		m.RangeFetchDuration,
		m.BatchFlushDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		IndexFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "index_fetches_total",
			Help:      "Idx manifest fetches by model and outcome.",
		}, []string{"model", "outcome"}),
		RangeFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "range_fetches_total",
			Help:      "Byte-range fetches by model and outcome.",
		}, []string{"model", "outcome"}),
		HoursSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "forecast_hours_skipped_total",
			Help:      "Forecast hours skipped due to index or fetch failures.",
		}),
		RunsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nwp_ingest",
			Name:      "runs_active",
			Help:      "Number of ingestion runs currently in flight.",
		}),
		PointRecordsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "point_records_emitted_total",
			Help:      "Point records handed to the sink.",
		}),
		GridSamplesTaken: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "grid_samples_total",
			Help:      "AOI lattice points sampled.",
		}),
		TilesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "tiles_emitted_total",
			Help:      "Spatial tiles handed to the sink.",
		}),
		SinkRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nwp_ingest",
			Name:      "sink_rejections_total",
			Help:      "Rows rejected by the sink within otherwise-accepted batches.",
		}),
		RangeFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nwp_ingest",
			Name:      "range_fetch_duration_seconds",
			Help:      "Duration of one byte-range fetch including decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		BatchFlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nwp_ingest",
			Name:      "batch_flush_duration_seconds",
			Help:      "Duration of one sink batch write.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
	}
}
