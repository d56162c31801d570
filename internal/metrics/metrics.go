// Package metrics provides the centralized Prometheus metrics registry for the
// projection engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nba_comps"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ProjectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projections_total",
		Help:      "Total number of projection requests by outcome",
	}, []string{"status"})
	NeighborsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "neighbors_skipped_total",
		Help:      "Neighbors dropped from a projection, by reason",
	}, []string{"reason"})
	DegenerateDistancesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degenerate_distances_total",
		Help:      "Neighbor distances floored to epsilon before weighting",
	})
	RecordsLoadedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_loaded_total",
		Help:      "Player-season rows read from a source, by outcome",
	}, []string{"source", "outcome"})
	CacheRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "projection_cache_requests_total",
		Help:      "Projection cache lookups by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	StoreRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "store_records",
		Help:      "Player-season records in the active snapshot",
	})
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "projection_cache_hit_ratio",
		Help:      "Projection cache hit ratio",
	})
	EvaluationMAE = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "evaluation_mean_absolute_error",
		Help:      "Mean absolute error of the latest season evaluation per stat",
	}, []string{"stat"})
)

// Histogram metrics
var (
	ProjectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "projection_duration_seconds",
		Help:      "Duration of single projections in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	NeighborsRetained = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "projection_neighbors_retained",
		Help:      "Neighbors contributing to each projection",
		Buckets:   []float64{0, 1, 2, 3, 5, 8, 10, 15, 20, 50},
	})
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "batch_duration_seconds",
		Help:      "Duration of season batch projections in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ProjectionsTotal)
		registry.MustRegister(NeighborsSkippedTotal)
		registry.MustRegister(DegenerateDistancesTotal)
		registry.MustRegister(RecordsLoadedTotal)
		registry.MustRegister(CacheRequestsTotal)

		registry.MustRegister(StoreRecords)
		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(EvaluationMAE)

		registry.MustRegister(ProjectionDuration)
		registry.MustRegister(NeighborsRetained)
		registry.MustRegister(BatchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordProjection records the outcome and latency of one projection.
func RecordProjection(status string, durationSeconds float64, retained int) {
	ProjectionsTotal.WithLabelValues(status).Inc()
	ProjectionDuration.Observe(durationSeconds)
	if status == "success" {
		NeighborsRetained.Observe(float64(retained))
	}
}

// RecordNeighborSkipped records a neighbor excluded from a projection.
func RecordNeighborSkipped(reason string) {
	NeighborsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordDegenerateDistance records a distance floored to epsilon.
func RecordDegenerateDistance() {
	DegenerateDistancesTotal.Inc()
}

// RecordLoad records rows read from a source.
func RecordLoad(source string, loaded, dropped, rejected int) {
	RecordsLoadedTotal.WithLabelValues(source, "loaded").Add(float64(loaded))
	RecordsLoadedTotal.WithLabelValues(source, "dropped_empty").Add(float64(dropped))
	RecordsLoadedTotal.WithLabelValues(source, "rejected").Add(float64(rejected))
}

// RecordCacheLookup records a cache hit or miss and the current ratio.
func RecordCacheLookup(hit bool, ratio float64) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheRequestsTotal.WithLabelValues(result).Inc()
	CacheHitRatio.Set(ratio)
}

// UpdateStoreRecords sets the size of the active snapshot.
func UpdateStoreRecords(count int) {
	StoreRecords.Set(float64(count))
}

// UpdateEvaluationMAE sets the evaluation error for one stat.
func UpdateEvaluationMAE(stat string, mae float64) {
	EvaluationMAE.WithLabelValues(stat).Set(mae)
}

// RecordBatchDuration records season batch duration.
func RecordBatchDuration(durationSeconds float64) {
	BatchDuration.Observe(durationSeconds)
}
