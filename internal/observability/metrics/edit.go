package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// EditMetrics contains the Prometheus metrics for region editing. It
// implements Recorder.
type EditMetrics struct {
	OperationsTotal   *prometheus.CounterVec
	ErrorsTotal       *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	Regions           prometheus.Gauge
	CrossfadeZones    prometheus.Gauge
	SourceCacheTotal  *prometheus.CounterVec
	registry          *prometheus.Registry
}

var _ Recorder = (*EditMetrics)(nil)

// NewEditMetrics creates EditMetrics and registers them with registry.
func NewEditMetrics(registry *prometheus.Registry) (*EditMetrics, error) {
	m := &EditMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register edit metrics: %w", err)
	}
	return m, nil
}

func (m *EditMetrics) initMetrics() {
	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regionedit_operations_total",
			Help: "Total number of edit operations by outcome.",
		},
		[]string{"operation", "status"},
	)

	m.ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regionedit_errors_total",
			Help: "Total number of failed edit operations by error category.",
		},
		[]string{"operation", "error_type"},
	)

	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "regionedit_operation_duration_seconds",
			Help:    "Duration of edit operations in seconds.",
			Buckets: prometheus.ExponentialBuckets(BucketStart10us, BucketFactor2, BucketCount20),
		},
		[]string{"operation"},
	)

	m.Regions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "regionedit_regions",
		Help: "Number of regions in the committed timeline.",
	})

	m.CrossfadeZones = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "regionedit_crossfade_zones",
		Help: "Number of crossfade zones found by the last detection.",
	})

	m.SourceCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "regionedit_source_cache_total",
			Help: "Source metadata cache lookups by result.",
		},
		[]string{"result"},
	)
}

// RecordOperation implements Recorder.
func (m *EditMetrics) RecordOperation(operation, status string) {
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *EditMetrics) RecordDuration(operation string, seconds float64) {
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *EditMetrics) RecordError(operation, errorType string) {
	m.ErrorsTotal.WithLabelValues(operation, errorType).Inc()
}

// SetRegions sets the committed region count.
func (m *EditMetrics) SetRegions(n int) {
	m.Regions.Set(float64(n))
}

// SetCrossfadeZones sets the zone count from the last detection.
func (m *EditMetrics) SetCrossfadeZones(n int) {
	m.CrossfadeZones.Set(float64(n))
}

// RecordCacheLookup counts a source cache hit or miss.
func (m *EditMetrics) RecordCacheLookup(hit bool) {
	result := CacheMiss
	if hit {
		result = CacheHit
	}
	m.SourceCacheTotal.WithLabelValues(result).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *EditMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.OperationsTotal.Describe(ch)
	m.ErrorsTotal.Describe(ch)
	m.OperationDuration.Describe(ch)
	m.Regions.Describe(ch)
	m.CrossfadeZones.Describe(ch)
	m.SourceCacheTotal.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *EditMetrics) Collect(ch chan<- prometheus.Metric) {
	m.OperationsTotal.Collect(ch)
	m.ErrorsTotal.Collect(ch)
	m.OperationDuration.Collect(ch)
	m.Regions.Collect(ch)
	m.CrossfadeZones.Collect(ch)
	m.SourceCacheTotal.Collect(ch)
}
