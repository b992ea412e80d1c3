package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jasonlovesdoggo/put/pkg/storage"
)

// storageMetrics is the Prometheus implementation of storage.Metrics.
type storageMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	bytesTransferred  *prometheus.CounterVec
}

// NewStorageMetrics creates a Prometheus-backed storage.Metrics
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
// When nil is returned, callers should pass nil to storage backends,
// which results in zero overhead.
func NewStorageMetrics() storage.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newStorageMetrics(GetRegistry())
}

func newStorageMetrics(reg prometheus.Registerer) *storageMetrics {
	return &storageMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "put_storage_operations_total",
				Help: "Total number of storage backend operations by backend, operation, and status",
			},
			[]string{"backend", "operation", "status"},
		),
		operationDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "put_storage_operation_duration_milliseconds",
				Help: "Duration of storage backend operations in milliseconds",
				Buckets: []float64{
					1,     // 1ms - local filesystem metadata
					10,    // 10ms
					50,    // 50ms - fast S3 metadata operations
					100,   // 100ms
					500,   // 500ms - small object transfers
					1000,  // 1s
					5000,  // 5s - large objects
					10000, // 10s
					30000, // 30s - very large transfers
				},
			},
			[]string{"backend", "operation"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "put_storage_bytes_transferred_total",
				Help: "Total bytes moved through storage backends by direction",
			},
			[]string{"backend", "direction"},
		),
	}
}

func (m *storageMetrics) ObserveOperation(backend, operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	status := "success"
	if err != nil {
		status = "error"
	}

	m.operationsTotal.WithLabelValues(backend, operation, status).Inc()
	m.operationDuration.WithLabelValues(backend, operation).Observe(float64(duration.Milliseconds()))
}

func (m *storageMetrics) RecordBytes(backend, direction string, bytes int64) {
	if m == nil {
		return
	}
	m.bytesTransferred.WithLabelValues(backend, direction).Add(float64(bytes))
}
