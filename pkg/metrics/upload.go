package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jasonlovesdoggo/put/pkg/tus"
)

// uploadMetrics is the Prometheus implementation of tus.Metrics.
type uploadMetrics struct {
	created       prometheus.Counter
	completed     prometheus.Counter
	terminated    prometheus.Counter
	expired       prometheus.Counter
	bytesReceived prometheus.Counter
}

// NewUploadMetrics creates a Prometheus-backed tus.Metrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called), in
// which case the upload handler skips collection entirely.
func NewUploadMetrics() tus.Metrics {
	if !IsEnabled() {
		return nil
	}
	return newUploadMetrics(GetRegistry())
}

func newUploadMetrics(reg prometheus.Registerer) *uploadMetrics {
	return &uploadMetrics{
		created: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "put_uploads_created_total",
			Help: "Total number of uploads accepted via the creation extension",
		}),
		completed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "put_uploads_completed_total",
			Help: "Total number of uploads that reached their declared length and were handed off to storage",
		}),
		terminated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "put_uploads_terminated_total",
			Help: "Total number of uploads removed via the termination extension",
		}),
		expired: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "put_uploads_expired_total",
			Help: "Total number of uploads reclaimed by the expiration sweeper",
		}),
		bytesReceived: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "put_upload_bytes_received_total",
			Help: "Total payload bytes persisted from PATCH and creation-with-upload bodies",
		}),
	}
}

func (m *uploadMetrics) UploadCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *uploadMetrics) UploadCompleted() {
	if m == nil {
		return
	}
	m.completed.Inc()
}

func (m *uploadMetrics) UploadTerminated() {
	if m == nil {
		return
	}
	m.terminated.Inc()
}

func (m *uploadMetrics) UploadsExpired(count int) {
	if m == nil {
		return
	}
	m.expired.Add(float64(count))
}

func (m *uploadMetrics) BytesReceived(n int64) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(n))
}
