package storage

import "time"

// Metrics provides observability for backend operations.
//
// Implementations collect per-operation counts, durations, and transfer
// volumes. The interface is optional: pass nil to disable collection
// with zero overhead.
type Metrics interface {
	// ObserveOperation records one backend operation with its duration
	// and outcome.
	ObserveOperation(backend, operation string, duration time.Duration, err error)

	// RecordBytes records bytes transferred. Direction is "write" for
	// uploads and "read" for downloads.
	RecordBytes(backend, direction string, bytes int64)
}

// ObserveOperation records an operation when m is non-nil.
func ObserveOperation(m Metrics, backend, operation string, duration time.Duration, err error) {
	if m != nil {
		m.ObserveOperation(backend, operation, duration, err)
	}
}

// RecordBytes records transferred bytes when m is non-nil.
func RecordBytes(m Metrics, backend, direction string, bytes int64) {
	if m != nil {
		m.RecordBytes(backend, direction, bytes)
	}
}
