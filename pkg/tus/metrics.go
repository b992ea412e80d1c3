package tus

// Metrics receives upload lifecycle events. Implementations must be safe
// for concurrent use. A nil Metrics disables collection.
type Metrics interface {
	// UploadCreated is called once per accepted POST.
	UploadCreated()

	// UploadCompleted is called after the completion pipeline succeeds.
	UploadCompleted()

	// UploadTerminated is called when a client deletes an upload.
	UploadTerminated()

	// UploadsExpired is called per sweep with the number of uploads removed.
	UploadsExpired(count int)

	// BytesReceived is called with the payload bytes persisted by a PATCH
	// or creation-with-upload body.
	BytesReceived(n int64)
}

func observeCreated(m Metrics) {
	if m != nil {
		m.UploadCreated()
	}
}

func observeCompleted(m Metrics) {
	if m != nil {
		m.UploadCompleted()
	}
}

func observeTerminated(m Metrics) {
	if m != nil {
		m.UploadTerminated()
	}
}

func observeExpired(m Metrics, count int) {
	if m != nil && count > 0 {
		m.UploadsExpired(count)
	}
}

func observeBytes(m Metrics, n int64) {
	if m != nil && n > 0 {
		m.BytesReceived(n)
	}
}
