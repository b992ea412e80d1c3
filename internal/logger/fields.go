package logger

// Standard field keys for structured logging. Use these consistently
// across log statements so upload lifecycles can be traced by uid.
const (
	// Upload identity
	KeyUID      = "uid"      // upload / stored file identifier
	KeyFilename = "filename" // display name from upload metadata

	// I/O
	KeyOffset       = "offset"        // byte offset within an upload
	KeySize         = "size"          // declared or stored size in bytes
	KeyBytesWritten = "bytes_written" // bytes persisted by an append

	// Storage
	KeyBackend = "backend" // storage backend type: local, s3
	KeyBucket  = "bucket"  // S3 bucket name
	KeyPath    = "path"    // filesystem path

	// HTTP
	KeyMethod    = "method"     // request method
	KeyRoute     = "route"      // matched route pattern
	KeyStatus    = "status"     // response status code
	KeyClientIP  = "client_ip"  // client address
	KeyRequestID = "request_id" // per-request correlation id

	// Operation metadata
	KeyDurationMs = "duration_ms" // operation duration in milliseconds
	KeyError      = "error"       // error message
)
