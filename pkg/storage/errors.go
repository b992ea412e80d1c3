package storage

import "errors"

// StorageError is the typed error every backend operation returns.
//
// Handlers translate Code to HTTP statuses; the wrapped cause stays
// available through errors.Unwrap for logging.
type StorageError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the uid or filesystem path related to the error
	Path string

	// Err is the underlying cause, if any
	Err error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// ErrorCode represents the category of a backend error.
type ErrorCode int

const (
	// CodeNotFound indicates the requested uid does not exist
	CodeNotFound ErrorCode = iota

	// CodeAlreadyExists indicates a file with the uid already exists
	CodeAlreadyExists

	// CodeInvalidArgument indicates invalid parameters were provided
	// Examples: empty uid, metadata keys that violate backend rules
	CodeInvalidArgument

	// CodeTransport indicates the backing store could not be reached or
	// failed mid-operation (S3 API error, disk I/O error)
	CodeTransport

	// CodeInternal indicates an invariant violation inside the backend
	CodeInternal
)

// NewNotFoundError creates a StorageError for a missing uid.
func NewNotFoundError(uid string) *StorageError {
	return &StorageError{
		Code:    CodeNotFound,
		Message: "file not found",
		Path:    uid,
	}
}

// NewAlreadyExistsError creates a StorageError for a uid collision.
func NewAlreadyExistsError(uid string) *StorageError {
	return &StorageError{
		Code:    CodeAlreadyExists,
		Message: "file already exists",
		Path:    uid,
	}
}

// NewInvalidArgumentError creates a StorageError for rejected input.
func NewInvalidArgumentError(msg string) *StorageError {
	return &StorageError{
		Code:    CodeInvalidArgument,
		Message: msg,
	}
}

// NewTransportError creates a StorageError wrapping an I/O or API
// failure from the backing store.
func NewTransportError(op, path string, err error) *StorageError {
	return &StorageError{
		Code:    CodeTransport,
		Message: op + " failed",
		Path:    path,
		Err:     err,
	}
}

// NewInternalError creates a StorageError for invariant violations.
func NewInternalError(msg string, err error) *StorageError {
	return &StorageError{
		Code:    CodeInternal,
		Message: msg,
		Err:     err,
	}
}

// code extracts the ErrorCode from err, or CodeInternal when err is not
// a StorageError.
func code(err error) ErrorCode {
	var se *StorageError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is a not-found StorageError.
func IsNotFound(err error) bool {
	return err != nil && code(err) == CodeNotFound
}

// IsAlreadyExists reports whether err is an already-exists StorageError.
func IsAlreadyExists(err error) bool {
	return err != nil && code(err) == CodeAlreadyExists
}

// IsInvalidArgument reports whether err is an invalid-argument
// StorageError.
func IsInvalidArgument(err error) bool {
	return err != nil && code(err) == CodeInvalidArgument
}
