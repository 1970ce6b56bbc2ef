package detect

import (
	"errors"
	"fmt"
)

// Sentinel errors for the detect package.
var (
	// ErrUnavailable indicates the detector backend is gone for good.
	// The scheduler treats this as fatal and stops issuing cycles.
	ErrUnavailable = errors.New("detect: detector unavailable")

	// ErrCycleFailed indicates a single detection cycle failed.
	// The cycle is skipped and the next one retried.
	ErrCycleFailed = errors.New("detect: cycle failed")

	// ErrEmptyFrame indicates the frame buffer was empty or undecodable.
	ErrEmptyFrame = errors.New("detect: empty frame")
)

// BackendError wraps an error with backend context.
type BackendError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	return fmt.Sprintf("detect [%s]: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with backend context.
func WrapError(backend string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Err: err}
}

// IsFatal reports whether the error should stop the detection scheduler.
func IsFatal(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
