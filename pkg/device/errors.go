package device

import (
	"errors"
	"fmt"
)

// Sentinel errors for stream misuse.
var (
	// ErrStreamStopped is returned when reading from a stopped stream.
	ErrStreamStopped = errors.New("device: stream stopped")

	// ErrNoFrame is returned when the device produced no frame.
	ErrNoFrame = errors.New("device: no frame available")
)

// Reason is the platform-level rejection reason for a failed acquisition.
// Capture layers translate these into their own error taxonomy.
type Reason string

const (
	// ReasonNotAllowed means access to the device was refused.
	ReasonNotAllowed Reason = "not_allowed"

	// ReasonNotFound means no device matched the request.
	ReasonNotFound Reason = "not_found"

	// ReasonNotReadable means the device exists but could not be opened,
	// typically because another consumer holds it.
	ReasonNotReadable Reason = "not_readable"

	// ReasonOverconstrained means the requested constraints cannot be
	// satisfied by any available device.
	ReasonOverconstrained Reason = "overconstrained"

	// ReasonUnknown covers every other backend failure.
	ReasonUnknown Reason = "unknown"
)

// AcquireError is a device acquisition rejection with a platform reason.
type AcquireError struct {
	// Reason is the platform rejection reason.
	Reason Reason

	// Device identifies the device involved, if known.
	Device string

	// Err is the underlying backend error, if any.
	Err error
}

// Error implements the error interface.
func (e *AcquireError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("device [%s]: acquire %s: %v", e.Reason, e.Device, e.Err)
	}
	return fmt.Sprintf("device [%s]: acquire %s", e.Reason, e.Device)
}

// Unwrap returns the underlying error.
func (e *AcquireError) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the platform reason from an acquisition error.
// Returns ReasonUnknown for errors that did not originate here.
func ReasonOf(err error) Reason {
	var ae *AcquireError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	return ReasonUnknown
}
