package capture

import (
	"errors"
	"fmt"

	"github.com/cellarview/go-cellarcam/pkg/device"
)

// Sentinel errors for session misuse.
var (
	// ErrNoSession is returned when an operation needs an active session.
	ErrNoSession = errors.New("capture: no active session")

	// ErrNotReady is returned when grabbing a frame from a session that
	// is not in the Ready state.
	ErrNotReady = errors.New("capture: session not ready")

	// ErrSuperseded is returned to an Open call whose result was
	// discarded because a newer request or a close arrived first.
	// It is not a failure of the newer request and must not be
	// surfaced to error callbacks.
	ErrSuperseded = errors.New("capture: request superseded")
)

// Kind classifies a device negotiation failure.
type Kind string

const (
	// KindPermissionDenied means camera access was refused.
	KindPermissionDenied Kind = "permission_denied"

	// KindDeviceNotFound means no camera matched the request.
	KindDeviceNotFound Kind = "device_not_found"

	// KindDeviceBusy means the camera is held by another consumer.
	KindDeviceBusy Kind = "device_busy"

	// KindConstraintUnsatisfiable means the requested constraints cannot
	// be met by any available camera.
	KindConstraintUnsatisfiable Kind = "constraint_unsatisfiable"

	// KindUnknown covers every other device failure.
	KindUnknown Kind = "unknown"
)

// CaptureError is a terminal device negotiation failure.
// The manager never retries; presenting a retry affordance is the
// caller's decision.
type CaptureError struct {
	// Kind is the stable failure classification.
	Kind Kind

	// Message is a human-readable detail string.
	Message string

	// Err is the underlying device error, if any.
	Err error
}

// Error implements the error interface.
func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture [%s]: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("capture [%s]: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Classify translates a device acquisition failure into a CaptureError.
// Every rejection reason maps to exactly one kind.
func Classify(err error) *CaptureError {
	switch device.ReasonOf(err) {
	case device.ReasonNotAllowed:
		return &CaptureError{Kind: KindPermissionDenied, Message: "camera access was refused", Err: err}
	case device.ReasonNotFound:
		return &CaptureError{Kind: KindDeviceNotFound, Message: "no matching camera found", Err: err}
	case device.ReasonNotReadable:
		return &CaptureError{Kind: KindDeviceBusy, Message: "camera is in use by another application", Err: err}
	case device.ReasonOverconstrained:
		return &CaptureError{Kind: KindConstraintUnsatisfiable, Message: "requested camera constraints cannot be satisfied", Err: err}
	default:
		return &CaptureError{Kind: KindUnknown, Message: "camera could not be opened", Err: err}
	}
}

// KindOf extracts the failure kind from an error.
// Returns KindUnknown for errors that did not originate here.
func KindOf(err error) Kind {
	var ce *CaptureError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}
