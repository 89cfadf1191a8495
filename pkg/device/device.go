// Package device provides access to video input devices.
//
// This package supports multiple backends:
//   - GoCV (OpenCV) - Production use against real cameras (V4L2, AVFoundation)
//   - Mock - CI/Testing without hardware
//
// The backend is selected automatically based on platform, or can be
// explicitly specified via configuration. Consumers depend only on the
// Provider and Stream contracts, never on a concrete backend.
package device

import (
	"context"
	"fmt"
	"image"
)

// Facing identifies which physical camera a stream targets.
type Facing string

const (
	// FacingEnvironment is the rear, world-facing camera.
	FacingEnvironment Facing = "environment"
	// FacingUser is the front, user-facing camera.
	FacingUser Facing = "user"
)

// Opposite returns the other facing direction.
func (f Facing) Opposite() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

// ParseFacing converts a string to a Facing value.
func ParseFacing(s string) (Facing, error) {
	switch Facing(s) {
	case FacingEnvironment, FacingUser:
		return Facing(s), nil
	}
	return "", fmt.Errorf("device: unknown facing direction %q", s)
}

// Descriptor describes one available video input device.
type Descriptor struct {
	// ID is the backend-specific device identifier.
	ID string `json:"id"`

	// Label is a human-readable device name.
	Label string `json:"label"`

	// Facing is the direction this device points, if known.
	Facing Facing `json:"facing"`
}

// Constraints describes a requested stream.
// Width and height are resolution hints, not hard requirements.
type Constraints struct {
	Facing      Facing
	IdealWidth  int
	IdealHeight int
}

// Stream is a live handle to an open video input device.
// A stream is exclusively owned by whoever acquired it; nothing else
// may read from or stop it.
type Stream interface {
	// ReadFrame returns the current frame at native resolution.
	// Returns ErrStreamStopped after Stop has been called.
	ReadFrame(ctx context.Context) (image.Image, error)

	// Stop releases the underlying device.
	// It is safe to call Stop multiple times.
	Stop() error

	// Stopped reports whether the stream has been stopped.
	Stopped() bool

	// Descriptor returns the device this stream was opened on.
	Descriptor() Descriptor
}

// Provider is the capability boundary for video input hardware.
type Provider interface {
	// EnumerateVideoInputs lists the available video input devices.
	EnumerateVideoInputs(ctx context.Context) ([]Descriptor, error)

	// AcquireStream opens a device matching the given constraints.
	// Rejections carry an *AcquireError with a platform Reason.
	AcquireStream(ctx context.Context, c Constraints) (Stream, error)

	// Name returns the backend name (e.g., "gocv", "mock").
	Name() string
}
