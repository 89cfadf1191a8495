package encode

import "errors"

// Sentinel errors for the encode taxonomy. These are disjoint from the
// capture taxonomy: a failure is classified at the layer it originates
// in and never re-wrapped across layers.
var (
	// ErrUnsupportedFormat is returned when the source bytes cannot be
	// decoded as an image.
	ErrUnsupportedFormat = errors.New("encode: unsupported image format")

	// ErrBackendUnavailable is returned when the encoder cannot produce
	// output bytes.
	ErrBackendUnavailable = errors.New("encode: encoder backend unavailable")

	// ErrNilFrame is returned when encoding a nil frame.
	ErrNilFrame = errors.New("encode: nil frame")
)
