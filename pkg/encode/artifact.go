// Package encode turns live camera frames and user-supplied image files
// into bounded-size JPEG artifacts. It is a pure transform stage: no
// network or persistence calls originate here, and every call renders
// into its own off-screen surface.
package encode

// MIMEJPEG is the fixed MIME type of every produced artifact.
const MIMEJPEG = "image/jpeg"

// Artifact is the immutable result of one encode operation.
// Ownership transfers to the caller; nothing mutates it afterwards.
type Artifact struct {
	// Bytes is the compressed image payload.
	Bytes []byte

	// MIMEType is always "image/jpeg".
	MIMEType string

	// Width and Height are the encoded pixel dimensions.
	Width  int
	Height int

	// SizeBytes is len(Bytes), kept for callers that log or budget.
	SizeBytes int

	// SourceName names where the image came from (a capture session ID,
	// an uploaded filename).
	SourceName string
}
