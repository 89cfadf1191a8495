package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	xdraw "golang.org/x/image/draw"

	// Decoders for the normalize path.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// EncodeFrame renders a live frame at native resolution into an
// off-screen surface and encodes it as JPEG at the given quality
// (1-100). The capture path uses a high quality since label photos feed
// downstream recognition.
func EncodeFrame(frame image.Image, quality int, sourceName string) (Artifact, error) {
	if frame == nil {
		return Artifact{}, ErrNilFrame
	}

	bounds := frame.Bounds()
	surface := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(surface, surface.Bounds(), frame, bounds.Min, draw.Src)

	return encodeJPEG(surface, quality, sourceName)
}

// Normalize decodes arbitrary source bytes (JPEG, PNG, GIF, WebP),
// computes a resize plan bounded by maxEdge, renders into a surface of
// the planned size with high-quality smoothing, and encodes as JPEG at
// the given quality. Images within the bound pass through at their
// natural size; nothing is ever upscaled.
func Normalize(src []byte, maxEdge, quality int, sourceName string) (Artifact, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return Artifact{}, fmt.Errorf("%w: %s: %v", ErrUnsupportedFormat, sourceName, err)
	}

	bounds := img.Bounds()
	plan := PlanResize(bounds.Dx(), bounds.Dy(), maxEdge)

	surface := image.NewRGBA(image.Rect(0, 0, plan.TargetWidth, plan.TargetHeight))
	if plan.Identity(bounds.Dx(), bounds.Dy()) {
		draw.Draw(surface, surface.Bounds(), img, bounds.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(surface, surface.Bounds(), img, bounds, xdraw.Src, nil)
	}

	return encodeJPEG(surface, quality, sourceName)
}

// encodeJPEG compresses a surface into an Artifact. Each call uses its
// own buffer; nothing is shared between in-flight encodes.
func encodeJPEG(surface *image.RGBA, quality int, sourceName string) (Artifact, error) {
	if quality < 1 {
		quality = 1
	} else if quality > 100 {
		quality = 100
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, surface, &jpeg.Options{Quality: quality}); err != nil {
		return Artifact{}, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	out := buf.Bytes()
	return Artifact{
		Bytes:      out,
		MIMEType:   MIMEJPEG,
		Width:      surface.Bounds().Dx(),
		Height:     surface.Bounds().Dy(),
		SizeBytes:  len(out),
		SourceName: sourceName,
	}, nil
}
