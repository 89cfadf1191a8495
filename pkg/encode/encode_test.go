package encode

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

// testImage builds a gradient so JPEG has real content to compress.
func testImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x * 255 / width),
				G: uint8(y * 255 / height),
				B: uint8((x + y) % 256),
				A: 0xFF,
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func encodeSourceJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestEncodeFrame(t *testing.T) {
	artifact, err := EncodeFrame(testImage(640, 480), 92, "label-test.jpg")
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}

	if artifact.MIMEType != MIMEJPEG {
		t.Errorf("Expected %s, got %s", MIMEJPEG, artifact.MIMEType)
	}
	if artifact.Width != 640 || artifact.Height != 480 {
		t.Errorf("Expected native 640x480, got %dx%d", artifact.Width, artifact.Height)
	}
	if artifact.SizeBytes == 0 || artifact.SizeBytes != len(artifact.Bytes) {
		t.Errorf("SizeBytes %d inconsistent with payload %d", artifact.SizeBytes, len(artifact.Bytes))
	}
	if artifact.SourceName != "label-test.jpg" {
		t.Errorf("Unexpected source name %s", artifact.SourceName)
	}

	// Output must decode back as a JPEG of the same size.
	decoded, err := jpeg.Decode(bytes.NewReader(artifact.Bytes))
	if err != nil {
		t.Fatalf("Artifact is not valid JPEG: %v", err)
	}
	if decoded.Bounds().Dx() != 640 || decoded.Bounds().Dy() != 480 {
		t.Errorf("Decoded size %v", decoded.Bounds())
	}
}

func TestEncodeFrame_NilFrame(t *testing.T) {
	if _, err := EncodeFrame(nil, 92, "x.jpg"); !errors.Is(err, ErrNilFrame) {
		t.Errorf("Expected ErrNilFrame, got %v", err)
	}
}

func TestNormalize_Downscale(t *testing.T) {
	src := encodeSourceJPEG(t, testImage(4000, 3000))

	artifact, err := Normalize(src, 512, 80, "avatar.jpg")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if artifact.Width != 512 || artifact.Height != 384 {
		t.Errorf("Expected 512x384, got %dx%d", artifact.Width, artifact.Height)
	}
	if artifact.MIMEType != MIMEJPEG {
		t.Errorf("MIME type must be fixed, got %s", artifact.MIMEType)
	}

	// Compressed output must beat a naive uncompressed raster.
	rawRaster := 512 * 384 * 3
	if artifact.SizeBytes == 0 || artifact.SizeBytes >= rawRaster {
		t.Errorf("Expected 0 < size < %d, got %d", rawRaster, artifact.SizeBytes)
	}
}

func TestNormalize_IdentityWithinBound(t *testing.T) {
	src := encodePNG(t, testImage(300, 200))

	artifact, err := Normalize(src, 512, 80, "small.png")
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if artifact.Width != 300 || artifact.Height != 200 {
		t.Errorf("Within-bound image must keep its size, got %dx%d", artifact.Width, artifact.Height)
	}
}

func TestNormalize_PNGSource(t *testing.T) {
	src := encodePNG(t, testImage(1024, 768))

	artifact, err := Normalize(src, 512, 80, "upload.png")
	if err != nil {
		t.Fatalf("Normalize failed on PNG source: %v", err)
	}
	if artifact.Width != 512 || artifact.Height != 384 {
		t.Errorf("Expected 512x384, got %dx%d", artifact.Width, artifact.Height)
	}
}

func TestNormalize_UnsupportedFormat(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"), 512, 80, "junk.bin")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNormalize_QualityAffectsSize(t *testing.T) {
	src := encodeSourceJPEG(t, testImage(2000, 1500))

	high, err := Normalize(src, 512, 95, "q95.jpg")
	if err != nil {
		t.Fatalf("Normalize q95 failed: %v", err)
	}
	low, err := Normalize(src, 512, 40, "q40.jpg")
	if err != nil {
		t.Fatalf("Normalize q40 failed: %v", err)
	}

	if low.SizeBytes >= high.SizeBytes {
		t.Errorf("Lower quality should shrink output: q40=%d q95=%d", low.SizeBytes, high.SizeBytes)
	}
}
