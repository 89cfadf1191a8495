package device

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// gocvProvider opens cameras through OpenCV video capture.
type gocvProvider struct {
	cfg    Config
	logger *slog.Logger
}

func newGoCVProvider(cfg Config, logger *slog.Logger) (*gocvProvider, error) {
	return &gocvProvider{cfg: cfg, logger: logger}, nil
}

// EnumerateVideoInputs probes the configured camera indexes.
// OpenCV has no enumeration API, so each index is opened briefly and
// released again. A device held by another process still counts as
// present.
func (p *gocvProvider) EnumerateVideoInputs(ctx context.Context) ([]Descriptor, error) {
	probes := []struct {
		index  int
		facing Facing
	}{
		{p.cfg.EnvironmentIndex, FacingEnvironment},
		{p.cfg.UserIndex, FacingUser},
	}

	var devices []Descriptor
	for _, probe := range probes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cap, err := gocv.OpenVideoCapture(probe.index)
		if err != nil {
			continue
		}
		opened := cap.IsOpened()
		cap.Close()
		if !opened {
			continue
		}

		devices = append(devices, Descriptor{
			ID:     strconv.Itoa(probe.index),
			Label:  fmt.Sprintf("camera %d (%s)", probe.index, probe.facing),
			Facing: probe.facing,
		})
	}

	p.logger.Debug("enumerated video inputs", "count", len(devices))
	return devices, nil
}

// AcquireStream opens the camera index mapped to the requested facing.
func (p *gocvProvider) AcquireStream(ctx context.Context, c Constraints) (Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	index := p.cfg.IndexFor(c.Facing)
	id := strconv.Itoa(index)

	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, &AcquireError{Reason: ReasonNotFound, Device: id, Err: err}
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, &AcquireError{Reason: ReasonNotReadable, Device: id}
	}

	if c.IdealWidth > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(c.IdealWidth))
	}
	if c.IdealHeight > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(c.IdealHeight))
	}

	s := &gocvStream{
		cap: cap,
		mat: gocv.NewMat(),
		desc: Descriptor{
			ID:     id,
			Label:  fmt.Sprintf("camera %d (%s)", index, c.Facing),
			Facing: c.Facing,
		},
	}

	// Some V4L2 drivers need a few reads before delivering real frames.
	if err := s.warmup(ctx, p.cfg.WarmupTimeout); err != nil {
		s.Stop()
		return nil, &AcquireError{Reason: ReasonNotReadable, Device: id, Err: err}
	}

	p.logger.Info("stream acquired", "device", id, "facing", c.Facing)
	return s, nil
}

// Name returns "gocv".
func (p *gocvProvider) Name() string {
	return "gocv"
}

// gocvStream is a live OpenCV capture handle.
type gocvStream struct {
	desc Descriptor

	mu      sync.Mutex
	cap     *gocv.VideoCapture
	mat     gocv.Mat
	stopped bool
}

func (s *gocvStream) warmup(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		ok := s.cap.Read(&s.mat) && !s.mat.Empty()
		s.mu.Unlock()
		if ok {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return ErrNoFrame
}

// ReadFrame grabs and decodes the current frame.
func (s *gocvStream) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrStreamStopped
	}
	if !s.cap.Read(&s.mat) || s.mat.Empty() {
		return nil, ErrNoFrame
	}
	return s.mat.ToImage()
}

// Stop releases the device. Safe to call multiple times.
func (s *gocvStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}
	s.stopped = true
	s.mat.Close()
	return s.cap.Close()
}

// Stopped reports whether the stream has been stopped.
func (s *gocvStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Descriptor returns the device this stream was opened on.
func (s *gocvStream) Descriptor() Descriptor {
	return s.desc
}

// Ensure interfaces are implemented.
var (
	_ Provider = (*gocvProvider)(nil)
	_ Stream   = (*gocvStream)(nil)
)
