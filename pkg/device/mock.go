package device

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// MockProvider is a mock device provider for testing.
// It hands out synthetic streams and remembers every stream it has
// granted, so tests can assert that superseded streams were stopped.
type MockProvider struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	devices  []Descriptor
	granted  []*MockStream
	acquires atomic.Int64

	// Fault injection
	acquireDelay time.Duration
	rejectReason Reason
	enumerateErr error

	// Synthetic frame generation
	frameWidth  int
	frameHeight int
}

// MockOption configures a MockProvider.
type MockOption func(*MockProvider)

// WithDevices overrides the set of enumerable devices.
func WithDevices(devices ...Descriptor) MockOption {
	return func(m *MockProvider) {
		m.devices = devices
	}
}

// WithAcquireDelay makes every acquisition take the given time,
// simulating slow device negotiation.
func WithAcquireDelay(d time.Duration) MockOption {
	return func(m *MockProvider) {
		m.acquireDelay = d
	}
}

// WithAcquireRejection makes every acquisition fail with the given
// platform reason.
func WithAcquireRejection(reason Reason) MockOption {
	return func(m *MockProvider) {
		m.rejectReason = reason
	}
}

// WithEnumerateFailure makes enumeration fail with the given error.
func WithEnumerateFailure(err error) MockOption {
	return func(m *MockProvider) {
		m.enumerateErr = err
	}
}

// WithFrameSize sets the dimensions of generated frames.
func WithFrameSize(width, height int) MockOption {
	return func(m *MockProvider) {
		m.frameWidth = width
		m.frameHeight = height
	}
}

// NewMockProvider creates a new mock device provider.
func NewMockProvider(cfg Config, logger *slog.Logger, opts ...MockOption) *MockProvider {
	if logger == nil {
		logger = slog.Default()
	}

	m := &MockProvider{
		cfg:    cfg,
		logger: logger,
		devices: []Descriptor{
			{ID: "mock-env", Label: "mock environment camera", Facing: FacingEnvironment},
			{ID: "mock-user", Label: "mock user camera", Facing: FacingUser},
		},
		frameWidth:  640,
		frameHeight: 480,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// EnumerateVideoInputs lists the configured mock devices.
func (m *MockProvider) EnumerateVideoInputs(ctx context.Context) ([]Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.enumerateErr != nil {
		return nil, m.enumerateErr
	}

	out := make([]Descriptor, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

// AcquireStream hands out a synthetic stream for the requested facing.
func (m *MockProvider) AcquireStream(ctx context.Context, c Constraints) (Stream, error) {
	m.acquires.Add(1)

	m.mu.Lock()
	delay := m.acquireDelay
	reject := m.rejectReason
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if reject != "" {
		return nil, &AcquireError{Reason: reject, Device: string(c.Facing)}
	}

	desc, ok := m.deviceFor(c.Facing)
	if !ok {
		return nil, &AcquireError{Reason: ReasonNotFound, Device: string(c.Facing)}
	}

	s := &MockStream{
		desc:   desc,
		width:  m.frameWidth,
		height: m.frameHeight,
	}

	m.mu.Lock()
	m.granted = append(m.granted, s)
	m.mu.Unlock()

	m.logger.Debug("mock stream acquired", "device", desc.ID)
	return s, nil
}

func (m *MockProvider) deviceFor(f Facing) (Descriptor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.devices {
		if d.Facing == f {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Name returns "mock".
func (m *MockProvider) Name() string {
	return "mock"
}

// Granted returns every stream this provider has handed out, in order.
func (m *MockProvider) Granted() []*MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*MockStream, len(m.granted))
	copy(out, m.granted)
	return out
}

// Acquires returns the total number of acquisition attempts.
func (m *MockProvider) Acquires() int64 {
	return m.acquires.Load()
}

// MockStream is a synthetic video stream.
type MockStream struct {
	desc   Descriptor
	width  int
	height int

	mu      sync.Mutex
	stopped bool
	frames  atomic.Int64
}

// ReadFrame returns a synthetic gray frame at the configured size.
func (s *MockStream) ReadFrame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, ErrStreamStopped
	}

	img := image.NewRGBA(image.Rect(0, 0, s.width, s.height))
	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetRGBA(x, y, gray)
		}
	}

	s.frames.Add(1)
	return img, nil
}

// Stop marks the stream stopped. Safe to call multiple times.
func (s *MockStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	return nil
}

// Stopped reports whether the stream has been stopped.
func (s *MockStream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Descriptor returns the mock device descriptor.
func (s *MockStream) Descriptor() Descriptor {
	return s.desc
}

// FramesRead returns the number of frames read from this stream.
func (s *MockStream) FramesRead() int64 {
	return s.frames.Load()
}

// Ensure interfaces are implemented.
var (
	_ Provider = (*MockProvider)(nil)
	_ Stream   = (*MockStream)(nil)
)
