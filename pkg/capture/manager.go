package capture

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/cellarview/go-cellarcam/pkg/device"
)

// Default resolution hints for label photography.
const (
	DefaultIdealWidth  = 1920
	DefaultIdealHeight = 1080
)

// Manager owns at most one live capture session at a time. Opening a new
// session always fully closes the prior one before a device request is
// issued, so two simultaneously granted hardware locks cannot occur.
//
// A result that arrives for a session that is no longer current (a newer
// Open replaced it, or the consumer closed it) is discarded: its stream
// is stopped immediately and no session state mutates. The discarded
// Open returns ErrSuperseded, which callers must not surface as a
// failure.
type Manager struct {
	provider device.Provider
	logger   *slog.Logger

	// IdealWidth and IdealHeight are resolution hints passed to the
	// device backend on every acquisition.
	IdealWidth  int
	IdealHeight int

	mu      sync.Mutex
	session *Session
}

// NewManager creates a session manager on top of a device provider.
func NewManager(provider device.Provider, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		provider:    provider,
		logger:      logger,
		IdealWidth:  DefaultIdealWidth,
		IdealHeight: DefaultIdealHeight,
	}
}

// Open negotiates a camera stream for the requested facing direction.
//
// Enumeration is best-effort: if it fails, the session still opens but
// reports MultiDevice false, disabling the flip affordance. Acquisition
// failures are terminal and classified into a CaptureError; the manager
// never retries on its own.
func (m *Manager) Open(ctx context.Context, facing device.Facing) (*Session, error) {
	session := newSession(facing)

	m.mu.Lock()
	prev := m.session
	m.session = session
	m.mu.Unlock()

	// Full teardown of any prior session before the new device request.
	if prev != nil {
		prev.close()
	}

	m.logger.Info("opening capture session", "session", session.ID, "facing", facing)

	multi := false
	devices, err := m.provider.EnumerateVideoInputs(ctx)
	if err != nil {
		m.logger.Warn("device enumeration failed, flip disabled", "error", err)
	} else {
		multi = len(devices) > 1
	}

	stream, err := m.provider.AcquireStream(ctx, device.Constraints{
		Facing:      facing,
		IdealWidth:  m.IdealWidth,
		IdealHeight: m.IdealHeight,
	})

	if !m.isCurrent(session) || session.Closed() {
		// Late arrival for a superseded request: stop the stream, touch
		// nothing, stay silent.
		if stream != nil {
			stream.Stop()
		}
		m.logger.Debug("discarding superseded open", "session", session.ID)
		return nil, ErrSuperseded
	}

	if ctx.Err() != nil {
		// The consumer lost interest while negotiation was in flight.
		if stream != nil {
			stream.Stop()
		}
		m.mu.Lock()
		if m.session == session {
			m.session = nil
		}
		m.mu.Unlock()
		session.close()
		return nil, ErrSuperseded
	}

	if err != nil {
		session.fail()
		cerr := Classify(err)
		m.logger.Error("capture session failed", "session", session.ID, "kind", cerr.Kind, "error", err)
		return nil, cerr
	}

	if !session.attach(stream, multi) {
		stream.Stop()
		return nil, ErrSuperseded
	}

	m.logger.Info("capture session ready",
		"session", session.ID,
		"device", stream.Descriptor().ID,
		"multi_device", multi,
	)
	return session, nil
}

// Close tears down a session: the stream is stopped and the reference
// cleared. Idempotent; closing an already-closed or foreign session is
// a no-op.
func (m *Manager) Close(session *Session) {
	if session == nil {
		return
	}

	m.mu.Lock()
	if m.session == session {
		m.session = nil
	}
	m.mu.Unlock()

	session.close()
	m.logger.Info("capture session closed", "session", session.ID)
}

// Shutdown closes whatever session is current. Any in-flight Open is
// invalidated and will discard its result on arrival.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	session := m.session
	m.session = nil
	m.mu.Unlock()

	if session != nil {
		session.close()
		m.logger.Info("capture session closed on shutdown", "session", session.ID)
	}
}

// SwitchFacing closes the current session and opens the opposite facing
// direction. The new session starts in Initializing, so callers can show
// a loading indication for the duration of the switch. Errors use the
// same taxonomy as Open.
func (m *Manager) SwitchFacing(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	session := m.session
	m.mu.Unlock()

	if session == nil {
		return nil, ErrNoSession
	}
	return m.Open(ctx, session.Facing.Opposite())
}

// GrabFrame captures the current frame at native resolution. The session
// keeps running; a session may serve multiple grabs.
func (m *Manager) GrabFrame(ctx context.Context, session *Session) (image.Image, error) {
	if session == nil {
		return nil, ErrNoSession
	}

	stream, ok := session.liveStream()
	if !ok {
		return nil, ErrNotReady
	}
	return stream.ReadFrame(ctx)
}

// Session returns the current session, or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

func (m *Manager) isCurrent(session *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session == session
}
