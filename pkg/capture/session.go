// Package capture manages the lifecycle of live camera capture sessions:
// device negotiation, exclusive stream ownership, and guaranteed release
// on every exit path, including requests whose results arrive after the
// consumer has moved on.
package capture

import (
	"sync"

	"github.com/google/uuid"

	"github.com/cellarview/go-cellarcam/pkg/device"
)

// Status is the lifecycle state of a capture session.
type Status string

const (
	// StatusIdle means the session has not started or has been closed.
	StatusIdle Status = "idle"
	// StatusInitializing means device negotiation is in flight.
	StatusInitializing Status = "initializing"
	// StatusReady means a live stream is attached.
	StatusReady Status = "ready"
	// StatusFailed means device negotiation failed terminally.
	StatusFailed Status = "failed"
)

// Session is one open camera stream. The stream is exclusively owned by
// the session; no other component may read or stop it directly.
//
// A session is terminal once closed: it never transitions again, and a
// fresh Open always produces a new session identity.
type Session struct {
	// ID uniquely identifies this session.
	ID string

	// Facing is the direction this session was opened with.
	Facing device.Facing

	mu     sync.Mutex
	stream device.Stream
	status Status
	multi  bool
	closed bool
}

func newSession(facing device.Facing) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Facing: facing,
		status: StatusInitializing,
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MultiDevice reports whether more than one camera was enumerated, so a
// flip affordance makes sense.
func (s *Session) MultiDevice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.multi
}

// Closed reports whether the session has been closed.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// attach transitions to Ready with a live stream.
// No-op if the session was closed while negotiation was in flight;
// the caller keeps ownership of the stream in that case.
func (s *Session) attach(stream device.Stream, multi bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.stream = stream
	s.multi = multi
	s.status = StatusReady
	return true
}

// fail transitions to Failed. No-op on a closed session.
func (s *Session) fail() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.status = StatusFailed
}

// close stops the stream and marks the session terminally closed.
// Idempotent: a second close is a no-op with no state change.
func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.status = StatusIdle
	stream := s.stream
	s.stream = nil
	s.mu.Unlock()

	if stream != nil {
		stream.Stop()
	}
}

// liveStream returns the attached stream if the session is Ready.
func (s *Session) liveStream() (device.Stream, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.status != StatusReady || s.stream == nil {
		return nil, false
	}
	return s.stream, true
}
