package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cellarview/go-cellarcam/pkg/device"
)

func newMockManager(t *testing.T, opts ...device.MockOption) (*Manager, *device.MockProvider) {
	t.Helper()
	provider := device.NewMockProvider(device.DefaultConfig(), nil, opts...)
	return NewManager(provider, nil), provider
}

func TestManager_OpenReady(t *testing.T) {
	m, provider := newMockManager(t)

	session, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if session.Status() != StatusReady {
		t.Errorf("Expected Ready status, got %s", session.Status())
	}
	if !session.MultiDevice() {
		t.Error("Expected multi-device with two mock cameras")
	}
	if session.Facing != device.FacingEnvironment {
		t.Errorf("Expected environment facing, got %s", session.Facing)
	}

	m.Close(session)

	for i, s := range provider.Granted() {
		if !s.Stopped() {
			t.Errorf("Stream %d still active after close", i)
		}
	}
	if session.Status() != StatusIdle {
		t.Errorf("Expected Idle after close, got %s", session.Status())
	}
}

func TestManager_CloseIdempotent(t *testing.T) {
	m, _ := newMockManager(t)

	session, err := m.Open(context.Background(), device.FacingUser)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	m.Close(session)
	status := session.Status()

	// Second close must be a no-op with no state change.
	m.Close(session)
	if session.Status() != status {
		t.Errorf("Second close changed status: %s -> %s", status, session.Status())
	}

	// Closing nil is safe too.
	m.Close(nil)
}

func TestManager_ClosedSessionIsTerminal(t *testing.T) {
	m, _ := newMockManager(t)

	session, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	m.Close(session)

	// A fresh open produces a new identity; the old session stays Idle.
	session2, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	defer m.Close(session2)

	if session2.ID == session.ID {
		t.Error("Expected a new session identity after close")
	}
	if session.Status() != StatusIdle {
		t.Errorf("Closed session transitioned again: %s", session.Status())
	}
}

func TestManager_OpenReplacesPriorSession(t *testing.T) {
	m, provider := newMockManager(t)

	first, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("First open failed: %v", err)
	}

	second, err := m.Open(context.Background(), device.FacingUser)
	if err != nil {
		t.Fatalf("Second open failed: %v", err)
	}
	defer m.Close(second)

	if first.Status() != StatusIdle {
		t.Errorf("Prior session not closed, status %s", first.Status())
	}

	granted := provider.Granted()
	if len(granted) != 2 {
		t.Fatalf("Expected 2 granted streams, got %d", len(granted))
	}
	if !granted[0].Stopped() {
		t.Error("Superseded stream still active")
	}
	if granted[1].Stopped() {
		t.Error("Current stream should be live")
	}
}

func TestManager_SwitchFacing(t *testing.T) {
	m, provider := newMockManager(t)

	session, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	flipped, err := m.SwitchFacing(context.Background())
	if err != nil {
		t.Fatalf("SwitchFacing failed: %v", err)
	}
	defer m.Close(flipped)

	if flipped.Facing != device.FacingUser {
		t.Errorf("Expected user facing after flip, got %s", flipped.Facing)
	}
	if flipped.ID == session.ID {
		t.Error("Flip must produce a new session identity")
	}
	if session.Status() != StatusIdle {
		t.Errorf("Old session not torn down, status %s", session.Status())
	}

	granted := provider.Granted()
	if !granted[0].Stopped() {
		t.Error("Pre-flip stream still active")
	}
}

func TestManager_SwitchFacingWithoutSession(t *testing.T) {
	m, _ := newMockManager(t)

	if _, err := m.SwitchFacing(context.Background()); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession, got %v", err)
	}
}

func TestManager_RapidSwitchesLeaveOneStream(t *testing.T) {
	m, provider := newMockManager(t, device.WithAcquireDelay(30*time.Millisecond))

	var wg sync.WaitGroup
	facings := []device.Facing{
		device.FacingEnvironment,
		device.FacingUser,
		device.FacingEnvironment,
		device.FacingUser,
	}
	for _, f := range facings {
		wg.Add(1)
		go func(facing device.Facing) {
			defer wg.Done()
			m.Open(context.Background(), facing)
		}(f)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	live := 0
	for _, s := range provider.Granted() {
		if !s.Stopped() {
			live++
			if s.Descriptor().Facing != device.FacingUser {
				t.Errorf("Surviving stream has wrong facing %s", s.Descriptor().Facing)
			}
		}
	}
	if live > 1 {
		t.Errorf("Expected at most one live stream, got %d", live)
	}

	session := m.Session()
	if session != nil && session.Status() == StatusReady && live != 1 {
		t.Error("Ready session without a live stream")
	}

	m.Shutdown()
	for i, s := range provider.Granted() {
		if !s.Stopped() {
			t.Errorf("Stream %d leaked after shutdown", i)
		}
	}
}

func TestManager_PermissionDenied(t *testing.T) {
	m, _ := newMockManager(t, device.WithAcquireRejection(device.ReasonNotAllowed))

	_, err := m.Open(context.Background(), device.FacingEnvironment)
	if err == nil {
		t.Fatal("Expected open to fail")
	}
	if KindOf(err) != KindPermissionDenied {
		t.Errorf("Expected PermissionDenied kind, got %s", KindOf(err))
	}

	session := m.Session()
	if session == nil {
		t.Fatal("Expected failed session to remain current")
	}
	if session.Status() != StatusFailed {
		t.Errorf("Expected Failed status, got %s", session.Status())
	}
}

func TestManager_ShutdownDuringPendingOpen(t *testing.T) {
	m, provider := newMockManager(t, device.WithAcquireDelay(100*time.Millisecond))

	type result struct {
		session *Session
		err     error
	}
	done := make(chan result, 1)
	go func() {
		s, err := m.Open(context.Background(), device.FacingEnvironment)
		done <- result{s, err}
	}()

	time.Sleep(20 * time.Millisecond)
	m.Shutdown()

	res := <-done
	if !errors.Is(res.err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded, got %v", res.err)
	}
	if res.session != nil {
		t.Error("Discarded open must not return a session")
	}

	// The late-arriving stream must have been stopped, not attached.
	for i, s := range provider.Granted() {
		if !s.Stopped() {
			t.Errorf("Stream %d leaked after discarded open", i)
		}
	}
	if m.Session() != nil {
		t.Error("No session may be current after shutdown")
	}
}

func TestManager_ContextCanceledDuringOpen(t *testing.T) {
	m, provider := newMockManager(t, device.WithAcquireDelay(100*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := m.Open(ctx, device.FacingEnvironment)
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("Expected ErrSuperseded on canceled open, got %v", err)
	}

	if m.Session() != nil {
		t.Error("Manager still holds a session after canceled open")
	}

	for i, s := range provider.Granted() {
		if !s.Stopped() {
			t.Errorf("Stream %d leaked after canceled open", i)
		}
	}
}

func TestManager_EnumerationFailureIsNonFatal(t *testing.T) {
	m, _ := newMockManager(t, device.WithEnumerateFailure(errors.New("usb enumeration broken")))

	session, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("Open should survive enumeration failure: %v", err)
	}
	defer m.Close(session)

	if session.Status() != StatusReady {
		t.Errorf("Expected Ready, got %s", session.Status())
	}
	if session.MultiDevice() {
		t.Error("Flip affordance must be disabled when enumeration fails")
	}
}

func TestManager_GrabFrame(t *testing.T) {
	m, _ := newMockManager(t, device.WithFrameSize(640, 480))

	session, err := m.Open(context.Background(), device.FacingEnvironment)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	frame, err := m.GrabFrame(context.Background(), session)
	if err != nil {
		t.Fatalf("GrabFrame failed: %v", err)
	}
	if frame.Bounds().Dx() != 640 || frame.Bounds().Dy() != 480 {
		t.Errorf("Expected native 640x480 frame, got %v", frame.Bounds())
	}

	// A session serves multiple grabs without stopping.
	if _, err := m.GrabFrame(context.Background(), session); err != nil {
		t.Fatalf("Second GrabFrame failed: %v", err)
	}
	if session.Status() != StatusReady {
		t.Errorf("Grab must not change status, got %s", session.Status())
	}

	m.Close(session)
	if _, err := m.GrabFrame(context.Background(), session); !errors.Is(err, ErrNotReady) {
		t.Errorf("Expected ErrNotReady after close, got %v", err)
	}

	if _, err := m.GrabFrame(context.Background(), nil); !errors.Is(err, ErrNoSession) {
		t.Errorf("Expected ErrNoSession for nil session, got %v", err)
	}
}
