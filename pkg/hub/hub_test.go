package hub

import (
	"testing"
	"time"
)

func waitForClients(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.ClientCount() != want {
		if time.Now().After(deadline) {
			t.Fatalf("ClientCount() = %d, want %d", h.ClientCount(), want)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := New("test")
	go h.Run()

	c := &Client{hub: h, send: make(chan Message, 1)}
	h.register <- c
	waitForClients(t, h, 1)

	h.unregister <- c
	waitForClients(t, h, 0)

	if _, ok := <-c.send; ok {
		t.Error("send channel not closed on unregister")
	}
}

func TestHub_BroadcastReachesClient(t *testing.T) {
	h := New("test")
	go h.Run()

	c := &Client{hub: h, send: make(chan Message, 1)}
	h.register <- c
	waitForClients(t, h, 1)

	h.BroadcastBinary([]byte{0xff, 0xd8})

	select {
	case msg := <-c.send:
		if msg.Type != BinaryMessage {
			t.Errorf("message type = %v, want binary", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

// A client whose send buffer never drains must be dropped, and that drop
// must be safe against concurrent ClientCount readers — the preview loop
// polls the count on every tick.
func TestHub_DropsSlowClientDuringCountPolling(t *testing.T) {
	h := New("test")
	go h.Run()

	slow := &Client{hub: h, send: make(chan Message)}
	h.register <- slow
	waitForClients(t, h, 1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			h.ClientCount()
		}
	}()

	for i := 0; i < 10; i++ {
		h.BroadcastBinary([]byte{byte(i)})
	}

	<-done
	waitForClients(t, h, 0)

	if _, ok := <-slow.send; ok {
		t.Error("send channel not closed when client was dropped")
	}
}
