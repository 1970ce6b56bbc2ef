package hub

import (
	"context"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("Condition not reached in time")
}

func TestHub_RunLifecycle(t *testing.T) {
	h := New("status")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	waitFor(t, h.IsRunning)

	cancel()
	<-done
	if h.IsRunning() {
		t.Error("IsRunning after Run returned: got true, want false")
	}
}

func TestHub_BroadcastReachesClients(t *testing.T) {
	h := New("status")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := &Client{hub: h, send: make(chan Message, 4)}
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	if err := h.BroadcastJSON(map[string]int{"n": 1}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}
	select {
	case msg := <-c.send:
		if msg.Type != JSONMessage {
			t.Errorf("Message type: got %v, want JSON", msg.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast never reached the client")
	}
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := New("status")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	// Unbuffered and never read: the first broadcast cannot be queued
	c := &Client{hub: h, send: make(chan Message)}
	h.register <- c
	waitFor(t, func() bool { return h.ClientCount() == 1 })

	h.BroadcastBinary([]byte{0x1})
	waitFor(t, func() bool { return h.ClientCount() == 0 })

	if _, ok := <-c.send; ok {
		t.Error("Send channel still open after the drop")
	}
}
