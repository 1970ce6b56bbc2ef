package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/drixpyyy/aimcore/pkg/detect"
	"github.com/drixpyyy/aimcore/pkg/geom"
	"github.com/drixpyyy/aimcore/pkg/screen"
)

// captureSink records status updates and events for verification.
type captureSink struct {
	mu     sync.Mutex
	aims   []AimStatus
	events []string // kind strings
}

func (c *captureSink) UpdateAim(s AimStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aims = append(c.aims, s)
}

func (c *captureSink) AddEvent(kind, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, kind)
}

func (c *captureSink) eventCount(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range c.events {
		if k == kind {
			n++
		}
	}
	return n
}

func (c *captureSink) lastAim() (AimStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.aims) == 0 {
		return AimStatus{}, false
	}
	return c.aims[len(c.aims)-1], true
}

func testScheduler(md *detect.Mock) (*Scheduler, *Store, *Registry, *screen.MockSource, *captureSink) {
	cfg := DefaultConfig()
	cfg.DetectionInterval = 10 * time.Millisecond
	cfg.IdleBackoff = 10 * time.Millisecond

	store := NewStore(cfg)
	reg := NewRegistry()
	source := &screen.MockSource{}
	geometry := screen.StaticGeometry{Rect: geom.Rect{W: 640, H: 480}}

	s := NewScheduler(store, md, source, geometry, reg)
	sink := &captureSink{}
	s.SetStatusSink(sink)
	return s, store, reg, source, sink
}

// waitState polls until the scheduler reaches the wanted state or the
// timeout expires.
func waitState(t *testing.T, s *Scheduler, want SchedulerState, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Scheduler state: got %v, want %v", s.State(), want)
}

func TestScheduler_SingleCycleInFlight(t *testing.T) {
	md := detect.NewMock()
	md.Block = make(chan struct{})
	s, store, _, _, _ := testScheduler(md)
	cfg := store.Get()
	ctx := context.Background()

	s.tick(ctx, cfg)
	if got := md.WaitCalls(1, time.Second); got != 1 {
		t.Fatalf("First tick: got %d detector calls, want 1", got)
	}
	if s.State() != SchedulerInFlight {
		t.Fatalf("State after first tick: got %v, want in-flight", s.State())
	}

	// A tick while the cycle is outstanding must not issue a new request
	s.tick(ctx, cfg)
	s.tick(ctx, cfg)
	if got := md.Calls(); got != 1 {
		t.Errorf("Ticks while in flight: got %d detector calls, want 1", got)
	}

	close(md.Block)
	waitState(t, s, SchedulerIdle, time.Second)

	// Resolved: the next tick may start a fresh cycle
	s.tick(ctx, cfg)
	if got := md.WaitCalls(2, time.Second); got != 2 {
		t.Errorf("Tick after resolution: got %d detector calls, want 2", got)
	}
}

func TestScheduler_SourceUnavailable(t *testing.T) {
	md := detect.NewMock()
	s, store, _, source, _ := testScheduler(md)
	source.Paused = true

	next := s.tick(context.Background(), store.Get())
	if md.Calls() != 0 {
		t.Errorf("Paused source: got %d detector calls, want 0", md.Calls())
	}
	if next != store.Get().IdleBackoff {
		t.Errorf("Paused source: next interval %v, want the idle backoff", next)
	}
}

func TestScheduler_FrameFailure(t *testing.T) {
	md := detect.NewMock()
	s, store, _, source, sink := testScheduler(md)
	source.FrameFunc = func() (*screen.Frame, error) {
		return nil, screen.ErrSourceUnavailable
	}

	s.tick(context.Background(), store.Get())
	if md.Calls() != 0 {
		t.Errorf("Frame failure: got %d detector calls, want 0", md.Calls())
	}
	if sink.eventCount("frame_failed") != 1 {
		t.Error("Frame failure must surface as an event")
	}
}

func TestScheduler_FatalDetectorStops(t *testing.T) {
	md := detect.NewMock()
	md.DetectFunc = func(context.Context, []byte, int) ([]detect.Detection, error) {
		return nil, detect.ErrUnavailable
	}
	s, store, _, _, sink := testScheduler(md)
	cfg := store.Get()
	ctx := context.Background()

	s.tick(ctx, cfg)
	waitState(t, s, SchedulerStopped, time.Second)
	if sink.eventCount("detector_unavailable") != 1 {
		t.Error("Fatal detector error must surface as an event")
	}

	// Stopped: ticks do nothing
	s.tick(ctx, cfg)
	time.Sleep(10 * time.Millisecond)
	if got := md.Calls(); got != 1 {
		t.Errorf("Ticks while stopped: got %d detector calls, want 1", got)
	}

	// Restart resumes cycles
	s.Restart()
	if s.State() != SchedulerIdle {
		t.Fatalf("State after restart: got %v, want idle", s.State())
	}
	s.tick(ctx, cfg)
	if got := md.WaitCalls(2, time.Second); got != 2 {
		t.Errorf("Tick after restart: got %d detector calls, want 2", got)
	}
}

func TestScheduler_RecoverableFailureStaysIdle(t *testing.T) {
	md := detect.NewMock()
	md.DetectFunc = func(context.Context, []byte, int) ([]detect.Detection, error) {
		return nil, detect.WrapError("http", errors.New("boom"))
	}
	s, store, _, _, sink := testScheduler(md)

	s.tick(context.Background(), store.Get())
	waitState(t, s, SchedulerIdle, time.Second)
	if sink.eventCount("cycle_failed") != 1 {
		t.Error("Recoverable failure must surface as an event")
	}
}

func TestScheduler_TimeoutAbandonsAndDiscardsLateResponse(t *testing.T) {
	md := detect.NewMock()
	md.Block = make(chan struct{})
	s, store, reg, _, sink := testScheduler(md)
	store.Update(func(cfg *Config) { cfg.CycleTimeout = 5 * time.Millisecond })
	cfg := store.Get()
	ctx := context.Background()

	s.tick(ctx, cfg)
	if got := md.WaitCalls(1, time.Second); got != 1 {
		t.Fatalf("First tick: got %d detector calls, want 1", got)
	}

	time.Sleep(10 * time.Millisecond)

	// Past the timeout: the tick abandons the lost cycle
	s.tick(ctx, cfg)
	if s.State() != SchedulerIdle {
		t.Fatalf("State after timeout: got %v, want idle", s.State())
	}
	if sink.eventCount("cycle_timeout") != 1 {
		t.Error("Timeout must surface as an event")
	}

	// A fresh cycle starts
	s.tick(ctx, cfg)
	if got := md.WaitCalls(2, time.Second); got != 2 {
		t.Fatalf("Tick after timeout: got %d detector calls, want 2", got)
	}

	// Release both: the stale response is discarded, the fresh one
	// publishes exactly one snapshot
	close(md.Block)
	waitState(t, s, SchedulerIdle, time.Second)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if reg.Latest() != nil {
			break
		}
		time.Sleep(time.Millisecond)
	}
	snap := reg.Latest()
	if snap == nil {
		t.Fatal("Fresh cycle never published")
	}
	if snap.Version != 1 {
		t.Errorf("Snapshot version: got %d, want 1 (late response must not publish)", snap.Version)
	}
}

func TestScheduler_CancelledContextIsSilent(t *testing.T) {
	md := detect.NewMock()
	md.Block = make(chan struct{})
	s, store, reg, _, _ := testScheduler(md)
	ctx, cancel := context.WithCancel(context.Background())

	s.tick(ctx, store.Get())
	if got := md.WaitCalls(1, time.Second); got != 1 {
		t.Fatalf("First tick: got %d detector calls, want 1", got)
	}

	cancel()
	close(md.Block)
	waitState(t, s, SchedulerIdle, time.Second)
	if reg.Latest() != nil {
		t.Error("Cycle resolving after cancellation must not publish")
	}
}
