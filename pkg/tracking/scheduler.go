package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drixpyyy/aimcore/internal/log"
	"github.com/drixpyyy/aimcore/pkg/detect"
	"github.com/drixpyyy/aimcore/pkg/geom"
	"github.com/drixpyyy/aimcore/pkg/screen"
)

// SchedulerState is the detection scheduler's lifecycle state.
type SchedulerState int32

const (
	// SchedulerIdle means no cycle is in flight.
	SchedulerIdle SchedulerState = iota

	// SchedulerInFlight means a detector call is outstanding. New ticks
	// are skipped until it resolves or times out.
	SchedulerInFlight

	// SchedulerStopped means the detector failed fatally. No cycles run
	// until Restart.
	SchedulerStopped
)

// String returns the state name.
func (s SchedulerState) String() string {
	switch s {
	case SchedulerIdle:
		return "idle"
	case SchedulerInFlight:
		return "in-flight"
	case SchedulerStopped:
		return "stopped"
	}
	return "unknown"
}

// Scheduler runs the bounded-concurrency, rate-limited detection cycle:
// it pushes frames to the detector on its own clock and ingests results
// asynchronously without ever blocking the control loop. At most one
// detector call is in flight; extra ticks are skipped (backpressure by
// skipping, not queuing).
type Scheduler struct {
	config   *Store
	detector detect.Detector
	source   FrameSource
	geometry Geometry
	registry *Registry

	probe  VisibilityProbe
	status StatusSink

	mu      sync.Mutex
	state   SchedulerState
	cycleID string
	started time.Time
}

// NewScheduler creates a detection scheduler.
func NewScheduler(config *Store, detector detect.Detector, source FrameSource, geometry Geometry, registry *Registry) *Scheduler {
	return &Scheduler{
		config:   config,
		detector: detector,
		source:   source,
		geometry: geometry,
		registry: registry,
		status:   NopSink{},
	}
}

// SetProbe installs an optional occlusion probe applied at ingest.
func (s *Scheduler) SetProbe(probe VisibilityProbe) {
	s.probe = probe
}

// SetStatusSink installs the observability sink.
func (s *Scheduler) SetStatusSink(sink StatusSink) {
	if sink != nil {
		s.status = sink
	}
}

// State returns the current scheduler state.
func (s *Scheduler) State() SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Restart returns a stopped scheduler to idle so cycles resume.
func (s *Scheduler) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == SchedulerStopped {
		s.state = SchedulerIdle
		s.cycleID = ""
		log.Info("detection scheduler restarted")
	}
}

// Run drives the scheduler until the context is cancelled. A pending
// detector response arriving after cancellation is discarded.
func (s *Scheduler) Run(ctx context.Context) {
	cfg := s.config.Get()
	interval := cfg.DetectionInterval
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("detection scheduler started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg = s.config.Get()
			next := s.tick(ctx, cfg)
			if next != interval {
				interval = next
				ticker.Reset(interval)
			}
		}
	}
}

// tick attempts to start one detection cycle and returns the interval to
// the next tick.
func (s *Scheduler) tick(ctx context.Context, cfg Config) time.Duration {
	s.mu.Lock()
	switch s.state {
	case SchedulerStopped:
		s.mu.Unlock()
		return cfg.IdleBackoff

	case SchedulerInFlight:
		if time.Since(s.started) <= cfg.cycleTimeout() {
			// Prior cycle still resolving: skip this tick
			s.mu.Unlock()
			return cfg.DetectionInterval
		}
		// Cycle lost: abandon it so detection does not stall forever.
		// The late response, if any, is discarded by cycle ID.
		lost := s.cycleID
		s.cycleID = ""
		s.state = SchedulerIdle
		s.mu.Unlock()
		log.Warn("detection cycle timed out", "cycle", lost)
		s.status.AddEvent("cycle_timeout", "detection cycle "+lost+" timed out")
		return cfg.DetectionInterval
	}
	s.mu.Unlock()

	if !s.source.Available() {
		// Source paused or hidden: back off
		return cfg.IdleBackoff
	}

	frame, err := s.source.Frame()
	if err != nil {
		s.status.AddEvent("frame_failed", err.Error())
		return cfg.IdleBackoff
	}
	if !frame.Size.Valid() || !frame.Native.Valid() {
		s.status.AddEvent("invalid_frame", screen.ErrBadDimensions.Error())
		return cfg.DetectionInterval
	}

	surface, err := s.geometry.SurfaceRect()
	if err != nil {
		s.status.AddEvent("geometry_unavailable", err.Error())
		return cfg.DetectionInterval
	}

	id := uuid.NewString()
	s.mu.Lock()
	if s.state != SchedulerIdle {
		s.mu.Unlock()
		return cfg.DetectionInterval
	}
	s.state = SchedulerInFlight
	s.cycleID = id
	s.started = time.Now()
	s.mu.Unlock()

	go s.cycle(ctx, id, frame, surface, cfg)
	return cfg.DetectionInterval
}

// cycle runs one detector round trip and folds the result into the
// registry.
func (s *Scheduler) cycle(ctx context.Context, id string, frame *screen.Frame, surface geom.Rect, cfg Config) {
	dets, err := s.detector.Detect(ctx, frame.JPEG, cfg.MaxDetections)

	s.mu.Lock()
	if s.cycleID != id || s.state != SchedulerInFlight {
		// Timed out or restarted while we were waiting
		s.mu.Unlock()
		log.Debug("discarding late detection response", "cycle", id)
		return
	}

	if err != nil {
		if detect.IsFatal(err) {
			s.state = SchedulerStopped
			s.cycleID = ""
			s.mu.Unlock()
			log.Error("detector unavailable, scheduler stopped", "error", err)
			s.status.AddEvent("detector_unavailable", err.Error())
			return
		}
		s.state = SchedulerIdle
		s.cycleID = ""
		s.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		log.Debug("detection cycle failed", "cycle", id, "error", err)
		s.status.AddEvent("cycle_failed", err.Error())
		return
	}

	s.state = SchedulerIdle
	s.cycleID = ""
	s.mu.Unlock()

	if ctx.Err() != nil {
		// Shut down while the response was in transit
		return
	}

	targets := s.registry.Ingest(dets, FrameContext{
		DetectorSize: frame.Size,
		VideoSize:    frame.Native,
		Surface:      surface,
		Captured:     frame.Captured,
	}, cfg, s.probe)

	log.Debug("detection cycle complete", "cycle", id, "detections", len(dets), "targets", len(targets))
}
