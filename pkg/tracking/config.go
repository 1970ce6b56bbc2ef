// Package tracking implements the perception-to-actuation core: it folds
// detector results into tracked targets, selects the best one, predicts
// its motion, smooths the aim trajectory and emits pointer commands.
package tracking

import (
	"sync"
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
	"github.com/drixpyyy/aimcore/pkg/input"
)

// Policy selects how candidates are ordered and the best one picked.
type Policy string

const (
	// PolicyNearest orders by estimated distance (closest first).
	PolicyNearest Policy = "nearest"

	// PolicyCrosshair orders by on-screen distance from the aim origin.
	PolicyCrosshair Policy = "crosshair"
)

// FireMode selects what happens when the aim settles on a target.
type FireMode string

const (
	// FireOff never emits button commands.
	FireOff FireMode = "off"

	// FireAuto holds the button down while on target.
	FireAuto FireMode = "auto"

	// FireClick emits single clicks with a cooldown while on target.
	FireClick FireMode = "click"
)

// OffsetMode selects the vertical aim point within the target box.
type OffsetMode string

const (
	// OffsetCenter aims at the box center.
	OffsetCenter OffsetMode = "center"

	// OffsetHead raises the aim point by VerticalOffset of the box height.
	OffsetHead OffsetMode = "head"
)

// Config holds all tunable parameters for the tracking core.
// Each tick and each detection cycle reads one snapshot at its start and
// uses it for the whole tick/cycle.
type Config struct {
	// Timing
	TickInterval      time.Duration // Control loop period (~60 Hz)
	DetectionInterval time.Duration // How often to run detection
	IdleBackoff       time.Duration // Reschedule interval while the source is unavailable
	CycleTimeout      time.Duration // Give up on an unanswered detection cycle after this
	PruneInterval     time.Duration // How often to expire stale histories

	// Detection filtering
	MaxDetections       int      // Cap on detections requested per cycle
	ConfidenceThreshold float64  // Drop detections scoring below this
	Classes             []string // Class allowlist; empty keeps all

	// Distance model: estimated distance = DistanceReference / boxHeight
	DistanceReference float64
	MaxDistance       float64 // Candidates farther than this are dropped

	// Selection
	Policy    Policy
	FOVRadius float64     // Display px from aim origin
	AimOrigin *geom.Point // nil = center of the video surface

	// Prediction
	LeadTime time.Duration // Extrapolation horizon

	// Smoothing: fraction of remaining distance retained per reference
	// frame. Lower is faster.
	Smoothing     float64
	SnapSmoothing float64 // Used while snap mode is on
	SnapMode      bool

	// Aim point
	OffsetMode     OffsetMode
	VerticalOffset float64 // Fraction of box height above center

	// Emission
	DeadZone       float64 // Skip moves smaller than this (display px)
	OnTargetRadius float64 // On-target when aim is within this of the target point
	FireMode       FireMode
	FireButton     input.Button
	ClickCooldown  time.Duration // Minimum gap between clicks in FireClick mode
	ADSHold        bool          // Hold the right button while a target is tracked

	// History
	HistoryCap    int           // Samples kept per identity
	HistoryExpiry time.Duration // Identities unseen for this long are pruned
	MatchRadius   float64       // Gating radius for identity matching (display px)
}

// DefaultConfig returns the recommended configuration for the 60 Hz loop.
func DefaultConfig() Config {
	return Config{
		TickInterval:      16 * time.Millisecond,
		DetectionInterval: 80 * time.Millisecond, // ~12 cycles per second
		IdleBackoff:       500 * time.Millisecond,
		CycleTimeout:      0, // derived: 5x interval, floor 2s
		PruneInterval:     time.Second,

		MaxDetections:       8,
		ConfidenceThreshold: 0.45,
		Classes:             []string{"player"},

		DistanceReference: 12000,
		MaxDistance:       150,

		Policy:    PolicyCrosshair,
		FOVRadius: 220,

		LeadTime: 60 * time.Millisecond,

		Smoothing:     0.5,
		SnapSmoothing: 0.05,

		OffsetMode:     OffsetHead,
		VerticalOffset: 0.30,

		DeadZone:       1.5,
		OnTargetRadius: 8,
		FireMode:       FireOff,
		FireButton:     input.ButtonLeft,
		ClickCooldown:  180 * time.Millisecond,

		HistoryCap:    32,
		HistoryExpiry: 2 * time.Second,
		MatchRadius:   120,
	}
}

// SmoothConfig returns a configuration for slower, steadier aiming.
func SmoothConfig() Config {
	cfg := DefaultConfig()
	cfg.DetectionInterval = 120 * time.Millisecond
	cfg.Smoothing = 0.7
	cfg.LeadTime = 40 * time.Millisecond
	cfg.FOVRadius = 160
	return cfg
}

// AggressiveConfig returns a configuration for very fast acquisition.
func AggressiveConfig() Config {
	cfg := DefaultConfig()
	cfg.DetectionInterval = 50 * time.Millisecond
	cfg.Smoothing = 0.3
	cfg.LeadTime = 90 * time.Millisecond
	cfg.FOVRadius = 300
	cfg.OnTargetRadius = 12
	return cfg
}

// cycleTimeout resolves the effective detection-cycle timeout.
// An unanswered cycle is treated as lost after five intervals, never
// sooner than two seconds.
func (c Config) cycleTimeout() time.Duration {
	if c.CycleTimeout > 0 {
		return c.CycleTimeout
	}
	t := 5 * c.DetectionInterval
	if t < 2*time.Second {
		t = 2 * time.Second
	}
	return t
}

// aimOrigin resolves the configured aim origin, defaulting to the
// surface center.
func (c Config) aimOrigin(surface geom.Rect) geom.Point {
	if c.AimOrigin != nil {
		return *c.AimOrigin
	}
	return surface.Center()
}

// smoothingFactor resolves the active smoothing preset.
func (c Config) smoothingFactor() float64 {
	if c.SnapMode {
		return c.SnapSmoothing
	}
	return c.Smoothing
}

// Store holds the live configuration. Readers take a snapshot per
// tick/cycle; external mutation takes effect on the next read.
type Store struct {
	mu  sync.RWMutex
	cfg Config
}

// NewStore creates a config store with the given initial configuration.
func NewStore(cfg Config) *Store {
	return &Store{cfg: cfg}
}

// Get returns the current configuration snapshot.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Set replaces the configuration.
func (s *Store) Set(cfg Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// Update applies fn to the configuration under the lock.
func (s *Store) Update(fn func(*Config)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
}
