package tracking

import (
	"testing"
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

func TestConfig_CycleTimeout(t *testing.T) {
	cfg := DefaultConfig()

	// Derived: 5x the interval, never below two seconds
	cfg.DetectionInterval = 80 * time.Millisecond
	if got := cfg.cycleTimeout(); got != 2*time.Second {
		t.Errorf("cycleTimeout at 80ms interval: got %v, want 2s", got)
	}

	cfg.DetectionInterval = 500 * time.Millisecond
	if got := cfg.cycleTimeout(); got != 2500*time.Millisecond {
		t.Errorf("cycleTimeout at 500ms interval: got %v, want 2.5s", got)
	}

	// Explicit override wins
	cfg.CycleTimeout = 300 * time.Millisecond
	if got := cfg.cycleTimeout(); got != 300*time.Millisecond {
		t.Errorf("cycleTimeout explicit: got %v, want 300ms", got)
	}
}

func TestConfig_AimOrigin(t *testing.T) {
	cfg := DefaultConfig()
	surface := geom.Rect{X: 100, Y: 50, W: 800, H: 600}

	got := cfg.aimOrigin(surface)
	if !pointEquals(got, geom.Point{X: 500, Y: 350}) {
		t.Errorf("Default aim origin: got %v, want surface center", got)
	}

	cfg.AimOrigin = &geom.Point{X: 10, Y: 20}
	got = cfg.aimOrigin(surface)
	if !pointEquals(got, geom.Point{X: 10, Y: 20}) {
		t.Errorf("Explicit aim origin: got %v, want (10, 20)", got)
	}
}

func TestConfig_SmoothingFactor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Smoothing = 0.5
	cfg.SnapSmoothing = 0.05

	if got := cfg.smoothingFactor(); got != 0.5 {
		t.Errorf("smoothingFactor: got %v, want 0.5", got)
	}
	cfg.SnapMode = true
	if got := cfg.smoothingFactor(); got != 0.05 {
		t.Errorf("smoothingFactor in snap mode: got %v, want 0.05", got)
	}
}

func TestConfig_Presets(t *testing.T) {
	def := DefaultConfig()
	smooth := SmoothConfig()
	aggressive := AggressiveConfig()

	if smooth.Smoothing <= def.Smoothing {
		t.Error("SmoothConfig must retain more distance per frame than the default")
	}
	if aggressive.Smoothing >= def.Smoothing {
		t.Error("AggressiveConfig must retain less distance per frame than the default")
	}
	if aggressive.DetectionInterval >= smooth.DetectionInterval {
		t.Error("AggressiveConfig must detect more often than SmoothConfig")
	}
	if aggressive.FOVRadius <= smooth.FOVRadius {
		t.Error("AggressiveConfig must cast a wider net than SmoothConfig")
	}
}

func TestStore_Update(t *testing.T) {
	s := NewStore(DefaultConfig())
	s.Update(func(cfg *Config) { cfg.FOVRadius = 99 })
	if got := s.Get().FOVRadius; got != 99 {
		t.Errorf("Update: got FOVRadius %v, want 99", got)
	}
}

func TestStore_ApplyTuning(t *testing.T) {
	s := NewStore(DefaultConfig())

	snap := true
	s.ApplyTuning(TuningParams{
		Smoothing:   0.7,
		SnapMode:    &snap,
		Policy:      "nearest",
		FireMode:    "click",
		LeadTimeMs:  90,
		DetectionHz: 10,
	})

	cfg := s.Get()
	if cfg.Smoothing != 0.7 {
		t.Errorf("Smoothing: got %v, want 0.7", cfg.Smoothing)
	}
	if !cfg.SnapMode {
		t.Error("SnapMode not applied")
	}
	if cfg.Policy != PolicyNearest {
		t.Errorf("Policy: got %v, want nearest", cfg.Policy)
	}
	if cfg.FireMode != FireClick {
		t.Errorf("FireMode: got %v, want click", cfg.FireMode)
	}
	if cfg.LeadTime != 90*time.Millisecond {
		t.Errorf("LeadTime: got %v, want 90ms", cfg.LeadTime)
	}
	if cfg.DetectionInterval != 100*time.Millisecond {
		t.Errorf("DetectionInterval: got %v, want 100ms", cfg.DetectionInterval)
	}
}

func TestStore_ApplyTuningIgnoresZeroAndInvalid(t *testing.T) {
	s := NewStore(DefaultConfig())
	before := s.Get()

	// Zero values and unknown enum strings leave the config untouched
	s.ApplyTuning(TuningParams{Policy: "sideways", FireMode: "maybe"})

	after := s.Get()
	if after.Smoothing != before.Smoothing || after.Policy != before.Policy || after.FireMode != before.FireMode {
		t.Errorf("Zero-value tuning changed config: %+v", after)
	}
}

func TestStore_ApplyTuningClampsDetectionRate(t *testing.T) {
	s := NewStore(DefaultConfig())

	s.ApplyTuning(TuningParams{DetectionHz: 500})
	if got := s.Get().DetectionInterval; got != time.Second/30 {
		t.Errorf("DetectionInterval above cap: got %v, want %v", got, time.Second/30)
	}

	s.ApplyTuning(TuningParams{DetectionHz: 0.2})
	if got := s.Get().DetectionInterval; got != time.Second {
		t.Errorf("DetectionInterval below floor: got %v, want 1s", got)
	}
}

func TestStore_TuningRoundTrip(t *testing.T) {
	s := NewStore(DefaultConfig())
	p := s.Tuning()

	if p.Smoothing != 0.5 {
		t.Errorf("Tuning Smoothing: got %v, want 0.5", p.Smoothing)
	}
	if p.Policy != string(PolicyCrosshair) {
		t.Errorf("Tuning Policy: got %v, want crosshair", p.Policy)
	}
	if !floatEquals(p.DetectionHz, 12.5) {
		t.Errorf("Tuning DetectionHz: got %v, want 12.5", p.DetectionHz)
	}
}
