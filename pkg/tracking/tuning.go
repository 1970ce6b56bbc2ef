package tracking

import "time"

// TuningParams holds the real-time adjustable tracking parameters.
// These can be modified via the web API without restarting the core.
type TuningParams struct {
	// Smoothing
	Smoothing     float64 `json:"smoothing" yaml:"smoothing"`           // Aim factor (0.3=fast, 0.7=steady)
	SnapSmoothing float64 `json:"snap_smoothing" yaml:"snap_smoothing"` // Instant-snap factor
	SnapMode      *bool   `json:"snap_mode,omitempty" yaml:"snap_mode,omitempty"`

	// Selection
	FOVRadius float64 `json:"fov_radius" yaml:"fov_radius"`
	Policy    string  `json:"policy" yaml:"policy"` // "nearest" or "crosshair"

	// Prediction
	LeadTimeMs float64 `json:"lead_time_ms" yaml:"lead_time_ms"`

	// Emission
	DeadZone       float64 `json:"dead_zone" yaml:"dead_zone"`
	OnTargetRadius float64 `json:"on_target_radius" yaml:"on_target_radius"`
	FireMode       string  `json:"fire_mode" yaml:"fire_mode"` // "off", "auto", "click"
	VerticalOffset float64 `json:"vertical_offset" yaml:"vertical_offset"`

	// Detection
	DetectionHz         float64 `json:"detection_hz" yaml:"detection_hz"` // 1-30 Hz
	ConfidenceThreshold float64 `json:"confidence_threshold" yaml:"confidence_threshold"`
	MaxDistance         float64 `json:"max_distance" yaml:"max_distance"`
}

// Tuning returns the current tuning parameters.
func (s *Store) Tuning() TuningParams {
	cfg := s.Get()
	snap := cfg.SnapMode
	return TuningParams{
		Smoothing:           cfg.Smoothing,
		SnapSmoothing:       cfg.SnapSmoothing,
		SnapMode:            &snap,
		FOVRadius:           cfg.FOVRadius,
		Policy:              string(cfg.Policy),
		LeadTimeMs:          float64(cfg.LeadTime) / float64(time.Millisecond),
		DeadZone:            cfg.DeadZone,
		OnTargetRadius:      cfg.OnTargetRadius,
		FireMode:            string(cfg.FireMode),
		VerticalOffset:      cfg.VerticalOffset,
		DetectionHz:         1 / cfg.DetectionInterval.Seconds(),
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		MaxDistance:         cfg.MaxDistance,
	}
}

// ApplyTuning updates parameters at runtime. Only non-zero values are
// applied; they take effect on the next tick or cycle that reads the
// config.
func (s *Store) ApplyTuning(p TuningParams) {
	s.Update(func(cfg *Config) {
		if p.Smoothing > 0 {
			cfg.Smoothing = clamp01(p.Smoothing)
		}
		if p.SnapSmoothing > 0 {
			cfg.SnapSmoothing = clamp01(p.SnapSmoothing)
		}
		if p.SnapMode != nil {
			cfg.SnapMode = *p.SnapMode
		}
		if p.FOVRadius > 0 {
			cfg.FOVRadius = p.FOVRadius
		}
		switch Policy(p.Policy) {
		case PolicyNearest, PolicyCrosshair:
			cfg.Policy = Policy(p.Policy)
		}
		if p.LeadTimeMs > 0 {
			cfg.LeadTime = time.Duration(p.LeadTimeMs * float64(time.Millisecond))
		}
		if p.DeadZone > 0 {
			cfg.DeadZone = p.DeadZone
		}
		if p.OnTargetRadius > 0 {
			cfg.OnTargetRadius = p.OnTargetRadius
		}
		switch FireMode(p.FireMode) {
		case FireOff, FireAuto, FireClick:
			cfg.FireMode = FireMode(p.FireMode)
		}
		if p.VerticalOffset > 0 {
			cfg.VerticalOffset = clamp01(p.VerticalOffset)
		}
		if p.DetectionHz > 0 {
			hz := p.DetectionHz
			if hz < 1 {
				hz = 1
			}
			if hz > 30 {
				hz = 30
			}
			cfg.DetectionInterval = time.Duration(float64(time.Second) / hz)
		}
		if p.ConfidenceThreshold > 0 {
			cfg.ConfidenceThreshold = clamp01(p.ConfidenceThreshold)
		}
		if p.MaxDistance > 0 {
			cfg.MaxDistance = p.MaxDistance
		}
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
