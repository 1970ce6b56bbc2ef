package tracking

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drixpyyy/aimcore/internal/log"
	"github.com/drixpyyy/aimcore/pkg/geom"
	"github.com/drixpyyy/aimcore/pkg/input"
)

// DriverState is the control loop's aim-trigger state.
type DriverState int

const (
	// DriverIdle means no target is engaged.
	DriverIdle DriverState = iota

	// DriverTracking means the aim point is converging on a target.
	DriverTracking

	// DriverFiring means the fire button is held (FireAuto).
	DriverFiring
)

// String returns the state name.
func (s DriverState) String() string {
	switch s {
	case DriverIdle:
		return "idle"
	case DriverTracking:
		return "tracking"
	case DriverFiring:
		return "firing"
	}
	return "unknown"
}

// AimState is the driver-owned aim bookkeeping, mutated every tick.
type AimState struct {
	Point      geom.Point // Current smoothed aim point, display space
	Updated    time.Time  // Last tick time
	TargetID   string     // Currently selected target, "" when none
	Aiming     bool
	Shooting   bool
	HoldingADS bool
}

// eventGap throttles repeated identical event kinds.
const eventGap = time.Second

// Driver is the fixed-rate control loop: every tick it runs selection,
// prediction and smoothing against one consistent snapshot, then emits
// pointer and button commands. Recoverable failures degrade the tick and
// surface as events; the loop itself never stops ticking until the
// context is cancelled.
type Driver struct {
	config   *Store
	registry *Registry
	actuator input.Actuator
	geometry Geometry
	status   StatusSink

	active atomic.Bool

	mu        sync.Mutex
	state     DriverState
	aim       AimState
	aimInit   bool
	lastClick time.Time
	lastEvent map[string]time.Time
	targets   int
	version   uint64
}

// NewDriver creates a control loop driver.
func NewDriver(config *Store, registry *Registry, actuator input.Actuator, geometry Geometry) *Driver {
	return &Driver{
		config:    config,
		registry:  registry,
		actuator:  actuator,
		geometry:  geometry,
		status:    NopSink{},
		lastEvent: make(map[string]time.Time),
	}
}

// SetStatusSink installs the observability sink.
func (d *Driver) SetStatusSink(sink StatusSink) {
	if sink != nil {
		d.status = sink
	}
}

// SetActive sets the aim-active input condition (e.g. a held key,
// reported by the bridge or toggled via the API).
func (d *Driver) SetActive(active bool) {
	d.active.Store(active)
}

// Active returns the aim-active input condition.
func (d *Driver) Active() bool {
	return d.active.Load()
}

// State returns the current loop state.
func (d *Driver) State() DriverState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Status returns the current aim status.
func (d *Driver) Status() AimStatus {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusLocked()
}

// Run drives the loop until the context is cancelled. On shutdown any
// logically held button is released so nothing stays pressed.
func (d *Driver) Run(ctx context.Context) {
	cfg := d.config.Get()
	tick := time.NewTicker(cfg.TickInterval)
	prune := time.NewTicker(cfg.PruneInterval)
	defer tick.Stop()
	defer prune.Stop()

	log.Info("control loop started", "tick", cfg.TickInterval)

	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return

		case now := <-tick.C:
			d.tick(now)

		case now := <-prune.C:
			expiry := d.config.Get().HistoryExpiry
			if n := d.registry.PruneExpired(now, expiry); n > 0 {
				log.Debug("pruned expired histories", "count", n)
			}
		}
	}
}

// tick runs one control cycle: selector, predictor, smoother, emission.
func (d *Driver) tick(now time.Time) {
	cfg := d.config.Get()

	d.mu.Lock()
	defer d.mu.Unlock()

	var dt time.Duration
	if !d.aim.Updated.IsZero() {
		dt = now.Sub(d.aim.Updated)
	}
	d.aim.Updated = now

	surface, err := d.geometry.SurfaceRect()
	if err != nil {
		// No geometry: skip selection and smoothing, hold the aim point
		d.event(now, "geometry_unavailable", err.Error())
		return
	}
	origin := cfg.aimOrigin(surface)

	if !d.aimInit {
		d.aim.Point = origin
		d.aimInit = true
	}

	var target *Target
	if snap := d.registry.Latest(); snap != nil {
		if now.Sub(snap.Time) > cfg.cycleTimeout() {
			// Detection has gone quiet (stopped detector, paused source).
			// Candidates outlive one cycle at most, so a snapshot older
			// than the cycle bound counts as no targets at all.
			d.targets = 0
		} else {
			d.targets = len(snap.Targets)
			d.version = snap.Version
			if d.active.Load() {
				target = Select(snap.Targets, origin, cfg.FOVRadius)
			}
		}
	}

	if target == nil {
		d.disengage(now, cfg)
		// Reset toward the origin instead of holding a stale aim point
		d.aim.Point = Step(d.aim.Point, origin, cfg.Smoothing, dt)
		d.status.UpdateAim(d.statusLocked())
		return
	}

	if d.state == DriverIdle {
		d.state = DriverTracking
		log.Debug("target acquired", "target", target.ID, "distance", target.Distance)
	}
	d.aim.Aiming = true
	d.aim.TargetID = target.ID

	point := target.AimPoint(cfg.OffsetMode, cfg.VerticalOffset).
		Add(Predict(d.registry.History(target.ID), cfg.LeadTime))
	d.aim.Point = Step(d.aim.Point, point, cfg.smoothingFactor(), dt)

	if cfg.ADSHold && !d.aim.HoldingADS {
		if err := d.actuator.ButtonDown(input.ButtonRight); err != nil {
			d.event(now, "actuator_failed", err.Error())
		} else {
			d.aim.HoldingADS = true
		}
	}

	delta := d.aim.Point.Sub(origin)
	if delta.Mag() > cfg.DeadZone {
		if err := d.actuator.MoveRelative(delta.X, delta.Y); err != nil {
			d.degrade(now, cfg, err)
			d.status.UpdateAim(d.statusLocked())
			return
		}
	}

	onTarget := d.aim.Point.Dist(point) <= cfg.OnTargetRadius

	switch d.state {
	case DriverTracking:
		if onTarget {
			d.engage(now, cfg)
		}
	case DriverFiring:
		if !onTarget {
			d.releaseFire(now, cfg)
		}
	}

	d.status.UpdateAim(d.statusLocked())
}

// engage applies the fire policy when the on-target condition holds.
func (d *Driver) engage(now time.Time, cfg Config) {
	switch cfg.FireMode {
	case FireAuto:
		// Button down only on the transition, not every tick
		if err := d.actuator.ButtonDown(cfg.FireButton); err != nil {
			d.event(now, "actuator_failed", err.Error())
			return
		}
		d.state = DriverFiring
		d.aim.Shooting = true

	case FireClick:
		if now.Sub(d.lastClick) < cfg.ClickCooldown {
			return
		}
		if err := d.actuator.Click(cfg.FireButton); err != nil {
			d.event(now, "actuator_failed", err.Error())
			return
		}
		d.lastClick = now
	}
}

// releaseFire emits exactly one button up and drops back to tracking.
func (d *Driver) releaseFire(now time.Time, cfg Config) {
	d.state = DriverTracking
	d.aim.Shooting = false
	if err := d.actuator.ButtonUp(cfg.FireButton); err != nil {
		d.event(now, "actuator_failed", err.Error())
	}
}

// disengage releases held buttons and returns to idle. Used when the
// target is lost or the aim-active condition clears.
func (d *Driver) disengage(now time.Time, cfg Config) {
	if d.state == DriverFiring {
		d.releaseFire(now, cfg)
	}
	if d.aim.HoldingADS {
		if err := d.actuator.ButtonUp(input.ButtonRight); err != nil {
			d.event(now, "actuator_failed", err.Error())
		}
		d.aim.HoldingADS = false
	}
	if d.state != DriverIdle {
		d.state = DriverIdle
		log.Debug("target released")
	}
	d.aim.Aiming = false
	d.aim.TargetID = ""
}

// degrade handles an actuator transport failure: release what we can,
// fall back to idle, keep ticking.
func (d *Driver) degrade(now time.Time, cfg Config, err error) {
	d.event(now, "actuator_failed", err.Error())
	d.disengage(now, cfg)
}

// shutdown forces firing → tracking → idle so no button remains held.
func (d *Driver) shutdown() {
	cfg := d.config.Get()
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disengage(time.Now(), cfg)
	d.status.UpdateAim(d.statusLocked())
	log.Info("control loop stopped")
}

// event reports a recoverable error, throttling repeats of the same kind.
func (d *Driver) event(now time.Time, kind, msg string) {
	if last, ok := d.lastEvent[kind]; ok && now.Sub(last) < eventGap {
		return
	}
	d.lastEvent[kind] = now
	d.status.AddEvent(kind, msg)
}

func (d *Driver) statusLocked() AimStatus {
	return AimStatus{
		State:     d.state.String(),
		Active:    d.active.Load(),
		Aim:       d.aim.Point,
		TargetID:  d.aim.TargetID,
		Targets:   d.targets,
		Version:   d.version,
		UpdatedAt: d.aim.Updated,
	}
}
