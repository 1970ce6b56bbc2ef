package tracking

import (
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
	"github.com/drixpyyy/aimcore/pkg/screen"
)

// Collaborator interfaces consumed by the scheduler and driver.
// pkg/screen and pkg/input provide the production implementations.

// FrameSource exposes the current video frame.
type FrameSource interface {
	Frame() (*screen.Frame, error)
	Available() bool
}

// Geometry exposes the current on-screen rectangle of the video surface.
type Geometry interface {
	SurfaceRect() (geom.Rect, error)
}

// VisibilityProbe reports whether a display-space point is covered by an
// unrelated element.
type VisibilityProbe interface {
	Visible(p geom.Point) bool
}

// AimStatus is the driver state published to observers.
type AimStatus struct {
	State     string     `json:"state"` // "idle", "tracking", "firing"
	Active    bool       `json:"active"`
	Aim       geom.Point `json:"aim"`
	TargetID  string     `json:"target_id,omitempty"`
	Targets   int        `json:"targets"`
	Version   uint64     `json:"version"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// StatusSink receives driver state and recoverable-error events.
// Implementations must not block; the control loop calls them on its
// tick budget.
type StatusSink interface {
	UpdateAim(status AimStatus)
	AddEvent(kind, message string)
}

// NopSink discards all status updates.
type NopSink struct{}

// UpdateAim implements StatusSink.
func (NopSink) UpdateAim(AimStatus) {}

// AddEvent implements StatusSink.
func (NopSink) AddEvent(string, string) {}
