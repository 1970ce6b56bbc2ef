package tracking

import (
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// Target is a tracked, filtered detection candidate for the current
// detection cycle. Targets are recomputed from scratch each cycle; only
// their identity-keyed history persists across cycles.
type Target struct {
	// ID is the matched or freshly minted identity.
	ID string `json:"id"`

	Class string  `json:"class"`
	Score float64 `json:"score"`

	// Box and Center are in full-resolution video space.
	Box    geom.Rect  `json:"box"`
	Center geom.Point `json:"center"`

	// ScreenBox and ScreenCenter are mapped onto the display surface.
	ScreenBox    geom.Rect  `json:"screen_box"`
	ScreenCenter geom.Point `json:"screen_center"`

	// Distance is the estimated distance from the inverse-height model.
	Distance float64 `json:"distance"`

	// Visible is false when an occlusion probe covered the center.
	// Candidates with Visible == false never leave the registry.
	Visible bool `json:"visible"`

	// Seen is the capture time of the originating frame.
	Seen time.Time `json:"seen"`
}

// AimPoint returns the display-space point to aim at for the given
// offset policy.
func (t *Target) AimPoint(mode OffsetMode, fraction float64) geom.Point {
	p := t.ScreenCenter
	if mode == OffsetHead {
		p.Y -= t.ScreenBox.H * fraction
	}
	return p
}

// MatchResult records how a detection was bound to an identity.
type MatchResult struct {
	ID  string
	New bool // true when no existing history matched
}

// FrameContext carries the geometry of one detection cycle: the size the
// detector saw, the native video size and the on-screen surface rect at
// ingest time.
type FrameContext struct {
	DetectorSize geom.Size
	VideoSize    geom.Size
	Surface      geom.Rect
	Captured     time.Time
}

// Snapshot is an immutable candidate list published atomically by the
// registry. The driver always reads a fully formed snapshot; versions
// increase monotonically.
type Snapshot struct {
	Version uint64    `json:"version"`
	Time    time.Time `json:"time"`
	Surface geom.Rect `json:"surface"`
	Targets []Target  `json:"targets"`
}
