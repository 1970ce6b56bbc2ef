// Package screen provides the frame-source and surface-geometry
// collaborators consumed by the tracking core.
package screen

import (
	"errors"
	"sync"
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// Sentinel errors for the screen package.
var (
	// ErrSourceUnavailable indicates no frame can be captured right now.
	ErrSourceUnavailable = errors.New("screen: frame source unavailable")

	// ErrBadDimensions indicates the captured frame had a zero or
	// negative dimension.
	ErrBadDimensions = errors.New("screen: invalid frame dimensions")

	// ErrNoGeometry indicates the on-screen surface rect is unknown.
	ErrNoGeometry = errors.New("screen: surface geometry unavailable")
)

// Frame is one captured video frame ready for detection.
type Frame struct {
	// JPEG is the encoded (possibly downscaled) image handed to the detector.
	JPEG []byte

	// Size is the dimensions of the encoded image (detector space).
	Size geom.Size

	// Native is the full-resolution video dimensions.
	Native geom.Size

	// Captured is when the frame was grabbed.
	Captured time.Time
}

// FrameSource exposes the current video frame.
type FrameSource interface {
	// Frame captures and encodes the current frame.
	Frame() (*Frame, error)

	// Available reports whether the source can currently deliver frames
	// (false while paused, hidden or disconnected).
	Available() bool
}

// Geometry exposes the current on-screen rectangle of the video surface.
type Geometry interface {
	SurfaceRect() (geom.Rect, error)
}

// VisibilityProbe reports whether a display-space point is covered by an
// unrelated element. Optional; absent probes mean everything is visible.
type VisibilityProbe interface {
	Visible(p geom.Point) bool
}

// SurfaceTracker is a Geometry fed by an external reporter, typically the
// companion page pushing the video element rect over the input transport.
// The zero rect means geometry has not been reported yet.
type SurfaceTracker struct {
	mu   sync.RWMutex
	rect geom.Rect
	set  bool
}

// NewSurfaceTracker creates an empty surface tracker.
func NewSurfaceTracker() *SurfaceTracker {
	return &SurfaceTracker{}
}

// Update replaces the known surface rect.
func (s *SurfaceTracker) Update(r geom.Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rect = r
	s.set = true
}

// SurfaceRect implements Geometry.
func (s *SurfaceTracker) SurfaceRect() (geom.Rect, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.set || !s.rect.Size().Valid() {
		return geom.Rect{}, ErrNoGeometry
	}
	return s.rect, nil
}

// StaticGeometry is a Geometry with a fixed rect, for full-screen setups
// and tests.
type StaticGeometry struct {
	Rect geom.Rect
}

// SurfaceRect implements Geometry.
func (s StaticGeometry) SurfaceRect() (geom.Rect, error) {
	if !s.Rect.Size().Valid() {
		return geom.Rect{}, ErrNoGeometry
	}
	return s.Rect, nil
}
