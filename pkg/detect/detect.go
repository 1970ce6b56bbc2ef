// Package detect defines the object-detection contract consumed by the
// tracking core, plus the detector backends that fulfil it.
package detect

import (
	"context"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// Detection is one detector result in detector-space pixels.
// Detections are immutable; they are produced once per detection cycle
// and discarded after being folded into tracking targets.
type Detection struct {
	Class string    `json:"class"`
	Score float64   `json:"score"` // 0-1
	Box   geom.Rect `json:"box"`
}

// Center returns the center of the bounding box.
func (d Detection) Center() geom.Point {
	return d.Box.Center()
}

// Detector is the interface for detection backends.
// By contract with the scheduler at most one Detect call is in flight at
// a time, and a backend must tolerate being invoked again after each
// resolution.
type Detector interface {
	// Detect finds objects in the JPEG image, returning at most max results.
	Detect(ctx context.Context, jpeg []byte, max int) ([]Detection, error)

	// Close releases resources.
	Close() error
}

// FilterClass returns the detections whose class is in the allowlist.
// An empty allowlist keeps everything.
func FilterClass(dets []Detection, classes []string) []Detection {
	if len(classes) == 0 {
		return dets
	}
	var out []Detection
	for _, d := range dets {
		for _, c := range classes {
			if d.Class == c {
				out = append(out, d)
				break
			}
		}
	}
	return out
}
