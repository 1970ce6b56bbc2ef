package tracking

import (
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// Predict extrapolates a display-space displacement over the lead time
// from the two most recent history samples. This is a first-order,
// constant-velocity model: no acceleration term and no filtering of the
// velocity estimate. With fewer than two samples, or two samples at the
// same instant, the displacement is zero.
func Predict(samples []Sample, lead time.Duration) geom.Point {
	if len(samples) < 2 {
		return geom.Point{}
	}

	a := samples[len(samples)-2]
	b := samples[len(samples)-1]

	dt := b.Time.Sub(a.Time).Seconds()
	if dt <= 0 {
		return geom.Point{}
	}

	velocity := b.Pos.Sub(a.Pos).Scale(1 / dt) // px per second
	return velocity.Scale(lead.Seconds())
}
