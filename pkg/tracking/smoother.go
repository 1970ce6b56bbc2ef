package tracking

import (
	"math"
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

// ReferenceFrameMs is the nominal loop period the smoothing factor is
// expressed against (60 Hz).
const ReferenceFrameMs = 1000.0 / 60.0

// minLerp keeps the aim converging even at very small deltas.
const minLerp = 1e-4

// Step exponentially blends the current aim point toward the target
// point, compensated for variable frame delta time:
//
//	lerp = 1 - factor^(dt / referenceFrame)
//
// so the convergence per wall-clock second is independent of tick rate.
// factor is the fraction of remaining distance retained per reference
// frame. With dt <= 0 the current point is returned unchanged.
func Step(current, target geom.Point, factor float64, dt time.Duration) geom.Point {
	dtMs := float64(dt) / float64(time.Millisecond)
	if dtMs <= 0 {
		return current
	}

	amount := 1 - math.Pow(factor, dtMs/ReferenceFrameMs)
	amount = geom.Clamp(amount, minLerp, 1)
	return geom.Lerp(current, target, amount)
}
