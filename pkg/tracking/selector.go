package tracking

import "github.com/drixpyyy/aimcore/pkg/geom"

// Select returns the best candidate within fovRadius of aimOrigin, or nil
// when none survives the field-of-view filter. Candidates are expected in
// registry order (already policy-sorted), so selection is the first
// survivor. Pure function; it copies the chosen target.
func Select(candidates []Target, aimOrigin geom.Point, fovRadius float64) *Target {
	for i := range candidates {
		if candidates[i].ScreenCenter.Dist(aimOrigin) <= fovRadius {
			t := candidates[i]
			return &t
		}
	}
	return nil
}
