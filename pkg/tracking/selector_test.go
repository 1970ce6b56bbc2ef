package tracking

import (
	"testing"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

func TestSelect_Empty(t *testing.T) {
	if got := Select(nil, geom.Point{X: 100, Y: 100}, 50); got != nil {
		t.Errorf("Select on empty list: got %v, want nil", got)
	}
}

func TestSelect_FOVFilter(t *testing.T) {
	origin := geom.Point{X: 400, Y: 300}
	candidates := []Target{
		{ID: "a", ScreenCenter: geom.Point{X: 400, Y: 500}}, // 200 px out
		{ID: "b", ScreenCenter: geom.Point{X: 700, Y: 300}}, // 300 px out
	}

	// Nothing inside a 50 px radius
	if got := Select(candidates, origin, 50); got != nil {
		t.Errorf("Select outside FOV: got %v, want nil", got)
	}

	// 250 px admits only the first
	got := Select(candidates, origin, 250)
	if got == nil || got.ID != "a" {
		t.Errorf("Select within FOV: got %v, want a", got)
	}
}

func TestSelect_HonorsOrder(t *testing.T) {
	// Candidates arrive policy-sorted; the first inside the FOV wins even
	// when a later one is closer to the origin.
	origin := geom.Point{X: 0, Y: 0}
	candidates := []Target{
		{ID: "far", ScreenCenter: geom.Point{X: 50, Y: 0}},
		{ID: "near", ScreenCenter: geom.Point{X: 10, Y: 0}},
	}

	got := Select(candidates, origin, 100)
	if got == nil || got.ID != "far" {
		t.Errorf("Select: got %v, want first in order", got)
	}
}

func TestSelect_SkipsToFirstInside(t *testing.T) {
	origin := geom.Point{X: 0, Y: 0}
	candidates := []Target{
		{ID: "outside", ScreenCenter: geom.Point{X: 500, Y: 0}},
		{ID: "inside", ScreenCenter: geom.Point{X: 10, Y: 0}},
	}

	got := Select(candidates, origin, 100)
	if got == nil || got.ID != "inside" {
		t.Errorf("Select: got %v, want inside", got)
	}
}

func TestSelect_ReturnsCopy(t *testing.T) {
	candidates := []Target{{ID: "a", ScreenCenter: geom.Point{X: 1, Y: 1}}}
	got := Select(candidates, geom.Point{}, 100)
	if got == nil {
		t.Fatal("Expected a selection")
	}
	got.ID = "mutated"
	if candidates[0].ID != "a" {
		t.Error("Select must not alias the candidate slice")
	}
}
