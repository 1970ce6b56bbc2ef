package tracking

import (
	"testing"
	"time"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

func TestPredict_InsufficientSamples(t *testing.T) {
	if got := Predict(nil, 50*time.Millisecond); !pointEquals(got, geom.Point{}) {
		t.Errorf("Predict with no samples: got %v, want zero", got)
	}

	one := []Sample{{Time: time.Now(), Pos: geom.Point{X: 10}}}
	if got := Predict(one, 50*time.Millisecond); !pointEquals(got, geom.Point{}) {
		t.Errorf("Predict with one sample: got %v, want zero", got)
	}
}

func TestPredict_EqualTimestamps(t *testing.T) {
	now := time.Now()
	samples := []Sample{
		{Time: now, Pos: geom.Point{X: 0}},
		{Time: now, Pos: geom.Point{X: 50}},
	}
	if got := Predict(samples, 50*time.Millisecond); !pointEquals(got, geom.Point{}) {
		t.Errorf("Predict with dt=0: got %v, want zero", got)
	}
}

func TestPredict_ConstantVelocity(t *testing.T) {
	t0 := time.Now()
	samples := []Sample{
		{Time: t0, Pos: geom.Point{X: 0, Y: 0}},
		{Time: t0.Add(100 * time.Millisecond), Pos: geom.Point{X: 10, Y: 0}},
	}

	// 100 px/s over a 50 ms lead -> 5 px displacement
	got := Predict(samples, 50*time.Millisecond)
	if !floatEquals(got.X, 5) || !floatEquals(got.Y, 0) {
		t.Errorf("Predict: got %v, want (5, 0)", got)
	}
}

func TestPredict_UsesNewestPair(t *testing.T) {
	t0 := time.Now()
	samples := []Sample{
		{Time: t0, Pos: geom.Point{X: 0}},
		{Time: t0.Add(100 * time.Millisecond), Pos: geom.Point{X: 1000}}, // old burst
		{Time: t0.Add(200 * time.Millisecond), Pos: geom.Point{X: 1010}},
	}

	// Only the newest pair counts: 100 px/s, not the earlier spike
	got := Predict(samples, 100*time.Millisecond)
	if !floatEquals(got.X, 10) {
		t.Errorf("Predict: got %v, want X=10", got)
	}
}

func TestPredict_NegativeVelocity(t *testing.T) {
	t0 := time.Now()
	samples := []Sample{
		{Time: t0, Pos: geom.Point{X: 100, Y: 40}},
		{Time: t0.Add(50 * time.Millisecond), Pos: geom.Point{X: 90, Y: 40}},
	}

	got := Predict(samples, 50*time.Millisecond)
	if !floatEquals(got.X, -10) || !floatEquals(got.Y, 0) {
		t.Errorf("Predict: got %v, want (-10, 0)", got)
	}
}
