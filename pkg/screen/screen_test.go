package screen

import (
	"errors"
	"testing"

	"github.com/drixpyyy/aimcore/pkg/geom"
)

func TestSurfaceTracker_EmptyUntilReported(t *testing.T) {
	st := NewSurfaceTracker()

	if _, err := st.SurfaceRect(); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry before first report, got %v", err)
	}

	st.Update(geom.Rect{X: 10, Y: 20, W: 800, H: 450})
	r, err := st.SurfaceRect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.X != 10 || r.W != 800 {
		t.Errorf("unexpected rect %+v", r)
	}
}

func TestSurfaceTracker_RejectsDegenerateRect(t *testing.T) {
	st := NewSurfaceTracker()
	st.Update(geom.Rect{X: 0, Y: 0, W: 0, H: 100})

	if _, err := st.SurfaceRect(); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry for zero-width rect, got %v", err)
	}
}

func TestStaticGeometry(t *testing.T) {
	g := StaticGeometry{Rect: geom.Rect{W: 1920, H: 1080}}
	r, err := g.SurfaceRect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.W != 1920 {
		t.Errorf("unexpected rect %+v", r)
	}

	if _, err := (StaticGeometry{}).SurfaceRect(); !errors.Is(err, ErrNoGeometry) {
		t.Error("expected ErrNoGeometry for zero rect")
	}
}
