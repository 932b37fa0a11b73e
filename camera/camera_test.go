package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

var scene = r2.Box{Min: r2.Vec{X: -400, Y: -300}, Max: r2.Vec{X: 400, Y: 300}}

func TestNew(t *testing.T) {
	cam := New(800, 600, scene)

	// Should be centered on the world origin
	if cam.Center != (r2.Vec{}) {
		t.Errorf("expected camera at origin, got %v", cam.Center)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(800, 600, scene)

	// World origin maps to screen center
	sx, sy := cam.WorldToScreen(r2.Vec{})
	if math.Abs(float64(sx-400)) > 0.01 || math.Abs(float64(sy-300)) > 0.01 {
		t.Errorf("expected screen center (400, 300), got (%f, %f)", sx, sy)
	}

	// Top-left world corner maps to screen origin
	sx, sy = cam.WorldToScreen(scene.Min)
	if math.Abs(float64(sx)) > 0.01 || math.Abs(float64(sy)) > 0.01 {
		t.Errorf("expected (0, 0), got (%f, %f)", sx, sy)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(800, 600, scene)
	cam.SetZoom(2.5)
	cam.Pan(40, -25)

	testCases := []struct{ sx, sy float32 }{
		{400, 300}, // center
		{100, 100}, // top-left
		{750, 550}, // near bottom-right
	}

	for _, tc := range testCases {
		w := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(w)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> %v -> (%f,%f)", tc.sx, tc.sy, w, sx, sy)
		}
	}
}

func TestFitZoomAsymmetric(t *testing.T) {
	// Wide window: height is the limiting dimension
	cam := New(1600, 600, scene)
	if math.Abs(cam.Zoom-1.0) > 1e-9 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}

	cam = New(400, 600, scene)
	if math.Abs(cam.Zoom-0.5) > 1e-9 {
		t.Errorf("expected zoom 0.5, got %f", cam.Zoom)
	}
}

func TestPanClampsToWorld(t *testing.T) {
	cam := New(800, 600, scene)

	cam.Pan(-10000, 10000)

	if cam.Center.X != scene.Min.X || cam.Center.Y != scene.Max.Y {
		t.Errorf("expected center clamped to (%v, %v), got %v", scene.Min.X, scene.Max.Y, cam.Center)
	}
}

func TestPanScalesWithZoom(t *testing.T) {
	cam := New(800, 600, scene)
	cam.SetZoom(2)

	cam.Pan(100, 0)

	if math.Abs(cam.Center.X-50) > 1e-9 {
		t.Errorf("expected 100px pan at 2x to move 50 world units, got %v", cam.Center.X)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(800, 600, scene)

	if cam.MinZoom != 0.25 {
		t.Errorf("expected MinZoom 0.25, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.01)
	if cam.Zoom != 0.25 {
		t.Errorf("expected zoom clamped to 0.25, got %f", cam.Zoom)
	}

	cam.SetZoom(100)
	if cam.Zoom != 8.0 {
		t.Errorf("expected zoom clamped to 8.0, got %f", cam.Zoom)
	}
}

func TestZoomAtKeepsCursorFixed(t *testing.T) {
	cam := New(800, 600, scene)
	before := cam.ScreenToWorld(600, 150)

	cam.ZoomAt(600, 150, 2)

	after := cam.ScreenToWorld(600, 150)
	if r2.Norm(r2.Sub(before, after)) > 1e-6 {
		t.Errorf("point under cursor moved from %v to %v", before, after)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(800, 600, scene)
	cam.SetZoom(2)

	// Visible range at 2x: (-200, -150) to (200, 150)
	if !cam.IsVisible(r2.Vec{}, 10) {
		t.Error("center should be visible")
	}
	if cam.IsVisible(r2.Vec{X: 350, Y: 250}, 10) {
		t.Error("far point should not be visible")
	}
	if !cam.IsVisible(r2.Vec{X: 250, Y: 0}, 60) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(800, 600, scene)
	b := cam.VisibleWorldBounds()
	if b != scene {
		t.Errorf("expected visible bounds %v at fit zoom, got %v", scene, b)
	}
}

func TestReset(t *testing.T) {
	cam := New(800, 600, scene)
	cam.Center = r2.Vec{X: 120, Y: -80}
	cam.Zoom = 2.5

	cam.Reset()

	if cam.Center != (r2.Vec{}) {
		t.Errorf("expected position at origin, got %v", cam.Center)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestResize(t *testing.T) {
	cam := New(800, 600, scene)
	cam.Resize(400, 300)

	if cam.MinZoom != 0.125 {
		t.Errorf("expected MinZoom 0.125 after resize, got %f", cam.MinZoom)
	}
}
