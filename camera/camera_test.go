package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(840, 840, 840, 840)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestZoomToFit(t *testing.T) {
	tests := []struct {
		name     string
		vw, vh   float32
		ww, wh   float32
		wantZoom float32
	}{
		{"exact", 840, 840, 840, 840, 1},
		{"double", 1680, 1680, 840, 840, 2},
		{"wide viewport", 1600, 800, 400, 400, 2},
		{"tall viewport", 400, 1600, 800, 800, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(tt.vw, tt.vh, tt.ww, tt.wh)
			if !near(cam.Zoom, tt.wantZoom) {
				t.Errorf("zoom = %f, want %f", cam.Zoom, tt.wantZoom)
			}
		})
	}
}

func TestWorldToScreenYUp(t *testing.T) {
	cam := New(840, 840, 840, 840)

	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 420) || !near(sy, 420) {
		t.Errorf("origin should map to screen center, got (%f, %f)", sx, sy)
	}

	// Top-left corner of the arena is (-420, 420) in world space
	sx, sy = cam.WorldToScreen(-420, 420)
	if !near(sx, 0) || !near(sy, 0) {
		t.Errorf("expected (0, 0), got (%f, %f)", sx, sy)
	}

	_, sy = cam.WorldToScreen(0, 100)
	if sy >= 420 {
		t.Errorf("positive world y should be above center, got %f", sy)
	}
}

func TestSetOrigin(t *testing.T) {
	cam := New(840, 840, 840, 840)
	cam.SetOrigin(0, 60)

	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 420) || !near(sy, 480) {
		t.Errorf("expected (420, 480), got (%f, %f)", sx, sy)
	}
	if cam.InViewport(10, 30) {
		t.Error("point in the HUD band should be outside the viewport")
	}
	if !cam.InViewport(10, 70) {
		t.Error("point below the HUD band should be inside the viewport")
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1000, 700, 840, 840)
	cam.SetOrigin(5, 60)

	testCases := []struct{ sx, sy float32 }{
		{500, 410},
		{100, 100},
		{900, 650},
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestResize(t *testing.T) {
	cam := New(840, 840, 840, 840)
	cam.Resize(420, 600)
	if !near(cam.Zoom, 0.5) {
		t.Errorf("expected zoom 0.5 after resize, got %f", cam.Zoom)
	}
	if !near(cam.ScaleLength(40), 20) {
		t.Errorf("ScaleLength(40) = %f, want 20", cam.ScaleLength(40))
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(840, 840, 840, 840)

	if !cam.IsVisible(0, 0, 1) {
		t.Error("origin should be visible")
	}
	if !cam.IsVisible(425, 0, 10) {
		t.Error("box overlapping the edge should be visible")
	}
	if cam.IsVisible(1000, 0, 10) {
		t.Error("box far outside should not be visible")
	}
}
