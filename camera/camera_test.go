package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNewFitsBox(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at origin, got (%f, %f)", cam.X, cam.Y)
	}
	// Height limits: 720 / 1.0 * 0.9
	if !near(cam.Zoom, 648) {
		t.Errorf("expected fit zoom 648, got %f", cam.Zoom)
	}

	// The box corners are on screen.
	for _, p := range [][2]float32{{-0.75, -0.5}, {0.75, 0.5}} {
		sx, sy := cam.WorldToScreen(p[0], p[1])
		if sx < 0 || sx > 1280 || sy < 0 || sy > 720 {
			t.Errorf("corner %v maps off screen to (%f, %f)", p, sx, sy)
		}
	}
}

func TestWorldToScreenYUp(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)

	sx, sy := cam.WorldToScreen(0, 0)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}

	_, top := cam.WorldToScreen(0, 0.4)
	_, bottom := cam.WorldToScreen(0, -0.4)
	if !(top < bottom) {
		t.Errorf("world up should map to screen up: y(0.4)=%f y(-0.4)=%f", top, bottom)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)
	cam.Pan(37, -12)
	cam.ZoomBy(1.7)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},
		{100, 100},
		{1200, 600},
	}
	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)", tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPanStaysInsideBox(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)
	cam.Pan(1e6, 1e6)
	if cam.X != 0.75 || cam.Y != -0.5 {
		t.Errorf("expected pan clamped to (0.75, -0.5), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)
	fit := cam.FitZoom()

	cam.SetZoom(fit * 100)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
	cam.SetZoom(0)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.Reset()
	if cam.Zoom != fit {
		t.Errorf("Reset zoom = %f, want %f", cam.Zoom, fit)
	}
}

func TestResize(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)
	cam.SetZoom(cam.MaxZoom)
	cam.Resize(320, 180)
	if cam.Zoom > cam.MaxZoom {
		t.Errorf("zoom %f above new max %f", cam.Zoom, cam.MaxZoom)
	}
	if !near(cam.FitZoom(), 162) {
		t.Errorf("fit zoom after resize = %f, want 162", cam.FitZoom())
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 1.5, 1.0)
	cam.SetZoom(cam.MaxZoom)
	if !cam.IsVisible(0, 0, 0.01) {
		t.Error("origin should be visible")
	}
	if cam.IsVisible(0.74, 0.49, 0.001) {
		t.Error("corner should be culled at max zoom")
	}
}
