package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func near(a, b r2.Vec) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	if cam.Center != (r2.Vec{X: 1280, Y: 720}) {
		t.Errorf("expected camera at (1280, 720), got %v", cam.Center)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	if got := cam.WorldToScreen(cam.Center); !near(got, r2.Vec{X: 640, Y: 360}) {
		t.Errorf("expected screen center (640, 360), got %v", got)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.SetZoom(2.5)
	cam.Pan(r2.Vec{X: 120, Y: -40})

	for _, s := range []r2.Vec{{X: 640, Y: 360}, {X: 100, Y: 100}, {X: 1200, Y: 600}} {
		w := cam.ScreenToWorld(s)
		if got := cam.WorldToScreen(w); !near(got, s) {
			t.Errorf("roundtrip failed: %v -> %v -> %v", s, w, got)
		}
	}
}

func TestPanClampsToWorld(t *testing.T) {
	tests := []struct {
		name  string
		delta r2.Vec
		want  r2.Vec
	}{
		{"inside", r2.Vec{X: 100, Y: 50}, r2.Vec{X: 1380, Y: 770}},
		{"past left edge", r2.Vec{X: -5000}, r2.Vec{X: 0, Y: 720}},
		{"past bottom edge", r2.Vec{Y: 5000}, r2.Vec{X: 1280, Y: 1440}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam := New(1280, 720, 2560, 1440)
			cam.Pan(tt.delta)
			if !near(cam.Center, tt.want) {
				t.Errorf("Center = %v, want %v", cam.Center, tt.want)
			}
		})
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Whole world fits at min(1280/2560, 720/1440) = 0.5
	if cam.MinZoom != 0.5 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(0.1)
	if cam.Zoom != 0.5 {
		t.Errorf("expected zoom clamped to 0.5, got %f", cam.Zoom)
	}

	cam.ZoomBy(100)
	if cam.Zoom != 4.0 {
		t.Errorf("expected zoom clamped to 4.0, got %f", cam.Zoom)
	}
}

func TestMinZoomFitsWorld(t *testing.T) {
	cam := New(800, 600, 1600, 800)

	// min(800/1600, 600/800) = 0.5
	if math.Abs(cam.MinZoom-0.5) > 0.001 {
		t.Errorf("expected MinZoom 0.5, got %f", cam.MinZoom)
	}

	cam.SetZoom(cam.MinZoom)
	lo, hi := cam.VisibleWorldBounds()
	if hi.X-lo.X < cam.WorldW-0.01 || hi.Y-lo.Y < cam.WorldH-0.01 {
		t.Errorf("world not fully visible at min zoom: %v..%v", lo, hi)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)

	// Visible range: (640, 360) to (1920, 1080)
	tests := []struct {
		name   string
		p      r2.Vec
		radius float64
		want   bool
	}{
		{"center", r2.Vec{X: 1280, Y: 720}, 10, true},
		{"far outside", r2.Vec{X: 2400, Y: 1300}, 10, false},
		{"edge with large radius", r2.Vec{X: 600, Y: 720}, 100, true},
		{"just outside", r2.Vec{X: 600, Y: 720}, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cam.IsVisible(tt.p, tt.radius); got != tt.want {
				t.Errorf("IsVisible(%v, %v) = %v, want %v", tt.p, tt.radius, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	cam := New(100, 100, 200, 200)
	if !cam.Contains(r2.Vec{X: 0, Y: 200}) {
		t.Error("boundary point should be inside")
	}
	if cam.Contains(r2.Vec{X: -1, Y: 10}) {
		t.Error("negative x should be outside")
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 2560, 1440)
	cam.Center = r2.Vec{X: 500, Y: 500}
	cam.Zoom = 2.5

	cam.Reset()

	if cam.Center != (r2.Vec{X: 1280, Y: 720}) {
		t.Errorf("expected position (1280, 720), got %v", cam.Center)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}
