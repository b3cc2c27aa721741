// Package camera provides a 2D viewport into the arena for hosts that draw it or
// place entities with a pointer.
package camera

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into the arena. The arena is bounded, so the camera
// centre is kept inside it.
type Camera struct {
	// Center is the camera centre in world coordinates
	Center r2.Vec

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float64

	// World dimensions
	WorldW, WorldH float64

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the world with 1:1 zoom.
func New(viewportW, viewportH, worldW, worldH float64) *Camera {
	c := &Camera{
		Center:    r2.Vec{X: worldW / 2, Y: worldH / 2},
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
	}
	c.MinZoom = c.fitZoom()
	if c.Zoom < c.MinZoom {
		c.Zoom = c.MinZoom
	}
	return c
}

// fitZoom is the zoom at which the whole world fits in the viewport.
func (c *Camera) fitZoom() float64 {
	return math.Min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH)
}

// WorldToScreen converts a world position to screen coordinates.
func (c *Camera) WorldToScreen(p r2.Vec) r2.Vec {
	d := r2.Scale(c.Zoom, r2.Sub(p, c.Center))
	return r2.Add(d, r2.Vec{X: c.ViewportW / 2, Y: c.ViewportH / 2})
}

// ScreenToWorld converts screen coordinates to a world position. The result is not
// clamped, so callers placing entities should check Contains.
func (c *Camera) ScreenToWorld(s r2.Vec) r2.Vec {
	d := r2.Sub(s, r2.Vec{X: c.ViewportW / 2, Y: c.ViewportH / 2})
	return r2.Add(c.Center, r2.Scale(1/c.Zoom, d))
}

// Contains reports whether p lies inside the world.
func (c *Camera) Contains(p r2.Vec) bool {
	return p.X >= 0 && p.X <= c.WorldW && p.Y >= 0 && p.Y <= c.WorldH
}

// IsVisible returns true if a circle at p with the given radius could be visible
// on screen (conservative check for culling).
func (c *Camera) IsVisible(p r2.Vec, radius float64) bool {
	d := r2.Sub(p, c.Center)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return math.Abs(d.X) <= halfW && math.Abs(d.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float64) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels, keeping the centre
// inside the world.
func (c *Camera) Pan(delta r2.Vec) {
	c.Center = r2.Add(c.Center, r2.Scale(1/c.Zoom, delta))
	c.Center.X = clamp(c.Center.X, 0, c.WorldW)
	c.Center.Y = clamp(c.Center.Y, 0, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default position and zoom.
func (c *Camera) Reset() {
	c.Center = r2.Vec{X: c.WorldW / 2, Y: c.WorldH / 2}
	c.SetZoom(1.0)
}

// VisibleWorldBounds returns the world-coordinate corners of the visible area.
func (c *Camera) VisibleWorldBounds() (lo, hi r2.Vec) {
	half := r2.Vec{X: c.ViewportW / (2 * c.Zoom), Y: c.ViewportH / (2 * c.Zoom)}
	return r2.Sub(c.Center, half), r2.Add(c.Center, half)
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
