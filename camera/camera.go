// Package camera provides a 2D camera system for viewport control.
package camera

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Camera controls the viewport into the scene.
// World Y grows downward like screen Y, so angles read clockwise on screen.
type Camera struct {
	// Center is the camera center in world coordinates
	Center r2.Vec

	// Zoom level (1.0 = 1:1, 2.0 = 2x magnification)
	Zoom float64

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World bounds; the camera center never leaves them
	World r2.Box

	// Zoom constraints
	MinZoom, MaxZoom float64
}

// New creates a camera centered on the world box with the zoom that fits
// the whole box in the viewport.
func New(viewportW, viewportH float32, world r2.Box) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		World:     world,
		MaxZoom:   8.0,
	}
	c.MinZoom = c.fitZoom() / 4
	c.Reset()
	return c
}

// fitZoom is the zoom at which the world box just fits the viewport.
func (c *Camera) fitZoom() float64 {
	size := r2.Sub(c.World.Max, c.World.Min)
	if size.X <= 0 || size.Y <= 0 {
		return 1
	}
	return min(float64(c.ViewportW)/size.X, float64(c.ViewportH)/size.Y)
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(w r2.Vec) (sx, sy float32) {
	d := r2.Scale(c.Zoom, r2.Sub(w, c.Center))
	return c.ViewportW/2 + float32(d.X), c.ViewportH/2 + float32(d.Y)
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) r2.Vec {
	d := r2.Vec{
		X: float64(sx-c.ViewportW/2) / c.Zoom,
		Y: float64(sy-c.ViewportH/2) / c.Zoom,
	}
	return r2.Add(c.Center, d)
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(l float64) float32 {
	return float32(l * c.Zoom)
}

// IsVisible returns true if a circle at w with given radius could be
// visible on screen (conservative check for culling).
func (c *Camera) IsVisible(w r2.Vec, radius float64) bool {
	d := r2.Sub(w, c.Center)
	halfW := float64(c.ViewportW)/(2*c.Zoom) + radius
	halfH := float64(c.ViewportH)/(2*c.Zoom) + radius
	return abs(d.X) <= halfW && abs(d.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom() / 4
	c.SetZoom(c.Zoom)
}

// Pan moves the camera by the given delta in screen pixels.
// The center is clamped to the world bounds.
func (c *Camera) Pan(dx, dy float32) {
	c.Center.X = clamp(c.Center.X+float64(dx)/c.Zoom, c.World.Min.X, c.World.Max.X)
	c.Center.Y = clamp(c.Center.Y+float64(dy)/c.Zoom, c.World.Min.Y, c.World.Max.Y)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float64) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float64) {
	c.SetZoom(c.Zoom * factor)
}

// ZoomAt zooms by factor while keeping the world point under the given
// screen position fixed.
func (c *Camera) ZoomAt(sx, sy float32, factor float64) {
	before := c.ScreenToWorld(sx, sy)
	c.ZoomBy(factor)
	after := c.ScreenToWorld(sx, sy)
	c.Center = r2.Add(c.Center, r2.Sub(before, after))
}

// Reset centers the camera on the world box at the fitting zoom.
func (c *Camera) Reset() {
	c.Center = r2.Scale(0.5, r2.Add(c.World.Min, c.World.Max))
	c.SetZoom(c.fitZoom())
}

// VisibleWorldBounds returns the world-coordinate box of the visible area.
func (c *Camera) VisibleWorldBounds() r2.Box {
	half := r2.Vec{
		X: float64(c.ViewportW) / (2 * c.Zoom),
		Y: float64(c.ViewportH) / (2 * c.Zoom),
	}
	return r2.Box{Min: r2.Sub(c.Center, half), Max: r2.Add(c.Center, half)}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
