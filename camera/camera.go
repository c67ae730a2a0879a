// Package camera provides a 2D camera for viewing the simulation box.
package camera

// fitMargin leaves a border around the box when the camera fits it.
const fitMargin = 0.9

// Camera maps the origin-centered, y-up world onto screen pixels.
// Screen y grows downward, world y grows upward.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom is pixels per world unit
	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// World box size, centered on the origin
	WorldW, WorldH float32

	// Zoom constraints, derived from the fit zoom
	MinZoom, MaxZoom float32
}

// New creates a camera centered on the origin with the box fitted to the viewport.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
	}
	c.updateZoomLimits()
	c.Reset()
	return c
}

// FitZoom returns the zoom at which the whole box fits the viewport with a margin.
func (c *Camera) FitZoom() float32 {
	return min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH) * fitMargin
}

func (c *Camera) updateZoomLimits() {
	fit := c.FitZoom()
	c.MinZoom = fit * 0.5
	c.MaxZoom = fit * 8
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// WorldLength converts a world distance to pixels.
func (c *Camera) WorldLength(d float32) float32 {
	return d * c.Zoom
}

// IsVisible returns true if a circle at (wx, wy) with the given world radius
// could be visible on screen.
func (c *Camera) IsVisible(wx, wy, radius float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.updateZoomLimits()
	c.Zoom = clamp(c.Zoom, c.MinZoom, c.MaxZoom)
}

// Pan moves the camera by the given delta in screen pixels. The center stays
// inside the box.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, -c.WorldW/2, c.WorldW/2)
	c.Y = clamp(c.Y-dy/c.Zoom, -c.WorldH/2, c.WorldH/2)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera on the origin and fits the box.
func (c *Camera) Reset() {
	c.X = 0
	c.Y = 0
	c.Zoom = c.FitZoom()
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
