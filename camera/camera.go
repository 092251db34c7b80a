// Package camera maps the arena's centred, y-up world coordinates onto a
// screen viewport.
package camera

// Camera fits the arena into a viewport with a uniform zoom.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom in screen pixels per world unit
	Zoom float32

	// Viewport rectangle on screen
	ViewportX, ViewportY float32
	ViewportW, ViewportH float32

	// Arena dimensions, fitted into the viewport
	WorldW, WorldH float32
}

// New creates a camera centered on the origin that fits a worldW x worldH
// arena into a viewport of the given size at the screen origin.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{WorldW: worldW, WorldH: worldH}
	c.Resize(viewportW, viewportH)
	return c
}

// SetOrigin moves the viewport's top-left corner, for example below a HUD.
func (c *Camera) SetOrigin(x, y float32) {
	c.ViewportX = x
	c.ViewportY = y
}

// Resize updates the viewport dimensions and refits the zoom.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.Zoom = fitZoom(viewportW, viewportH, c.WorldW, c.WorldH)
}

func fitZoom(vw, vh, ww, wh float32) float32 {
	if ww <= 0 || wh <= 0 {
		return 1
	}
	return min(vw/ww, vh/wh)
}

// WorldToScreen converts world coordinates to screen coordinates.
// World y grows upward, screen y grows downward.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportX + c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportY + c.ViewportH/2 - (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportX-c.ViewportW/2)/c.Zoom
	wy = c.Y - (sy-c.ViewportY-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// InViewport reports whether a screen point lies inside the viewport.
func (c *Camera) InViewport(sx, sy float32) bool {
	return sx >= c.ViewportX && sx < c.ViewportX+c.ViewportW &&
		sy >= c.ViewportY && sy < c.ViewportY+c.ViewportH
}

// ScaleLength converts a world length to screen pixels.
func (c *Camera) ScaleLength(l float32) float32 {
	return l * c.Zoom
}

// IsVisible returns true if a box at (wx, wy) with the given half extent
// could be visible on screen (conservative check for culling).
func (c *Camera) IsVisible(wx, wy, half float32) bool {
	halfW := c.ViewportW/(2*c.Zoom) + half
	halfH := c.ViewportH/(2*c.Zoom) + half
	return absf(wx-c.X) <= halfW && absf(wy-c.Y) <= halfH
}

// absf returns the absolute value of a float32.
func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
