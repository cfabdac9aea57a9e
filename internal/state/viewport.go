package state

import "math"

// fitMargin leaves 10% of the container free around fitted content.
const fitMargin = 0.9

// Viewport maps canvas coordinates onto the host surface:
// screen = canvas*Zoom + Pan.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Zoom   float64 `json:"zoom"`
	PanX   float64 `json:"pan_x"`
	PanY   float64 `json:"pan_y"`
}

// NewViewport returns an identity viewport of the given size.
func NewViewport(width, height float64) Viewport {
	return Viewport{Width: width, Height: height, Zoom: 1}
}

// ToCanvas converts a surface position to canvas coordinates.
func (v Viewport) ToCanvas(x, y float64) Point {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return Point{X: (x - v.PanX) / zoom, Y: (y - v.PanY) / zoom}
}

// Fit computes the viewport for a container of size (width, height) holding content
// covering the given box. Content is scaled down to fit but never upscaled, then the
// box is centered in the container wherever it starts on the canvas.
func Fit(width, height float64, content Rect, hasContent bool) Viewport {
	v := NewViewport(width, height)
	if !hasContent {
		return v
	}
	zoom := 1.0
	if content.Width > 0 {
		zoom = math.Min(zoom, fitMargin*width/content.Width)
	}
	if content.Height > 0 {
		zoom = math.Min(zoom, fitMargin*height/content.Height)
	}
	if zoom < 0 {
		zoom = 0
	}
	v.Zoom = zoom
	v.PanX = (width-content.Width*zoom)/2 - content.X*zoom
	v.PanY = (height-content.Height*zoom)/2 - content.Y*zoom
	return v
}
