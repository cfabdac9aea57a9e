package state

import (
	"image"
	"math"
)

// Kind identifies the shape of a drawable object.
type Kind string

const (
	KindPath   Kind = "path"
	KindRect   Kind = "rect"
	KindCircle Kind = "circle"
	KindImage  Kind = "image"
)

// Point is a position in canvas (logical) coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Object is a single shape, freehand stroke or image placed on the canvas.
type Object struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`

	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	ScaleX float64 `json:"scale_x,omitempty"`
	ScaleY float64 `json:"scale_y,omitempty"`
	Points []Point `json:"points,omitempty"`

	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`
	Fill        string  `json:"fill,omitempty"` // empty means transparent

	Selectable bool `json:"selectable"`

	// ImageData carries the PNG encoding of Image for documents and peers.
	ImageData []byte      `json:"image_data,omitempty"`
	Image     image.Image `json:"-"`
}

// Clone returns a deep copy of o. The decoded image is shared; it is never mutated.
func (o Object) Clone() Object {
	c := o
	if o.Points != nil {
		c.Points = make([]Point, len(o.Points))
		copy(c.Points, o.Points)
	}
	if o.ImageData != nil {
		c.ImageData = make([]byte, len(o.ImageData))
		copy(c.ImageData, o.ImageData)
	}
	return c
}

// Bounds returns the axis-aligned bounding box of the object in canvas coordinates.
func (o Object) Bounds() Rect {
	switch o.Kind {
	case KindRect:
		return Rect{X: o.Left, Y: o.Top, Width: o.Width, Height: o.Height}
	case KindCircle:
		return Rect{X: o.Left, Y: o.Top, Width: 2 * o.Radius, Height: 2 * o.Radius}
	case KindImage:
		w, h := 0.0, 0.0
		if o.Image != nil {
			b := o.Image.Bounds()
			w = float64(b.Dx()) * o.ScaleX
			h = float64(b.Dy()) * o.ScaleY
		}
		return Rect{X: o.Left, Y: o.Top, Width: w, Height: h}
	case KindPath:
		return pointsBounds(o.Points)
	}
	return Rect{}
}

// Translate shifts the object by (dx, dy).
func (o *Object) Translate(dx, dy float64) {
	o.Left += dx
	o.Top += dy
	for i := range o.Points {
		o.Points[i].X += dx
		o.Points[i].Y += dy
	}
}

func pointsBounds(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
