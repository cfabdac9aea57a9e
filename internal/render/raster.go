// Package render flattens canvas objects into raster and PDF output.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"

	"SketchBoard/internal/state"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

var ErrRender = errors.New("render failed")

// Scene is everything needed to draw one frame of the canvas.
type Scene struct {
	Objects    []state.Object
	Viewport   state.Viewport
	Background string

	// Stroke being captured, drawn on top of the objects.
	Pending      []state.Point
	PendingColor string
	PendingWidth float64
}

// SceneOf captures the current contents of a session.
func SceneOf(s *state.Session) Scene {
	return Scene{
		Objects:    s.Objects(),
		Viewport:   s.Viewport(),
		Background: s.Background(),
	}
}

// Snapshot renders the scene at multiplier times its logical size.
func Snapshot(scene Scene, multiplier float64) (img *image.RGBA, err error) {
	w := int(math.Round(scene.Viewport.Width * multiplier))
	h := int(math.Round(scene.Viewport.Height * multiplier))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty canvas %dx%d", ErrRender, w, h)
	}
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: %v", ErrRender, r)
		}
	}()

	img = image.NewRGBA(image.Rect(0, 0, w, h))
	r := &rasterizer{
		dst:   img,
		dc:    gg.NewContextForRGBA(img),
		scale: multiplier * zoomOf(scene.Viewport),
		offX:  scene.Viewport.PanX * multiplier,
		offY:  scene.Viewport.PanY * multiplier,
	}
	r.dc.SetColor(MustColor(scene.Background))
	r.dc.Clear()

	for _, o := range scene.Objects {
		r.draw(o)
	}
	if len(scene.Pending) > 1 {
		r.path(scene.Pending, scene.PendingColor, scene.PendingWidth)
	}
	return img, nil
}

// EncodePNG encodes img losslessly.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// ScaleImage resamples src into dst's rectangle r, composited over what is there.
func ScaleImage(dst *image.RGBA, r image.Rectangle, src image.Image) {
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}

func zoomOf(v state.Viewport) float64 {
	if v.Zoom == 0 {
		return 1
	}
	return v.Zoom
}

type rasterizer struct {
	dst        *image.RGBA
	dc         *gg.Context
	scale      float64
	offX, offY float64
}

func (r *rasterizer) x(v float64) float64 { return r.offX + v*r.scale }
func (r *rasterizer) y(v float64) float64 { return r.offY + v*r.scale }

func (r *rasterizer) draw(o state.Object) {
	switch o.Kind {
	case state.KindImage:
		r.image(o)
	case state.KindRect:
		r.dc.DrawRectangle(r.x(o.Left), r.y(o.Top), o.Width*r.scale, o.Height*r.scale)
		r.finishShape(o)
	case state.KindCircle:
		r.dc.DrawCircle(r.x(o.Left+o.Radius), r.y(o.Top+o.Radius), o.Radius*r.scale)
		r.finishShape(o)
	case state.KindPath:
		r.path(o.Points, o.Stroke, o.StrokeWidth)
	}
}

func (r *rasterizer) image(o state.Object) {
	if o.Image == nil {
		return
	}
	b := o.Image.Bounds()
	x0 := r.x(o.Left)
	y0 := r.y(o.Top)
	x1 := x0 + float64(b.Dx())*o.ScaleX*r.scale
	y1 := y0 + float64(b.Dy())*o.ScaleY*r.scale
	dr := image.Rect(
		int(math.Round(x0)), int(math.Round(y0)),
		int(math.Round(x1)), int(math.Round(y1)),
	)
	if dr.Empty() {
		return
	}
	ScaleImage(r.dst, dr, o.Image)
}

func (r *rasterizer) finishShape(o state.Object) {
	if o.Fill != "" {
		r.dc.SetColor(MustColor(o.Fill))
		r.dc.FillPreserve()
	}
	r.dc.SetColor(MustColor(o.Stroke))
	r.dc.SetLineWidth(o.StrokeWidth * r.scale)
	r.dc.Stroke()
}

func (r *rasterizer) path(points []state.Point, stroke string, width float64) {
	if len(points) == 0 {
		return
	}
	r.dc.SetLineCapRound()
	r.dc.SetLineJoinRound()
	r.dc.MoveTo(r.x(points[0].X), r.y(points[0].Y))
	for _, p := range points[1:] {
		r.dc.LineTo(r.x(p.X), r.y(p.Y))
	}
	r.dc.SetColor(MustColor(stroke))
	r.dc.SetLineWidth(width * r.scale)
	r.dc.Stroke()
}
