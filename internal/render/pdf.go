package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"SketchBoard/internal/state"
)

// ExportPDF writes the scene as a single-page vector PDF sized to the canvas, one
// point per canvas unit. The viewport is ignored: the whole board is exported.
func ExportPDF(w io.Writer, scene Scene) error {
	width, height := scene.Viewport.Width, scene.Viewport.Height
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: empty canvas", ErrRender)
	}
	orientation := "P"
	if width > height {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: width, Ht: height},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	bg := MustColor(scene.Background)
	p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	p.Rect(0, 0, width, height, "F")

	for i, o := range scene.Objects {
		switch o.Kind {
		case state.KindImage:
			if err := pdfImage(p, fmt.Sprintf("img-%d-%s", i, o.ID), o); err != nil {
				return err
			}
		case state.KindRect:
			style := pdfStyle(p, o)
			p.Rect(o.Left, o.Top, o.Width, o.Height, style)
		case state.KindCircle:
			style := pdfStyle(p, o)
			p.Circle(o.Left+o.Radius, o.Top+o.Radius, o.Radius, style)
		case state.KindPath:
			pdfStyle(p, o)
			p.SetLineCapStyle("round")
			p.SetLineJoinStyle("round")
			for j := 1; j < len(o.Points); j++ {
				p.Line(o.Points[j-1].X, o.Points[j-1].Y, o.Points[j].X, o.Points[j].Y)
			}
		}
	}
	if p.Err() {
		return fmt.Errorf("build pdf: %w", p.Error())
	}
	return p.Output(w)
}

func pdfStyle(p *gofpdf.Fpdf, o state.Object) string {
	stroke := MustColor(o.Stroke)
	p.SetDrawColor(int(stroke.R), int(stroke.G), int(stroke.B))
	p.SetLineWidth(o.StrokeWidth)
	if o.Fill == "" {
		return "D"
	}
	fill := MustColor(o.Fill)
	p.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
	return "FD"
}

func pdfImage(p *gofpdf.Fpdf, name string, o state.Object) error {
	data := o.ImageData
	if len(data) == 0 {
		if o.Image == nil {
			return nil
		}
		var err error
		if data, err = EncodePNG(o.Image); err != nil {
			return err
		}
	}
	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	p.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	box := o.Bounds()
	p.ImageOptions(name, box.X, box.Y, box.Width, box.Height, false, opts, 0, "")
	return nil
}
