package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#000000":   {A: 255},
		"#fff":      {R: 255, G: 255, B: 255, A: 255},
		"#12345680": {R: 0x12, G: 0x34, B: 0x56, A: 0x80},
		"Red":       {R: 255, A: 255},
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseColor("#12")
	assert.Error(t, err)
	_, err = ParseColor("#zzzzzz")
	assert.Error(t, err)
	assert.Equal(t, "#ff0000", ColorString(color.NRGBA{R: 255, A: 255}))
}

func scene(objects ...state.Object) Scene {
	return Scene{
		Objects:    objects,
		Viewport:   state.NewViewport(100, 50),
		Background: "#ffffff",
	}
}

func TestSnapshotSizeAndBackground(t *testing.T) {
	img, err := Snapshot(scene(), 2)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 200, 100), img.Bounds())
	assertNear(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(0, 0))
	assertNear(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(199, 99))
}

func TestSnapshotEmptyCanvasFails(t *testing.T) {
	_, err := Snapshot(Scene{Viewport: state.NewViewport(0, 10)}, 2)
	assert.ErrorIs(t, err, ErrRender)
}

func TestSnapshotDrawsStrokes(t *testing.T) {
	line := state.Object{
		Kind:        state.KindPath,
		Points:      []state.Point{{X: 10, Y: 25}, {X: 90, Y: 25}},
		Stroke:      "#ff0000",
		StrokeWidth: 6,
	}
	img, err := Snapshot(scene(line), 2)
	require.NoError(t, err)

	assertNear(t, color.RGBA{R: 255, A: 255}, img.RGBAAt(100, 50))
	assertNear(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(100, 10))
}

func TestSnapshotShapesAreHollow(t *testing.T) {
	box := state.Object{Kind: state.KindRect, Left: 10, Top: 10, Width: 30, Height: 30, Stroke: "#0000ff", StrokeWidth: 2}
	img, err := Snapshot(scene(box), 2)
	require.NoError(t, err)

	assertNear(t, color.RGBA{B: 255, A: 255}, img.RGBAAt(20, 50))
	assertNear(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(50, 50))
}

func TestSnapshotZeroSizeShapesDoNotFail(t *testing.T) {
	dot := state.Object{Kind: state.KindRect, Left: 5, Top: 5, Stroke: "#000000", StrokeWidth: 2}
	ring := state.Object{Kind: state.KindCircle, Left: 5, Top: 5, Stroke: "#000000", StrokeWidth: 2}
	_, err := Snapshot(scene(dot, ring), 2)
	assert.NoError(t, err)
}

func TestSnapshotScalesImageToFill(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			src.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	bg := state.Object{Kind: state.KindImage, ScaleX: 10, ScaleY: 5, Image: src}
	img, err := Snapshot(scene(bg), 2)
	require.NoError(t, err)

	for _, p := range []image.Point{{0, 0}, {199, 99}, {100, 50}} {
		assertNear(t, color.RGBA{G: 200, A: 255}, img.RGBAAt(p.X, p.Y))
	}
}

func TestSnapshotHonoursViewport(t *testing.T) {
	box := state.Object{Kind: state.KindRect, Left: 0, Top: 0, Width: 10, Height: 10, Fill: "#000000", Stroke: "#000000", StrokeWidth: 1}
	sc := scene(box)
	sc.Viewport = state.Viewport{Width: 100, Height: 50, Zoom: 0.5, PanX: 40, PanY: 20}
	img, err := Snapshot(sc, 1)
	require.NoError(t, err)

	assertNear(t, color.RGBA{A: 255}, img.RGBAAt(42, 22))
	assertNear(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, img.RGBAAt(10, 10))
}

func TestEncodePNGIsLossless(t *testing.T) {
	img, err := Snapshot(scene(), 1)
	require.NoError(t, err)
	data, err := EncodePNG(img)
	require.NoError(t, err)

	decoded, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds(), decoded.Bounds())
	r, g, b, a := decoded.At(3, 3).RGBA()
	assert.Equal(t, [4]uint32{0xffff, 0xffff, 0xffff, 0xffff}, [4]uint32{r, g, b, a})
}

func TestExportPDF(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	objects := []state.Object{
		{ID: "bg", Kind: state.KindImage, ScaleX: 50, ScaleY: 25, Image: src},
		{Kind: state.KindRect, Left: 1, Top: 1, Width: 10, Height: 10, Stroke: "#ff0000", StrokeWidth: 2},
		{Kind: state.KindCircle, Left: 20, Top: 20, Radius: 5, Stroke: "#00ff00", StrokeWidth: 2},
		{Kind: state.KindPath, Points: []state.Point{{X: 0, Y: 0}, {X: 50, Y: 40}}, Stroke: "#0000ff", StrokeWidth: 5},
	}
	var buf bytes.Buffer
	require.NoError(t, ExportPDF(&buf, scene(objects...)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func assertNear(t *testing.T, want, got color.RGBA) {
	t.Helper()
	const tolerance = 2
	for i, pair := range [][2]uint8{{want.R, got.R}, {want.G, got.G}, {want.B, got.B}, {want.A, got.A}} {
		assert.InDelta(t, float64(pair[0]), float64(pair[1]), tolerance, "channel %d: want %v got %v", i, want, got)
	}
}
