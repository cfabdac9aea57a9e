package tools

import (
	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"

	"go.uber.org/zap"
)

const (
	PencilWidth      = 5.0
	EraserWidth      = 20.0
	ShapeStrokeWidth = 2.0
)

// Brush configures and captures freehand strokes for the pencil and eraser.
// The eraser paints in the background color; it never removes objects.
type Brush struct {
	session *state.Session
	log     *zap.Logger

	Enabled bool
	Width   float64
	Color   string

	capturing bool
	points    []state.Point
}

// NewBrush creates a disabled brush for session.
func NewBrush(session *state.Session, log *zap.Logger) *Brush {
	return &Brush{session: session, log: logging.Component(log, "brush")}
}

// Configure sets up the brush for tool. Any stroke in progress is dropped.
func (b *Brush) Configure(tool state.Tool) {
	b.capturing = false
	b.points = nil
	switch tool {
	case state.ToolPencil:
		b.Enabled = true
		b.Width = PencilWidth
		b.Color = b.session.Color()
	case state.ToolEraser:
		b.Enabled = true
		b.Width = EraserWidth
		b.Color = b.session.Background()
	default:
		b.Enabled = false
	}
}

// PointerDown starts a stroke.
func (b *Brush) PointerDown(p state.Point) {
	if !b.Enabled {
		return
	}
	b.capturing = true
	b.points = []state.Point{p}
}

// PointerMove extends the stroke.
func (b *Brush) PointerMove(p state.Point) {
	if !b.capturing {
		return
	}
	b.points = append(b.points, p)
}

// PointerUp ends the stroke and adds it to the session. Strokes with fewer than
// two points are dropped. It returns the new object id, or "".
func (b *Brush) PointerUp(p state.Point) (string, error) {
	if !b.capturing {
		return "", nil
	}
	if last := b.points[len(b.points)-1]; last != p {
		b.points = append(b.points, p)
	}
	return b.finish()
}

// Cancel commits whatever has been captured so far.
func (b *Brush) Cancel() (string, error) {
	if !b.capturing {
		return "", nil
	}
	return b.finish()
}

// Pending returns the stroke being captured, for live preview.
func (b *Brush) Pending() []state.Point {
	if !b.capturing {
		return nil
	}
	out := make([]state.Point, len(b.points))
	copy(out, b.points)
	return out
}

func (b *Brush) finish() (string, error) {
	points := b.points
	b.capturing = false
	b.points = nil
	if len(points) < 2 {
		return "", nil
	}
	obj := state.Object{
		Kind:        state.KindPath,
		Points:      points,
		Stroke:      b.Color,
		StrokeWidth: b.Width,
	}
	box := obj.Bounds()
	obj.Left, obj.Top = box.X, box.Y

	id, err := b.session.Add(obj)
	if err != nil {
		return "", err
	}
	if err := b.session.Commit(id); err != nil {
		return "", err
	}
	b.log.Debug("stroke added", zap.String("id", id), zap.Int("points", len(points)))
	return id, nil
}
