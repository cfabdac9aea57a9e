// Package tools turns pointer gestures into canvas objects.
package tools

import (
	"math"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"

	"go.uber.org/zap"
)

// ShapeHandler drives the rectangle and circle drag gesture:
// Idle -> pointer down -> Drawing -> pointer up -> Idle.
type ShapeHandler struct {
	session *state.Session
	log     *zap.Logger

	drawing        bool
	kind           state.Kind
	startX, startY float64
	current        string
}

// NewShapeHandler creates a handler adding shapes to session.
func NewShapeHandler(session *state.Session, log *zap.Logger) *ShapeHandler {
	return &ShapeHandler{session: session, log: logging.Component(log, "shapes")}
}

// Drawing reports whether a gesture is in progress.
func (h *ShapeHandler) Drawing() bool {
	return h.drawing
}

// PointerDown starts a shape for rectangle and circle tools. Other tools are ignored.
func (h *ShapeHandler) PointerDown(tool state.Tool, p state.Point) error {
	if h.drawing {
		h.Cancel()
	}
	var obj state.Object
	switch tool {
	case state.ToolRect:
		obj = state.Object{Kind: state.KindRect, Left: p.X, Top: p.Y}
	case state.ToolCircle:
		obj = state.Object{Kind: state.KindCircle, Left: p.X, Top: p.Y}
	default:
		return nil
	}
	obj.Stroke = h.session.Color()
	obj.StrokeWidth = ShapeStrokeWidth

	id, err := h.session.Add(obj)
	if err != nil {
		return err
	}
	h.drawing = true
	h.kind = obj.Kind
	h.startX, h.startY = p.X, p.Y
	h.current = id
	h.log.Debug("shape started", zap.String("id", id), zap.String("kind", string(obj.Kind)))
	return nil
}

// PointerMove recomputes the shape from the gesture start and the pointer.
func (h *ShapeHandler) PointerMove(p state.Point) error {
	if !h.drawing {
		return nil
	}
	return h.session.Update(h.current, func(o *state.Object) {
		applyGeometry(o, h.startX, h.startY, p.X, p.Y)
	})
}

// PointerUp fixes the final geometry and returns to Idle. The finished shape id is
// returned, or "" when no gesture was in progress.
func (h *ShapeHandler) PointerUp(p state.Point) (string, error) {
	if !h.drawing {
		h.reset()
		return "", nil
	}
	id := h.current
	err := h.session.Update(id, func(o *state.Object) {
		applyGeometry(o, h.startX, h.startY, p.X, p.Y)
	})
	h.reset()
	if err != nil {
		// the shape was removed mid-gesture, by undo or a peer
		return "", err
	}
	if err := h.session.Commit(id); err != nil {
		return "", err
	}
	h.log.Debug("shape finished", zap.String("id", id))
	return id, nil
}

// Cancel finishes the current shape with whatever geometry it has, e.g. after focus
// loss mid-drag, and returns to Idle.
func (h *ShapeHandler) Cancel() string {
	if !h.drawing {
		return ""
	}
	id := h.current
	h.reset()
	if err := h.session.Commit(id); err != nil {
		return ""
	}
	return id
}

func (h *ShapeHandler) reset() {
	h.drawing = false
	h.current = ""
	h.kind = ""
}

// applyGeometry spans the shape across both gesture corners, whatever the drag direction.
func applyGeometry(o *state.Object, x0, y0, x1, y1 float64) {
	o.Left = math.Min(x0, x1)
	o.Top = math.Min(y0, y1)
	dx := math.Abs(x1 - x0)
	dy := math.Abs(y1 - y0)
	switch o.Kind {
	case state.KindRect:
		o.Width = dx
		o.Height = dy
	case state.KindCircle:
		o.Radius = dx / 2
	}
}
