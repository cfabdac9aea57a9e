package ui

import (
	"image"
	"image/color"
	"sync"

	"SketchBoard/internal/board"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

// BoardWidget renders a whiteboard and feeds it pointer and key input. It is the
// board.Surface the whiteboard binds to.
type BoardWidget struct {
	widget.BaseWidget
	board *board.Whiteboard
	log   *zap.Logger

	mu       sync.Mutex
	attached bool
	next     int
	resize   map[int]func(w, h float64)
	keys     map[int]func(key string)
	pressed  bool
}

var (
	_ fyne.Widget       = (*BoardWidget)(nil)
	_ fyne.Draggable    = (*BoardWidget)(nil)
	_ fyne.Focusable    = (*BoardWidget)(nil)
	_ fyne.Tappable     = (*BoardWidget)(nil)
	_ desktop.Mouseable = (*BoardWidget)(nil)
	_ board.Surface     = (*BoardWidget)(nil)
)

func NewBoardWidget(wb *board.Whiteboard, log *zap.Logger) *BoardWidget {
	b := &BoardWidget{
		board:  wb,
		log:    logging.Component(log, "board-widget"),
		resize: make(map[int]func(w, h float64)),
		keys:   make(map[int]func(string)),
	}
	b.ExtendBaseWidget(b)
	return b
}

// Attached reports whether the widget has been placed on a canvas.
func (b *BoardWidget) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attached
}

func (b *BoardWidget) Dimensions() (float64, float64) {
	s := b.BaseWidget.Size()
	return float64(s.Width), float64(s.Height)
}

func (b *BoardWidget) OnResize(fn func(w, h float64)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.resize[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.resize, id)
		b.mu.Unlock()
	}
}

func (b *BoardWidget) OnKey(fn func(key string)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.keys[id] = fn
	return func() {
		b.mu.Lock()
		delete(b.keys, id)
		b.mu.Unlock()
	}
}

// Resize lays the widget out and tells resize listeners about the new size.
func (b *BoardWidget) Resize(size fyne.Size) {
	old := b.BaseWidget.Size()
	b.BaseWidget.Resize(size)
	if old == size {
		return
	}
	b.mu.Lock()
	fns := make([]func(w, h float64), 0, len(b.resize))
	for _, fn := range b.resize {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(float64(size.Width), float64(size.Height))
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.mu.Lock()
	b.pressed = true
	b.mu.Unlock()
	b.board.PointerDown(float64(e.Position.X), float64(e.Position.Y))
	b.Refresh()
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.mu.Lock()
	b.pressed = false
	b.mu.Unlock()
	b.board.PointerUp(float64(e.Position.X), float64(e.Position.Y))
	b.Refresh()
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.board.PointerMove(float64(e.Position.X), float64(e.Position.Y))
	b.Refresh()
}

// DragEnd finishes a gesture whose mouse-up landed outside the widget.
func (b *BoardWidget) DragEnd() {
	b.mu.Lock()
	pressed := b.pressed
	b.pressed = false
	b.mu.Unlock()
	if pressed {
		b.board.PointerCancel()
		b.Refresh()
	}
}

func (b *BoardWidget) Tapped(*fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(b); c != nil {
		c.Focus(b)
	}
}

func (b *BoardWidget) FocusGained() {}

// FocusLost ends any gesture in progress with its partial geometry.
func (b *BoardWidget) FocusLost() {
	if b.board.Drawing() {
		b.board.PointerCancel()
		b.Refresh()
	}
}

func (b *BoardWidget) TypedRune(rune) {}

func (b *BoardWidget) TypedKey(e *fyne.KeyEvent) {
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.keys))
	for _, fn := range b.keys {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(string(e.Name))
	}
	b.Refresh()
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseOut()                      {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	b.mu.Lock()
	b.attached = true
	b.mu.Unlock()

	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(color.White)
	r.raster = canvas.NewRaster(r.draw)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	raster     *canvas.Raster
}

// draw renders the scene at the raster's pixel size, so HiDPI screens get full
// resolution.
func (r *boardWidgetRenderer) draw(w, h int) image.Image {
	scene, ok := r.board.board.Scene()
	if !ok || scene.Viewport.Width <= 0 {
		return image.NewUniform(color.White)
	}
	img, err := render.Snapshot(scene, float64(w)/scene.Viewport.Width)
	if err != nil {
		r.board.log.Warn("render failed", zap.Error(err))
		return image.NewUniform(color.White)
	}
	return img
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.raster}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.raster.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *boardWidgetRenderer) Refresh() {
	r.raster.Refresh()
}

func (r *boardWidgetRenderer) Destroy() {
	r.board.mu.Lock()
	r.board.attached = false
	r.board.mu.Unlock()
}
