package board

import (
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/media"
	"SketchBoard/internal/render"
	"SketchBoard/internal/state"
	"SketchBoard/internal/tools"

	"go.uber.org/zap"
)

// DefaultMultiplier is the snapshot resolution relative to the logical canvas size.
const DefaultMultiplier = 2.0

// ImageLoader resolves the initial image reference.
type ImageLoader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// Options configures a Whiteboard.
type Options struct {
	Canvas state.Options

	// InitialImage is a URL or path; ImageData takes precedence when set.
	InitialImage string
	ImageData    []byte

	Multiplier float64
	Loader     ImageLoader
	Notifier   Notifier
	Logger     *zap.Logger

	// Dispatch runs fn on the UI thread. Defaults to calling fn directly.
	Dispatch func(fn func())

	// OnSave receives the exported PNG; OnClose signals cancellation.
	OnSave  func(png []byte)
	OnClose func()
}

// Whiteboard composes the lifecycle manager, the shape handlers and the brush
// into one editable surface.
type Whiteboard struct {
	opts     Options
	log      *zap.Logger
	notifier Notifier
	manager  *Manager

	// initMu serializes Initialize so concurrent callers cannot seed twice.
	initMu sync.Mutex

	mu      sync.Mutex
	session *state.Session
	shapes  *tools.ShapeHandler
	brush   *tools.Brush
	cancel  context.CancelFunc
	ready   chan struct{}
	closed  bool

	moving   string
	lastMove state.Point
}

// New creates a whiteboard. Nothing is drawn until Initialize succeeds.
func New(opts Options) *Whiteboard {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Multiplier <= 0 {
		opts.Multiplier = DefaultMultiplier
	}
	if opts.Loader == nil {
		opts.Loader = media.NewLoader(opts.Logger)
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(fn func()) { fn() }
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	ready := make(chan struct{})
	close(ready)
	return &Whiteboard{
		opts:     opts,
		log:      logging.Component(opts.Logger, "whiteboard"),
		notifier: notifier,
		manager:  NewManager(opts.Canvas, opts.Logger),
		ready:    ready,
	}
}

// Initialize binds the whiteboard to surface and starts loading the initial image,
// if any. ErrSurfaceDetached means the caller should retry after mount. Until the
// image arrives the canvas is usable and empty.
func (w *Whiteboard) Initialize(ctx context.Context, surface Surface) error {
	w.initMu.Lock()
	defer w.initMu.Unlock()

	w.mu.Lock()
	if w.session != nil {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	session, err := w.manager.Initialize(surface)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	w.mu.Lock()
	w.session = session
	w.shapes = tools.NewShapeHandler(session, w.opts.Logger)
	w.brush = tools.NewBrush(session, w.opts.Logger)
	w.brush.Configure(session.Tool())
	w.cancel = cancel
	w.closed = false
	w.ready = make(chan struct{})
	ready := w.ready
	w.mu.Unlock()

	if w.opts.InitialImage == "" && len(w.opts.ImageData) == 0 {
		close(ready)
		return nil
	}
	go w.seed(ctx, session, ready)
	return nil
}

// Ready is closed once the initial image has been inserted or has failed.
func (w *Whiteboard) Ready() <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready
}

// Session returns the live session, or nil before Initialize and after teardown.
func (w *Whiteboard) Session() *state.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Whiteboard) seed(ctx context.Context, session *state.Session, ready chan struct{}) {
	defer close(ready)

	var (
		img image.Image
		err error
	)
	if len(w.opts.ImageData) > 0 {
		img, _, err = media.Decode(w.opts.ImageData)
	} else {
		img, err = w.opts.Loader.Load(ctx, w.opts.InitialImage)
	}
	if ctx.Err() != nil {
		w.log.Debug("initial image discarded after teardown")
		return
	}
	if err != nil {
		w.log.Warn("initial image failed", zap.Error(err))
		w.notify(SeverityError, "Could not load the initial image", fmt.Errorf("%w: %v", ErrImageDecode, err))
		return
	}

	done := make(chan struct{})
	w.opts.Dispatch(func() {
		defer close(done)
		w.insertSeed(session, img)
	})
	select {
	case <-done:
	case <-ctx.Done():
	}
}

// insertSeed places img bottom-most, stretched to exactly fill the canvas.
func (w *Whiteboard) insertSeed(session *state.Session, img image.Image) {
	w.mu.Lock()
	live := w.session == session && !w.closed
	w.mu.Unlock()
	if !live {
		return
	}

	v := session.Viewport()
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		w.notify(SeverityError, "Could not load the initial image", fmt.Errorf("%w: empty image", ErrImageDecode))
		return
	}
	obj := state.Object{
		Kind:   state.KindImage,
		ScaleX: v.Width / float64(b.Dx()),
		ScaleY: v.Height / float64(b.Dy()),
		Image:  img,
	}
	if err := obj.EncodeImage(); err != nil {
		w.log.Warn("initial image not shareable", zap.Error(err))
	}
	id, err := session.Insert(0, obj)
	if err != nil {
		w.notify(SeverityError, "Could not load the initial image", err)
		return
	}
	if err := session.Commit(id); err != nil {
		w.log.Warn("commit initial image", zap.Error(err))
	}
	w.log.Info("initial image inserted", zap.String("id", id))
}

func (w *Whiteboard) live() (*state.Session, *tools.ShapeHandler, *tools.Brush, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return nil, nil, nil, false
	}
	return w.session, w.shapes, w.brush, true
}

// PointerDown starts a gesture at surface position (x, y).
func (w *Whiteboard) PointerDown(x, y float64) {
	s, shapes, brush, ok := w.live()
	if !ok {
		return
	}
	p := s.Viewport().ToCanvas(x, y)
	switch tool := s.Tool(); {
	case tool.Freehand():
		brush.PointerDown(p)
	case tool.Shape():
		if err := shapes.PointerDown(tool, p); err != nil {
			w.log.Warn("shape start failed", zap.Error(err))
		}
	case tool == state.ToolSelect:
		o, hit := s.ObjectAt(p)
		if !hit || !s.Select(o.ID) {
			s.Deselect()
			return
		}
		w.mu.Lock()
		w.moving, w.lastMove = o.ID, p
		w.mu.Unlock()
	}
}

// PointerMove continues the gesture.
func (w *Whiteboard) PointerMove(x, y float64) {
	s, shapes, brush, ok := w.live()
	if !ok {
		return
	}
	p := s.Viewport().ToCanvas(x, y)
	brush.PointerMove(p)
	if err := shapes.PointerMove(p); err != nil {
		w.log.Warn("shape update failed", zap.Error(err))
	}

	w.mu.Lock()
	id, last := w.moving, w.lastMove
	if id != "" {
		w.lastMove = p
	}
	w.mu.Unlock()
	if id != "" {
		if err := s.Move(id, p.X-last.X, p.Y-last.Y); err != nil {
			w.endMove()
		}
	}
}

// PointerUp finishes the gesture. A pointer-up with no gesture in progress is ignored.
func (w *Whiteboard) PointerUp(x, y float64) {
	s, shapes, brush, ok := w.live()
	if !ok {
		return
	}
	p := s.Viewport().ToCanvas(x, y)
	if _, err := brush.PointerUp(p); err != nil {
		w.log.Warn("stroke failed", zap.Error(err))
	}
	if _, err := shapes.PointerUp(p); err != nil {
		w.log.Warn("shape finish failed", zap.Error(err))
	}
	w.endMove()
}

// PointerCancel finishes any gesture with its partial geometry, e.g. on focus loss.
func (w *Whiteboard) PointerCancel() {
	_, shapes, brush, ok := w.live()
	if !ok {
		return
	}
	if _, err := brush.Cancel(); err != nil {
		w.log.Warn("stroke cancel failed", zap.Error(err))
	}
	shapes.Cancel()
	w.endMove()
}

func (w *Whiteboard) endMove() {
	w.mu.Lock()
	id := w.moving
	w.moving = ""
	s := w.session
	w.mu.Unlock()
	if id != "" && s != nil {
		if err := s.Commit(id); err != nil {
			w.log.Debug("commit moved object", zap.String("id", id), zap.Error(err))
		}
	}
}

// Drawing reports whether a pointer gesture is in progress.
func (w *Whiteboard) Drawing() bool {
	_, shapes, brush, ok := w.live()
	if !ok {
		return false
	}
	return shapes.Drawing() || brush.Pending() != nil
}

// SetTool switches tools and reconfigures the brush before any further input.
// ToolClear empties the canvas and keeps the current tool. It returns the active tool.
func (w *Whiteboard) SetTool(t state.Tool) state.Tool {
	s, _, brush, ok := w.live()
	if !ok {
		return ""
	}
	w.PointerCancel()
	active := s.SetTool(t)
	brush.Configure(active)
	w.log.Debug("tool selected", zap.String("tool", string(t)), zap.String("active", string(active)))
	return active
}

// SetColor sets the color for new objects.
func (w *Whiteboard) SetColor(c string) {
	s, _, brush, ok := w.live()
	if !ok {
		return
	}
	s.SetColor(c)
	if s.Tool() == state.ToolPencil {
		brush.Configure(state.ToolPencil)
	}
}

// Undo removes the most recently added object.
func (w *Whiteboard) Undo() bool {
	s, _, _, ok := w.live()
	if !ok {
		return false
	}
	_, undone := s.Undo()
	return undone
}

// Clear empties the canvas.
func (w *Whiteboard) Clear() {
	w.SetTool(state.ToolClear)
}

// DeleteSelected removes the selected object.
func (w *Whiteboard) DeleteSelected() bool {
	s, _, _, ok := w.live()
	if !ok {
		return false
	}
	return s.DeleteSelected()
}

// Resize refits the viewport.
func (w *Whiteboard) Resize(width, height float64) {
	w.manager.Resize(width, height)
}

// Scene returns what should be on screen, including a stroke in progress.
func (w *Whiteboard) Scene() (render.Scene, bool) {
	s, _, brush, ok := w.live()
	if !ok {
		return render.Scene{}, false
	}
	scene := render.SceneOf(s)
	scene.Pending = brush.Pending()
	scene.PendingColor = brush.Color
	scene.PendingWidth = brush.Width
	return scene, true
}

// ExportSnapshot flattens the canvas, background included, into a PNG at
// Multiplier times the logical size.
func (w *Whiteboard) ExportSnapshot() ([]byte, error) {
	s, _, _, ok := w.live()
	if !ok {
		return nil, ErrNotInitialized
	}
	img, err := render.Snapshot(render.SceneOf(s), w.opts.Multiplier)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return data, nil
}

// ExportPDF writes the board as a vector PDF.
func (w *Whiteboard) ExportPDF(out io.Writer) error {
	s, _, _, ok := w.live()
	if !ok {
		return ErrNotInitialized
	}
	if err := render.ExportPDF(out, render.SceneOf(s)); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// WriteDocument saves the board as a JSON document.
func (w *Whiteboard) WriteDocument(out io.Writer) error {
	s, _, _, ok := w.live()
	if !ok {
		return ErrNotInitialized
	}
	doc, err := s.Document()
	if err != nil {
		return err
	}
	return state.WriteDocument(out, doc)
}

// LoadDocument replaces the board with a saved document and shares the result
// with any peers.
func (w *Whiteboard) LoadDocument(in io.Reader) error {
	s, _, brush, ok := w.live()
	if !ok {
		return ErrNotInitialized
	}
	doc, err := state.ReadDocument(in)
	if err != nil {
		return err
	}
	w.PointerCancel()
	if err := s.Load(doc); err != nil {
		return err
	}
	// the eraser paints in the background, which the document may have changed
	brush.Configure(s.Tool())
	v := s.Viewport()
	s.Resize(v.Width, v.Height)
	w.log.Info("document loaded", zap.Int("objects", s.Len()))
	return nil
}

// Save exports the snapshot and hands it to OnSave. On failure the user is
// notified and the session is kept so they can retry or cancel.
func (w *Whiteboard) Save() error {
	data, err := w.ExportSnapshot()
	if err != nil {
		w.log.Warn("export failed", zap.Error(err))
		w.notify(SeverityError, "Could not save the sketch", err)
		return err
	}
	w.log.Info("snapshot exported", zap.Int("bytes", len(data)))
	if w.opts.OnSave != nil {
		w.opts.OnSave(data)
	}
	return nil
}

// Discard tears the session down without exporting and signals OnClose once.
func (w *Whiteboard) Discard() {
	w.mu.Lock()
	wasClosed := w.closed
	w.mu.Unlock()
	w.Teardown()
	if !wasClosed && w.opts.OnClose != nil {
		w.opts.OnClose()
	}
}

// Teardown releases the session and its listeners. A pending initial image is
// dropped when it arrives. Safe to call repeatedly.
func (w *Whiteboard) Teardown() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.session = nil
	w.shapes = nil
	w.brush = nil
	w.moving = ""
	w.closed = true
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.manager.Teardown()
}

func (w *Whiteboard) notify(sev Severity, msg string, err error) {
	w.notifier.Notify(Notice{Severity: sev, Message: msg, Err: err})
}
