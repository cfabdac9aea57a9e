package board

import (
	"sync"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"

	"go.uber.org/zap"
)

// Fallback size used when the surface reports no size, e.g. when run standalone.
const (
	FallbackWidth  = 1024
	FallbackHeight = 768
)

// Keys that delete the selected object.
const (
	KeyDelete    = "Delete"
	KeyBackspace = "BackSpace"
)

// Surface is the host region the canvas renders into.
type Surface interface {
	// Attached reports whether the surface exists and can be drawn on.
	Attached() bool
	Dimensions() (width, height float64)
	// OnResize and OnKey register listeners; the returned func deregisters.
	OnResize(func(width, height float64)) (cancel func())
	OnKey(func(key string)) (cancel func())
}

// Manager owns creation, resize and teardown of the canvas session.
type Manager struct {
	mu      sync.Mutex
	log     *zap.Logger
	opts    state.Options
	session *state.Session
	cancels []func()
}

// NewManager creates a manager; opts seeds every session it creates.
func NewManager(opts state.Options, log *zap.Logger) *Manager {
	return &Manager{opts: opts, log: logging.Component(log, "lifecycle")}
}

// Initialize binds a new session to surface. It returns ErrSurfaceDetached and does
// nothing when the surface is missing; callers retry once it is mounted. Calling it
// again before Teardown returns the live session without registering listeners twice.
func (m *Manager) Initialize(surface Surface) (*state.Session, error) {
	if surface == nil || !surface.Attached() {
		m.log.Debug("surface not attached, deferring initialization")
		return nil, ErrSurfaceDetached
	}

	m.mu.Lock()
	if m.session != nil {
		s := m.session
		m.mu.Unlock()
		return s, nil
	}

	opts := m.opts
	w, h := surface.Dimensions()
	if w <= 0 || h <= 0 {
		w, h = opts.Width, opts.Height
	}
	if w <= 0 || h <= 0 {
		w, h = FallbackWidth, FallbackHeight
	}
	opts.Width, opts.Height = w, h

	s := state.NewSession(opts)
	s.SetBeforeAdd(m.OnObjectAdded)
	m.session = s
	m.mu.Unlock()

	// listeners may fire as soon as they are registered, so register unlocked
	cancels := []func(){surface.OnResize(m.Resize), surface.OnKey(m.onKey)}
	m.mu.Lock()
	if m.session != s {
		m.mu.Unlock()
		for _, cancel := range cancels {
			cancel()
		}
		return nil, ErrSurfaceDetached
	}
	m.cancels = append(m.cancels, cancels...)
	m.mu.Unlock()

	m.log.Info("canvas initialized", zap.Float64("width", w), zap.Float64("height", h))
	return s, nil
}

// Session returns the live session, or nil.
func (m *Manager) Session() *state.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// OnObjectAdded runs for every object entering the session before anything else
// observes it, and gives it an id when it has none.
func (m *Manager) OnObjectAdded(o *state.Object) {
	if o.ID == "" {
		state.AssignID(o)
		m.log.Debug("assigned object id", zap.String("id", o.ID), zap.String("kind", string(o.Kind)))
	}
}

// Resize refits the viewport to the new container size.
func (m *Manager) Resize(width, height float64) {
	s := m.Session()
	if s == nil {
		return
	}
	v := s.Resize(width, height)
	m.log.Debug("canvas resized",
		zap.Float64("width", width), zap.Float64("height", height), zap.Float64("zoom", v.Zoom))
}

func (m *Manager) onKey(key string) {
	if key != KeyDelete && key != KeyBackspace {
		return
	}
	s := m.Session()
	if s == nil {
		return
	}
	id := s.Selected()
	if s.DeleteSelected() {
		m.log.Debug("deleted selected object", zap.String("id", id))
	}
}

// Teardown deregisters every listener and drops the session. Safe to call repeatedly.
func (m *Manager) Teardown() {
	m.mu.Lock()
	cancels := m.cancels
	m.cancels = nil
	wasLive := m.session != nil
	m.session = nil
	m.mu.Unlock()

	for _, cancel := range cancels {
		if cancel != nil {
			cancel()
		}
	}
	if wasLive {
		m.log.Info("canvas torn down")
	}
}
