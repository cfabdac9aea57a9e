package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

const (
	DefaultBackground = "#ffffff"
	DefaultColor      = "#000000"
)

var (
	ErrDuplicateID = errors.New("duplicate object id")
	ErrNotFound    = errors.New("object not found")
)

// Options seeds a new Session.
type Options struct {
	Width      float64
	Height     float64
	Background string
	Color      string
	Tool       Tool
}

// Session is the in-memory state of one whiteboard mount: the ordered objects
// (creation order is z-order, last is topmost), the active tool and color, and
// the viewport.
type Session struct {
	mu                sync.RWMutex
	objects           []*Object
	tool              Tool
	color             string
	background        string
	defaultBackground string
	viewport          Viewport
	selected          string

	site  string
	clock Clock

	beforeAdd func(*Object)
	onOp      func(Op)
	onChange  func()
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	if opts.Background == "" {
		opts.Background = DefaultBackground
	}
	if opts.Color == "" {
		opts.Color = DefaultColor
	}
	if opts.Tool == "" || opts.Tool == ToolClear {
		opts.Tool = ToolPencil
	}
	return &Session{
		tool:              opts.Tool,
		color:             opts.Color,
		background:        opts.Background,
		defaultBackground: opts.Background,
		viewport:          NewViewport(opts.Width, opts.Height),
		site:              newSiteID(),
		beforeAdd:         AssignID,
	}
}

// AssignID gives o a fresh unique id if it has none.
func AssignID(o *Object) {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
}

// SetBeforeAdd replaces the hook run on every object entering the session, before
// any other consumer can observe it. AssignID always runs after the hook, so the
// id invariant holds whatever the hook does.
func (s *Session) SetBeforeAdd(fn func(*Object)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beforeAdd = fn
}

// OnLocalOp registers the callback receiving committed local changes.
func (s *Session) OnLocalOp(fn func(Op)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOp = fn
}

// OnChange registers a callback fired after any visible change.
func (s *Session) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Site returns the id identifying this session to peers.
func (s *Session) Site() string {
	return s.site
}

// Add appends o on top of the z-order and returns its id.
func (s *Session) Add(o Object) (string, error) {
	return s.Insert(-1, o)
}

// Insert places o at index in the z-order (0 is bottom-most, -1 appends).
func (s *Session) Insert(index int, o Object) (string, error) {
	s.mu.Lock()
	id, err := s.insertLocked(index, o)
	s.mu.Unlock()
	if err != nil {
		return "", err
	}
	s.changed()
	return id, nil
}

func (s *Session) insertLocked(index int, o Object) (string, error) {
	obj := o.Clone()
	if s.beforeAdd != nil {
		s.beforeAdd(&obj)
	}
	AssignID(&obj)
	if s.indexOf(obj.ID) >= 0 {
		return "", fmt.Errorf("add %s: %w", obj.ID, ErrDuplicateID)
	}
	obj.Selectable = s.tool == ToolSelect
	if index < 0 || index >= len(s.objects) {
		s.objects = append(s.objects, &obj)
	} else {
		s.objects = append(s.objects, nil)
		copy(s.objects[index+1:], s.objects[index:])
		s.objects[index] = &obj
	}
	return obj.ID, nil
}

// Update mutates the object with the given id in place.
func (s *Session) Update(id string, fn func(*Object)) error {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	keepID := s.objects[i].ID
	fn(s.objects[i])
	s.objects[i].ID = keepID
	s.mu.Unlock()
	s.changed()
	return nil
}

// Commit publishes the current state of an object to peers.
func (s *Session) Commit(id string) error {
	s.mu.RLock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.RUnlock()
		return fmt.Errorf("commit %s: %w", id, ErrNotFound)
	}
	obj := s.objects[i].Clone()
	s.mu.RUnlock()
	s.publish(Op{Type: OpPut, Object: &obj, Index: i})
	return nil
}

// Remove deletes the object with the given id.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.removeLocked(id)
	s.mu.Unlock()
	if !ok {
		return false
	}
	s.publish(Op{Type: OpDelete, Target: id})
	s.changed()
	return true
}

func (s *Session) removeLocked(id string) (*Object, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return nil, false
	}
	obj := s.objects[i]
	s.objects = append(s.objects[:i], s.objects[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	return obj, true
}

// Undo removes the most recently added object and returns it.
func (s *Session) Undo() (Object, bool) {
	s.mu.Lock()
	if len(s.objects) == 0 {
		s.mu.Unlock()
		return Object{}, false
	}
	last := s.objects[len(s.objects)-1]
	s.removeLocked(last.ID)
	s.mu.Unlock()

	s.publish(Op{Type: OpDelete, Target: last.ID})
	s.changed()
	return *last, true
}

// Clear removes every object and restores the default background.
// The active tool is left untouched.
func (s *Session) Clear() {
	s.mu.Lock()
	s.clearLocked()
	background := s.background
	s.mu.Unlock()
	s.publish(Op{Type: OpClear, Background: background})
	s.changed()
}

func (s *Session) clearLocked() {
	s.objects = nil
	s.selected = ""
	s.background = s.defaultBackground
}

// Objects returns a snapshot of all objects in z-order.
func (s *Session) Objects() []Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Object, 0, len(s.objects))
	for _, o := range s.objects {
		out = append(out, o.Clone())
	}
	return out
}

// Object returns a copy of the object with the given id.
func (s *Session) Object(id string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return Object{}, false
	}
	return s.objects[i].Clone(), true
}

// Len returns the number of objects.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *Session) Tool() Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tool
}

// SetTool switches the active tool and returns the tool active afterwards.
// ToolClear empties the canvas and keeps the previous tool.
func (s *Session) SetTool(t Tool) Tool {
	if t == ToolClear {
		s.Clear()
		return s.Tool()
	}
	s.mu.Lock()
	s.tool = t
	selectable := t == ToolSelect
	for _, o := range s.objects {
		o.Selectable = selectable
	}
	if !selectable {
		s.selected = ""
	}
	s.mu.Unlock()
	s.changed()
	return t
}

func (s *Session) Color() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.color
}

func (s *Session) SetColor(c string) {
	s.mu.Lock()
	s.color = c
	s.mu.Unlock()
}

func (s *Session) Background() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.background
}

func (s *Session) SetBackground(c string) {
	s.mu.Lock()
	s.background = c
	s.mu.Unlock()
	s.changed()
}

func (s *Session) Viewport() Viewport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport
}

// Resize refits the viewport to a container of the given size.
func (s *Session) Resize(width, height float64) Viewport {
	s.mu.Lock()
	box, ok := contentBounds(s.objects)
	s.viewport = Fit(width, height, box, ok)
	v := s.viewport
	s.mu.Unlock()
	s.changed()
	return v
}

// ObjectAt returns the topmost object whose bounds contain p.
func (s *Session) ObjectAt(p Point) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.objects) - 1; i >= 0; i-- {
		o := s.objects[i]
		if o.Bounds().Inflate(o.StrokeWidth / 2).Contains(p) {
			return o.Clone(), true
		}
	}
	return Object{}, false
}

// Select marks an object as selected. Only selectable objects can be selected.
func (s *Session) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 || !s.objects[i].Selectable {
		return false
	}
	s.selected = id
	return true
}

// Deselect clears the selection.
func (s *Session) Deselect() {
	s.mu.Lock()
	s.selected = ""
	s.mu.Unlock()
}

// Selected returns the selected object id, or "".
func (s *Session) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// DeleteSelected removes the selected object. It does not depend on the active tool.
func (s *Session) DeleteSelected() bool {
	id := s.Selected()
	if id == "" {
		return false
	}
	return s.Remove(id)
}

// Move translates an object by (dx, dy).
func (s *Session) Move(id string, dx, dy float64) error {
	return s.Update(id, func(o *Object) { o.Translate(dx, dy) })
}

func (s *Session) indexOf(id string) int {
	for i, o := range s.objects {
		if o.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) publish(op Op) {
	op.Lamport = s.clock.Tick()
	op.Site = s.site
	s.mu.RLock()
	fn := s.onOp
	s.mu.RUnlock()
	if fn != nil {
		fn(op)
	}
}

func (s *Session) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}
