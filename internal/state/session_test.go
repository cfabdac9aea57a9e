package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *Session {
	return NewSession(Options{Width: 800, Height: 600})
}

func rect(x, y, w, h float64) Object {
	return Object{Kind: KindRect, Left: x, Top: y, Width: w, Height: h, Stroke: DefaultColor, StrokeWidth: 2}
}

func TestAddAssignsUniqueIDs(t *testing.T) {
	s := newTestSession()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := s.Add(rect(float64(i), 0, 10, 10))
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "id %s reused", id)
		seen[id] = true
	}
	for _, o := range s.Objects() {
		assert.True(t, seen[o.ID])
	}
}

func TestAddKeepsSuppliedID(t *testing.T) {
	s := newTestSession()
	o := rect(0, 0, 1, 1)
	o.ID = "fixed"
	id, err := s.Add(o)
	require.NoError(t, err)
	assert.Equal(t, "fixed", id)

	_, err = s.Add(o)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestBeforeAddHookSeesObjectFirst(t *testing.T) {
	s := newTestSession()
	var hooked []string
	s.SetBeforeAdd(func(o *Object) {
		AssignID(o)
		hooked = append(hooked, o.ID)
	})
	var observed int
	s.OnChange(func() { observed = s.Len() })

	id, err := s.Add(rect(0, 0, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{id}, hooked)
	assert.Equal(t, 1, observed)
}

func TestIDAssignedEvenWhenHookSkipsIt(t *testing.T) {
	s := newTestSession()
	s.SetBeforeAdd(func(*Object) {})
	id, err := s.Add(rect(0, 0, 1, 1))
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestUndoIsLastInFirstOut(t *testing.T) {
	s := newTestSession()
	var ids []string
	for i := 0; i < 5; i++ {
		id, err := s.Add(rect(float64(i), 0, 1, 1))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	for i := len(ids) - 1; i >= 0; i-- {
		assert.NotZero(t, s.Len())
		undone, ok := s.Undo()
		require.True(t, ok)
		assert.Equal(t, ids[i], undone.ID)
	}
	assert.Zero(t, s.Len())

	_, ok := s.Undo()
	assert.False(t, ok)
}

func TestClearEmptiesAndKeepsTool(t *testing.T) {
	s := newTestSession()
	s.SetTool(ToolRect)
	s.SetBackground("#ff0000")
	_, err := s.Add(rect(0, 0, 5, 5))
	require.NoError(t, err)

	active := s.SetTool(ToolClear)

	assert.Equal(t, ToolRect, active)
	assert.Equal(t, ToolRect, s.Tool())
	assert.Zero(t, s.Len())
	assert.Equal(t, DefaultBackground, s.Background())
}

func TestSelectModeToggling(t *testing.T) {
	s := newTestSession()
	_, err := s.Add(rect(0, 0, 5, 5))
	require.NoError(t, err)

	s.SetTool(ToolSelect)
	for _, o := range s.Objects() {
		assert.True(t, o.Selectable)
	}

	_, err = s.Add(rect(10, 10, 5, 5))
	require.NoError(t, err)
	for _, o := range s.Objects() {
		assert.True(t, o.Selectable)
	}

	s.SetTool(ToolPencil)
	for _, o := range s.Objects() {
		assert.False(t, o.Selectable)
	}
}

func TestDeleteSelectedIgnoresTool(t *testing.T) {
	s := newTestSession()
	a, _ := s.Add(rect(0, 0, 5, 5))
	b, _ := s.Add(rect(10, 10, 5, 5))

	assert.False(t, s.DeleteSelected())

	s.SetTool(ToolSelect)
	require.True(t, s.Select(a))
	s.mu.Lock()
	s.tool = ToolCircle // tool changes without going through SetTool keep the selection
	s.mu.Unlock()

	assert.True(t, s.DeleteSelected())
	objects := s.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, b, objects[0].ID)
	assert.Empty(t, s.Selected())
}

func TestSelectRequiresSelectable(t *testing.T) {
	s := newTestSession()
	id, _ := s.Add(rect(0, 0, 5, 5))
	assert.False(t, s.Select(id))
	s.SetTool(ToolSelect)
	assert.True(t, s.Select(id))
	s.SetTool(ToolPencil)
	assert.Empty(t, s.Selected())
}

func TestObjectAtReturnsTopmost(t *testing.T) {
	s := newTestSession()
	_, _ = s.Add(rect(0, 0, 100, 100))
	top, _ := s.Add(rect(40, 40, 20, 20))

	o, ok := s.ObjectAt(Point{X: 50, Y: 50})
	require.True(t, ok)
	assert.Equal(t, top, o.ID)

	_, ok = s.ObjectAt(Point{X: 500, Y: 500})
	assert.False(t, ok)
}

func TestMoveTranslatesPath(t *testing.T) {
	s := newTestSession()
	id, _ := s.Add(Object{Kind: KindPath, Points: []Point{{1, 1}, {3, 4}}})
	require.NoError(t, s.Move(id, 10, 20))
	o, ok := s.Object(id)
	require.True(t, ok)
	assert.Equal(t, []Point{{11, 21}, {13, 24}}, o.Points)
}

func TestUpdateKeepsID(t *testing.T) {
	s := newTestSession()
	id, _ := s.Add(rect(0, 0, 1, 1))
	require.NoError(t, s.Update(id, func(o *Object) {
		o.ID = "other"
		o.Width = 9
	}))
	o, ok := s.Object(id)
	require.True(t, ok)
	assert.Equal(t, 9.0, o.Width)

	assert.ErrorIs(t, s.Update("missing", func(*Object) {}), ErrNotFound)
}

func TestInsertAtBottom(t *testing.T) {
	s := newTestSession()
	top, _ := s.Add(rect(0, 0, 1, 1))
	bottom, _ := s.Insert(0, rect(0, 0, 2, 2))
	objects := s.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, bottom, objects[0].ID)
	assert.Equal(t, top, objects[1].ID)
}

func TestLocalOpsAndRemoteApply(t *testing.T) {
	local := newTestSession()
	remote := newTestSession()
	var ops []Op
	local.OnLocalOp(func(op Op) { ops = append(ops, op) })

	id, _ := local.Add(rect(1, 2, 3, 4))
	require.NoError(t, local.Commit(id))
	other, _ := local.Add(rect(5, 5, 5, 5))
	require.NoError(t, local.Commit(other))
	local.Remove(id)

	require.Len(t, ops, 3)
	assert.Equal(t, OpPut, ops[0].Type)
	assert.Equal(t, OpDelete, ops[2].Type)
	assert.Less(t, ops[0].Lamport, ops[1].Lamport)

	for _, op := range ops {
		_, err := remote.Apply(op)
		require.NoError(t, err)
	}
	objects := remote.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, other, objects[0].ID)

	// duplicates are merged, not appended
	changed, err := remote.Apply(ops[1])
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, remote.Len())

	// our own ops echoed back are ignored
	changed, err = local.Apply(ops[1])
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApplyClear(t *testing.T) {
	s := newTestSession()
	_, _ = s.Add(rect(0, 0, 1, 1))
	changed, err := s.Apply(Op{Type: OpClear, Site: "peer", Lamport: 7})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Zero(t, s.Len())
	assert.Equal(t, uint64(7), s.clock.Now())

	_, err = s.Apply(Op{Type: OpClear, Site: "peer", Lamport: 8, Background: "#eeeeee"})
	require.NoError(t, err)
	assert.Equal(t, "#eeeeee", s.Background())
}
