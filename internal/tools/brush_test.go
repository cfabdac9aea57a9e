package tools

import (
	"testing"

	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrushConfiguration(t *testing.T) {
	s := state.NewSession(state.Options{Width: 800, Height: 600, Background: "#fafafa"})
	s.SetColor("#0000ff")
	b := NewBrush(s, nil)

	b.Configure(state.ToolPencil)
	assert.True(t, b.Enabled)
	assert.Equal(t, 5.0, b.Width)
	assert.Equal(t, "#0000ff", b.Color)

	b.Configure(state.ToolEraser)
	assert.True(t, b.Enabled)
	assert.Equal(t, 20.0, b.Width)
	assert.Equal(t, "#fafafa", b.Color)

	for _, tool := range []state.Tool{state.ToolSelect, state.ToolRect, state.ToolCircle} {
		b.Configure(tool)
		assert.False(t, b.Enabled, tool)
	}
}

func TestBrushStroke(t *testing.T) {
	s := state.NewSession(state.Options{Width: 800, Height: 600})
	b := NewBrush(s, nil)
	b.Configure(state.ToolPencil)

	b.PointerDown(state.Point{X: 10, Y: 10})
	b.PointerMove(state.Point{X: 20, Y: 5})
	assert.Len(t, b.Pending(), 2)
	id, err := b.PointerUp(state.Point{X: 30, Y: 40})
	require.NoError(t, err)

	o, ok := s.Object(id)
	require.True(t, ok)
	assert.Equal(t, state.KindPath, o.Kind)
	assert.Len(t, o.Points, 3)
	assert.Equal(t, 10.0, o.Left)
	assert.Equal(t, 5.0, o.Top)
	assert.Nil(t, b.Pending())
}

func TestBrushDropsSinglePointStroke(t *testing.T) {
	s := state.NewSession(state.Options{Width: 800, Height: 600})
	b := NewBrush(s, nil)
	b.Configure(state.ToolPencil)

	b.PointerDown(state.Point{X: 1, Y: 1})
	id, err := b.PointerUp(state.Point{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Zero(t, s.Len())
}

func TestDisabledBrushCapturesNothing(t *testing.T) {
	s := state.NewSession(state.Options{Width: 800, Height: 600})
	b := NewBrush(s, nil)
	b.Configure(state.ToolRect)

	b.PointerDown(state.Point{X: 1, Y: 1})
	b.PointerMove(state.Point{X: 2, Y: 2})
	id, err := b.PointerUp(state.Point{X: 3, Y: 3})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Zero(t, s.Len())
}

func TestEraserPaintsOverWithoutRemoving(t *testing.T) {
	s := state.NewSession(state.Options{Width: 800, Height: 600})
	under, err := s.Add(state.Object{Kind: state.KindRect, Width: 100, Height: 100})
	require.NoError(t, err)
	b := NewBrush(s, nil)
	b.Configure(state.ToolEraser)

	b.PointerDown(state.Point{X: 0, Y: 50})
	id, err := b.PointerUp(state.Point{X: 100, Y: 50})
	require.NoError(t, err)

	objects := s.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, under, objects[0].ID)
	assert.Equal(t, id, objects[1].ID)
	assert.Equal(t, state.DefaultBackground, objects[1].Stroke)
}
