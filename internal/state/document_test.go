package state

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRoundTripKeepsIDsAndImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	src.Set(1, 1, color.RGBA{R: 255, A: 255})

	s := NewSession(Options{Width: 400, Height: 300})
	imgID, err := s.Add(Object{Kind: KindImage, ScaleX: 100, ScaleY: 150, Image: src})
	require.NoError(t, err)
	pathID, err := s.Add(Object{Kind: KindPath, Points: []Point{{0, 0}, {5, 5}}, Stroke: "#00ff00", StrokeWidth: 5})
	require.NoError(t, err)

	doc, err := s.Document()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, WriteDocument(&buf, doc))

	parsed, err := ReadDocument(&buf)
	require.NoError(t, err)
	restored := NewSession(Options{Width: parsed.Width, Height: parsed.Height})
	require.NoError(t, restored.Load(parsed))

	objects := restored.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, imgID, objects[0].ID)
	assert.Equal(t, pathID, objects[1].ID)
	require.NotNil(t, objects[0].Image)
	assert.Equal(t, src.Bounds(), objects[0].Image.Bounds())
	r, _, _, _ := objects[0].Image.At(1, 1).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 400, Height: 300}, objects[0].Bounds())
}

func TestReadDocumentRejectsGarbage(t *testing.T) {
	_, err := ReadDocument(bytes.NewBufferString("{not json"))
	assert.Error(t, err)
}

func TestLoadRejectsBadDocumentWithoutChanges(t *testing.T) {
	docs := map[string]Document{
		"bad image": {Objects: []Object{
			{ID: "r1", Kind: KindRect, Width: 5, Height: 5},
			{ID: "img1", Kind: KindImage, ScaleX: 1, ScaleY: 1, ImageData: []byte("not an image")},
		}},
		"duplicate ids": {Objects: []Object{
			{ID: "a", Kind: KindRect, Width: 5, Height: 5},
			{ID: "a", Kind: KindCircle, Radius: 3},
		}},
	}
	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			s := NewSession(Options{Width: 400, Height: 300})
			keep, err := s.Add(Object{Kind: KindRect, Width: 10, Height: 10})
			require.NoError(t, err)
			var ops []Op
			s.OnLocalOp(func(op Op) { ops = append(ops, op) })
			doc.Background = "#123456"

			assert.Error(t, s.Load(doc))

			objects := s.Objects()
			require.Len(t, objects, 1)
			assert.Equal(t, keep, objects[0].ID)
			assert.Equal(t, DefaultBackground, s.Background())
			assert.Empty(t, ops)
		})
	}
	s := NewSession(Options{})
	err := s.Load(Document{Objects: []Object{{ID: "a", Kind: KindRect}, {ID: "a", Kind: KindRect}}})
	assert.ErrorIs(t, err, ErrDuplicateID)
}

func TestLoadSharesBackgroundWithPeers(t *testing.T) {
	local := NewSession(Options{Width: 400, Height: 300})
	remote := NewSession(Options{Width: 400, Height: 300})
	_, _ = remote.Add(Object{Kind: KindCircle, Radius: 4})
	var ops []Op
	local.OnLocalOp(func(op Op) { ops = append(ops, op) })

	require.NoError(t, local.Load(Document{
		Background: "#fafafa",
		Objects:    []Object{{ID: "r1", Kind: KindRect, Width: 5, Height: 5}},
	}))
	require.Len(t, ops, 2)
	assert.Equal(t, OpClear, ops[0].Type)
	assert.Equal(t, "#fafafa", ops[0].Background)

	for _, op := range ops {
		_, err := remote.Apply(op)
		require.NoError(t, err)
	}
	assert.Equal(t, "#fafafa", remote.Background())
	objects := remote.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, "r1", objects[0].ID)
}
