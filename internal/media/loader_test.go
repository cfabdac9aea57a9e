package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadHTTP(t *testing.T) {
	data := pngBytes(t, 8, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seed.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader(nil)
	img, err := l.Load(context.Background(), srv.URL+"/seed.png")
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())

	_, err = l.Load(context.Background(), srv.URL+"/missing.png")
	assert.Error(t, err)
}

func TestLoadFileAndDataURL(t *testing.T) {
	data := pngBytes(t, 3, 5)
	path := filepath.Join(t.TempDir(), "seed.png")
	require.NoError(t, os.WriteFile(path, data, 0600))

	l := NewLoader(nil)
	for _, src := range []string{
		path,
		"file://" + path,
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
	} {
		img, err := l.Load(context.Background(), src)
		require.NoError(t, err, src)
		assert.Equal(t, image.Rect(0, 0, 3, 5), img.Bounds())
	}
}

func TestLoadCorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0600))

	_, err := NewLoader(nil).Load(context.Background(), path)
	assert.Error(t, err)
}

func TestLoadRejectsUnknownScheme(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), "ftp://example.com/a.png")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestLoadEnforcesLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 64, 64), 0600))

	l := NewLoader(nil)
	l.MaxBytes = 16
	_, err := l.Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestLoadHonoursContext(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLoader(nil).Load(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
