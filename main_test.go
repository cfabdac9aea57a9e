package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"SketchBoard/internal/config"
	"SketchBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBoard(t *testing.T, dir string) string {
	t.Helper()
	s := state.NewSession(state.Options{Width: 200, Height: 100})
	_, err := s.Add(state.Object{Kind: state.KindRect, Left: 10, Top: 10, Width: 50, Height: 20, Stroke: "#ff0000", StrokeWidth: 2})
	require.NoError(t, err)
	doc, err := s.Document()
	require.NoError(t, err)

	path := filepath.Join(dir, "board.json")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, state.WriteDocument(f, doc))
	return path
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	board := writeBoard(t, dir)
	pngPath := filepath.Join(dir, "out.png")
	pdfPath := filepath.Join(dir, "out.pdf")

	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"export", board, "--png", pngPath, "--pdf", pdfPath,
	})
	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(pngPath)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	pdf, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestExportRequiresOutput(t *testing.T) {
	dir := t.TempDir()
	exportPNG, exportPDF = "", ""
	rootCmd.SetArgs([]string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"export", writeBoard(t, dir),
	})
	assert.Error(t, rootCmd.Execute())
}

func TestJoinRejectsBadLink(t *testing.T) {
	dir := t.TempDir()
	rootCmd.SetArgs([]string{"--config", filepath.Join(dir, "missing.yaml"), "join", "localboard://10.0.0.1:8888"})
	assert.Error(t, rootCmd.Execute())
}

func TestConfigCommandWritesEffectiveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sketchboard", "config.yaml")
	t.Setenv("SKETCHBOARD_COLOR", "#336699")

	rootCmd.SetArgs([]string{"--config", path, "config"})
	require.NoError(t, rootCmd.Execute())
	require.FileExists(t, path)
	require.NoError(t, os.Unsetenv("SKETCHBOARD_COLOR"))

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "#336699", loaded.Canvas.Color)
	assert.Equal(t, config.DefaultConfig().Share.Port, loaded.Share.Port)
}
