package main

import (
	"fmt"
	"os"

	"SketchBoard/internal/render"
	"SketchBoard/internal/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	exportPNG        string
	exportPDF        string
	exportMultiplier float64
)

var exportCmd = &cobra.Command{
	Use:   "export <board.json>",
	Short: "Render a saved board to PNG and/or PDF without opening a window",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportPNG == "" && exportPDF == "" {
			return fmt.Errorf("nothing to do: pass --png and/or --pdf")
		}
		scene, err := loadScene(args[0])
		if err != nil {
			return err
		}
		if exportPNG != "" {
			multiplier := exportMultiplier
			if multiplier <= 0 {
				multiplier = cfg.Export.Multiplier
			}
			if err := writePNG(exportPNG, scene, multiplier); err != nil {
				return err
			}
		}
		if exportPDF != "" {
			if err := writePDF(exportPDF, scene); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPNG, "png", "", "Write a PNG snapshot to this path")
	exportCmd.Flags().StringVar(&exportPDF, "pdf", "", "Write a PDF to this path")
	exportCmd.Flags().Float64Var(&exportMultiplier, "multiplier", 0, "PNG resolution multiplier (default from config)")
}

func loadScene(path string) (render.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return render.Scene{}, err
	}
	defer f.Close()

	doc, err := state.ReadDocument(f)
	if err != nil {
		return render.Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	s := state.NewSession(state.Options{Width: doc.Width, Height: doc.Height, Background: doc.Background})
	if err := s.Load(doc); err != nil {
		return render.Scene{}, fmt.Errorf("%s: %w", path, err)
	}
	return render.SceneOf(s), nil
}

func writePNG(path string, scene render.Scene, multiplier float64) error {
	img, err := render.Snapshot(scene, multiplier)
	if err != nil {
		return err
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	logger.Info("png exported", zap.String("path", path), zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return nil
}

func writePDF(path string, scene render.Scene) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.ExportPDF(f, scene); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("pdf exported", zap.String("path", path))
	return nil
}
