package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"SketchBoard/internal/board"
	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const mountRetry = 100 * time.Millisecond

// AppOptions configures the editor window.
type AppOptions struct {
	Title  string
	Status string
	Board  board.Options
	Logger *zap.Logger

	// OnSession runs once the canvas exists, e.g. to start sharing. The returned
	// func, if any, runs when the window closes.
	OnSession func(s *state.Session, status func(string)) func()
}

// RunApp opens the editor window and blocks until it is closed.
func RunApp(opts AppOptions) {
	log := logging.Component(opts.Logger, "app")
	if opts.Title == "" {
		opts.Title = "SketchBoard"
	}

	a := app.NewWithID("io.sketchboard")
	w := a.NewWindow(opts.Title)

	status := widget.NewLabel(opts.Status)
	setStatus := func(text string) { fyne.Do(func() { status.SetText(text) }) }

	bopts := opts.Board
	bopts.Logger = opts.Logger
	bopts.Notifier = &statusNotifier{window: w, status: status}
	bopts.Dispatch = fyne.Do
	onSave, onClose := bopts.OnSave, bopts.OnClose
	bopts.OnSave = func(png []byte) {
		if onSave != nil {
			onSave(png)
		}
		setStatus(fmt.Sprintf("Saved snapshot (%d bytes)", len(png)))
	}
	bopts.OnClose = func() {
		if onClose != nil {
			onClose()
		}
		w.Close()
	}

	wb := board.New(bopts)
	surface := NewBoardWidget(wb, opts.Logger)
	toolbar := NewToolbar(wb, fileActions(w, wb, setStatus))

	w.SetContent(container.NewBorder(toolbar.CanvasObject(), status, nil, nil, surface))
	if bopts.Canvas.Width > 0 && bopts.Canvas.Height > 0 {
		w.Resize(fyne.NewSize(float32(bopts.Canvas.Width), float32(bopts.Canvas.Height)))
	}
	// Delete works even when the canvas does not have focus
	w.Canvas().SetOnTypedKey(surface.TypedKey)

	var cleanup func()
	var mount func()
	mount = func() {
		err := wb.Initialize(context.Background(), surface)
		if errors.Is(err, board.ErrSurfaceDetached) {
			time.AfterFunc(mountRetry, func() { fyne.Do(mount) })
			return
		}
		if err != nil {
			log.Error("initialize canvas", zap.Error(err))
			return
		}
		s := wb.Session()
		s.OnChange(func() { fyne.Do(surface.Refresh) })
		toolbar.Sync(s)
		surface.Refresh()
		if opts.OnSession != nil {
			cleanup = opts.OnSession(s, setStatus)
		}
	}
	a.Lifecycle().SetOnStarted(mount)

	w.SetCloseIntercept(wb.Discard)
	w.SetOnClosed(func() {
		if cleanup != nil {
			cleanup()
		}
		wb.Teardown()
	})
	w.ShowAndRun()
}

// fileActions wires the toolbar's file buttons to fyne dialogs.
func fileActions(w fyne.Window, wb *board.Whiteboard, status func(string)) Actions {
	return Actions{
		Save:  func() { _ = wb.Save() },
		Close: wb.Discard,
		SaveBoard: func() {
			saveDialog(w, "board.json", ".json", func(out io.Writer) error {
				return wb.WriteDocument(out)
			}, status)
		},
		ExportPDF: func() {
			saveDialog(w, "board.pdf", ".pdf", wb.ExportPDF, status)
		},
		OpenBoard: func() {
			d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(err, w)
					return
				}
				if r == nil {
					return
				}
				defer r.Close()
				if err := wb.LoadDocument(r); err != nil {
					dialog.ShowError(err, w)
					return
				}
				status(fmt.Sprintf("Opened %s", r.URI().Name()))
			}, w)
			d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
			d.Show()
		},
	}
}

func saveDialog(w fyne.Window, name, ext string, write func(io.Writer) error, status func(string)) {
	d := dialog.NewFileSave(func(out fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if out == nil {
			return
		}
		werr := write(out)
		if cerr := out.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			dialog.ShowError(werr, w)
			return
		}
		status(fmt.Sprintf("Saved %s", out.URI().Name()))
	}, w)
	d.SetFileName(name)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}
