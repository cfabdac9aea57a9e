package ui

import (
	"SketchBoard/internal/board"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// statusNotifier shows notices in the status bar and pops a dismissible dialog
// for errors. Safe to call from any goroutine.
type statusNotifier struct {
	window fyne.Window
	status *widget.Label
}

func (n *statusNotifier) Notify(notice board.Notice) {
	fyne.Do(func() {
		n.status.SetText(notice.String())
		if notice.Severity == board.SeverityError && n.window != nil {
			err := notice.Err
			if err == nil {
				err = errorString(notice.Message)
			}
			dialog.ShowError(err, n.window)
		}
	})
}

type errorString string

func (e errorString) Error() string { return string(e) }
