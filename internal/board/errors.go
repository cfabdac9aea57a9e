// Package board hosts the whiteboard: the canvas lifecycle manager that binds a
// session to a host surface, and the container that composes the drawing tools,
// seeds the canvas with an image and exports snapshots.
package board

import (
	"errors"
	"fmt"
)

var (
	// ErrSurfaceDetached means there is no surface to draw on yet; retry after mount.
	ErrSurfaceDetached = errors.New("surface not attached")
	ErrNotInitialized  = errors.New("whiteboard not initialized")
	ErrImageDecode     = errors.New("could not load initial image")
	ErrExportFailed    = errors.New("could not export snapshot")
)

// Severity of a user-facing notice.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityError
)

// Notice is a dismissible, non-blocking message for the user.
type Notice struct {
	Severity Severity
	Message  string
	Err      error
}

func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s: %v", n.Message, n.Err)
	}
	return n.Message
}

// Notifier surfaces recoverable errors to the user.
type Notifier interface {
	Notify(Notice)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}
