// Package share lets several SketchBoard windows on a LAN edit one board. The host
// runs a websocket hub that relays ops between peers; peers find it through a
// sketchboard:// link or mDNS.
package share

import (
	"errors"
	"time"

	"SketchBoard/internal/state"
)

const (
	// Path is the websocket endpoint served by the hub.
	Path = "/board"

	writeWait = 10 * time.Second
	sendQueue = 64
)

var (
	ErrClosed  = errors.New("share connection closed")
	ErrBadLink = errors.New("invalid share link")
)

// MessageType tags a frame on the wire.
type MessageType string

const (
	MsgOps      MessageType = "ops"      // ops made by the sender
	MsgSnapshot MessageType = "snapshot" // full board sent to a peer that just joined
)

// Message is a single JSON frame exchanged between hub and peers.
type Message struct {
	Type MessageType `json:"type"`
	Ops  []state.Op  `json:"ops"`
}

// apply merges msg into session and reports whether anything changed.
func apply(session *state.Session, msg Message) (bool, error) {
	var (
		changed bool
		errs    []error
	)
	for _, op := range msg.Ops {
		ok, err := session.Apply(op)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		changed = changed || ok
	}
	return changed, errors.Join(errs...)
}
