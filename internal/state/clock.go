package state

import (
	"sync"

	"github.com/google/uuid"
)

// OpType names a change that can be replayed on another session.
type OpType string

const (
	OpPut    OpType = "put"    // insert or replace an object
	OpDelete OpType = "delete" // remove the object with Target id
	OpClear  OpType = "clear"  // remove every object, then set Background if given
)

// Op is one change to a session, stamped with a Lamport time and its origin site.
type Op struct {
	Type       OpType  `json:"type"`
	Object     *Object `json:"object,omitempty"`
	Target     string  `json:"target,omitempty"`
	Index      int     `json:"index,omitempty"`      // insertion index for put; -1 appends
	Background string  `json:"background,omitempty"` // board background after a clear
	Lamport    uint64  `json:"lamport"`
	Site       string  `json:"site"`
}

// Clock is a Lamport clock.
type Clock struct {
	mu      sync.Mutex
	counter uint64
}

// Tick increments the clock and returns the new value
func (c *Clock) Tick() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter
}

// Witness moves the clock past a timestamp received from another site.
func (c *Clock) Witness(ts uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts > c.counter {
		c.counter = ts
	}
}

// Now returns the current value without advancing it.
func (c *Clock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

func newSiteID() string {
	return uuid.NewString()
}
