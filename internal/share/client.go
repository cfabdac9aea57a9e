package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Client is a peer connected to a host's hub.
type Client struct {
	// Dispatch applies remote ops on the UI thread. Defaults to calling fn directly.
	Dispatch func(fn func())

	session *state.Session
	log     *zap.Logger
	conn    *websocket.Conn
	addr    string

	send      chan Message
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial connects to the hub at addr (host:port). Call Run to start receiving.
func Dial(ctx context.Context, addr string, session *state.Session, log *zap.Logger) (*Client, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: Path}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", addr, err)
	}
	c := &Client{
		session: session,
		log:     logging.Component(log, "share-client").With(zap.String("host", addr)),
		conn:    conn,
		addr:    addr,
		send:    make(chan Message, sendQueue),
		done:    make(chan struct{}),
	}
	c.wg.Add(1)
	go c.writeLoop()
	c.log.Info("connected to host")
	return c, nil
}

// Publish sends a local op to the host. If the queue is full the connection is
// closed, since a peer that missed ops has diverged.
func (c *Client) Publish(op state.Op) {
	msg := Message{Type: MsgOps, Ops: []state.Op{op}}
	select {
	case <-c.done:
	case c.send <- msg:
	default:
		c.log.Warn("send queue full, disconnecting")
		go c.Close()
	}
}

// Run receives ops from the host until the connection ends or ctx is canceled.
// It returns ErrClosed after Close.
func (c *Client) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			select {
			case <-c.done:
				return ErrClosed
			default:
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read from %s: %w", c.addr, err)
		}
		c.dispatch(func() {
			changed, err := apply(c.session, msg)
			if err != nil {
				c.log.Warn("bad op from host", zap.Error(err))
			}
			if msg.Type == MsgSnapshot {
				c.log.Info("received board", zap.Int("objects", len(msg.Ops)), zap.Bool("changed", changed))
			}
		})
	}
}

// Close disconnects from the host. Safe to call repeatedly.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.wg.Wait()
		deadline := time.Now().Add(writeWait)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if werr := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
			c.log.Debug("close handshake failed", zap.Error(werr))
		}
		err = c.conn.Close()
		c.log.Info("disconnected from host")
	})
	return err
}

func (c *Client) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Warn("write to host failed", zap.Error(err))
				return
			}
		}
	}
}

func (c *Client) dispatch(fn func()) {
	if c.Dispatch != nil {
		c.Dispatch(fn)
		return
	}
	fn()
}
