package share

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"SketchBoard/internal/logging"
	"SketchBoard/internal/state"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub is run by the host. It owns the authoritative session, sends a snapshot to
// every peer that joins and relays each peer's ops to all the others.
type Hub struct {
	// Dispatch applies remote ops on the UI thread. Defaults to calling fn directly.
	Dispatch func(fn func())

	session  *state.Session
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu     sync.Mutex
	peers  map[*peer]struct{}
	server *http.Server
	closed bool
	wg     sync.WaitGroup
}

type peer struct {
	conn *websocket.Conn
	send chan Message
	addr string
}

// NewHub creates a hub for session. Wire session.OnLocalOp to Publish so local
// edits reach the peers.
func NewHub(session *state.Session, log *zap.Logger) *Hub {
	return &Hub{
		session: session,
		log:     logging.Component(log, "share-hub"),
		peers:   make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// peers are other SketchBoard processes, not browsers
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Listen serves the hub on addr (e.g. ":8888") until Close and returns the bound address.
func (h *Hub) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		ln.Close()
		return nil, ErrClosed
	}
	h.server = srv
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.log.Error("share server stopped", zap.Error(err))
		}
	}()
	h.log.Info("share hub listening", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

// ServeHTTP upgrades a peer connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}
	p := &peer{conn: conn, send: make(chan Message, sendQueue), addr: r.RemoteAddr}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	// snapshot and registration happen together so no op falls between them
	p.send <- Message{Type: MsgSnapshot, Ops: h.session.Snapshot()}
	h.peers[p] = struct{}{}
	h.wg.Add(2)
	count := len(h.peers)
	h.mu.Unlock()

	h.log.Info("peer joined", zap.String("remote", p.addr), zap.Int("peers", count))
	go h.writeLoop(p)
	go h.readLoop(p)
}

// Publish sends a local op to every peer.
func (h *Hub) Publish(op state.Op) {
	h.broadcast(Message{Type: MsgOps, Ops: []state.Op{op}}, nil)
}

// Peers returns the number of connected peers.
func (h *Hub) Peers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.peers)
}

// Close disconnects every peer, stops the listener and waits for the connection
// goroutines to exit.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	srv := h.server
	for p := range h.peers {
		h.dropLocked(p)
	}
	h.mu.Unlock()

	var err error
	if srv != nil {
		err = srv.Close()
	}
	h.wg.Wait()
	h.log.Info("share hub closed")
	return err
}

func (h *Hub) broadcast(msg Message, exclude *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for p := range h.peers {
		if p == exclude {
			continue
		}
		select {
		case p.send <- msg:
		default:
			h.log.Warn("peer too slow, disconnecting", zap.String("remote", p.addr))
			h.dropLocked(p)
		}
	}
}

// dropLocked unregisters p. Its writer drains the queue and closes the connection.
func (h *Hub) dropLocked(p *peer) {
	if _, ok := h.peers[p]; !ok {
		return
	}
	delete(h.peers, p)
	close(p.send)
}

func (h *Hub) writeLoop(p *peer) {
	defer h.wg.Done()
	defer p.conn.Close()
	for msg := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteJSON(msg); err != nil {
			h.log.Warn("write to peer failed", zap.String("remote", p.addr), zap.Error(err))
			return
		}
	}
}

func (h *Hub) readLoop(p *peer) {
	defer h.wg.Done()
	defer func() {
		h.mu.Lock()
		h.dropLocked(p)
		count := len(h.peers)
		h.mu.Unlock()
		h.log.Info("peer left", zap.String("remote", p.addr), zap.Int("peers", count))
	}()

	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("peer read ended", zap.String("remote", p.addr), zap.Error(err))
			}
			return
		}
		if msg.Type != MsgOps || len(msg.Ops) == 0 {
			continue
		}
		h.dispatch(func() {
			if _, err := apply(h.session, msg); err != nil {
				h.log.Warn("bad op from peer", zap.String("remote", p.addr), zap.Error(err))
			}
		})
		h.broadcast(msg, p)
	}
}

func (h *Hub) dispatch(fn func()) {
	if h.Dispatch != nil {
		h.Dispatch(fn)
		return
	}
	fn()
}
