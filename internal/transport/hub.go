package transport

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jgcri/cassandra-go/pkg/logging"
)

// Hub is the rank-0 end of the star topology: one inbound websocket
// connection per worker, relayed so any two workers can exchange frames
// without dialing each other directly.
type Hub struct {
	size int

	mu     sync.Mutex
	conns  map[int]*wsConn
	nonces map[int]string

	mailbox *mailbox

	barrierMu      sync.Mutex
	barrierCond    *sync.Cond
	barrierArrived int
	barrierGen     int

	upgrader websocket.Upgrader
}

// NewHub builds a Hub for a group of size processes (including itself).
// ServeAndWait must be called to accept the size-1 worker connections
// before Send/Recv/Gather/Barrier may be used.
func NewHub(size int) *Hub {
	h := &Hub{
		size:    size,
		conns:   make(map[int]*wsConn),
		nonces:  make(map[int]string),
		mailbox: newMailbox(),
	}
	h.barrierCond = sync.NewCond(&h.barrierMu)
	return h
}

func (h *Hub) Rank() int { return 0 }
func (h *Hub) Size() int { return h.size }

// ServeAndWait starts an HTTP server on addr and blocks until all size-1
// workers have connected and completed their handshake, or the listener
// fails to start.
func (h *Hub) ServeAndWait(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/cassandra/rab", h.handleConnect)
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	ready := make(chan struct{})
	go func() {
		h.waitForWorkers()
		close(ready)
	}()
	select {
	case <-ready:
		return nil
	case err := <-errCh:
		return err
	}
}

func (h *Hub) waitForWorkers() {
	for {
		h.mu.Lock()
		n := len(h.conns)
		h.mu.Unlock()
		if n >= h.size-1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (h *Hub) handleConnect(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("Transport", err, "hub: upgrade failed")
		return
	}
	conn := newWSConn(c)

	_, data, err := c.ReadMessage()
	if err != nil {
		logging.Error("Transport", err, "hub: handshake read failed")
		return
	}
	hs, err := UnmarshalFrame(data)
	if err != nil || hs.Kind != KindHandshake {
		logging.Error("Transport", fmt.Errorf("bad handshake frame"), "hub: rejecting connection")
		return
	}

	h.mu.Lock()
	if prev, seen := h.nonces[hs.Src]; seen && prev == hs.Nonce {
		h.mu.Unlock()
		logging.Warn("Transport", "hub: rank %d retried the same handshake nonce, ignoring duplicate connection", hs.Src)
		_ = conn.close()
		return
	}
	h.conns[hs.Src] = conn
	h.nonces[hs.Src] = hs.Nonce
	h.mu.Unlock()

	logging.Info("Transport", "hub: rank %d connected (nonce %s)", hs.Src, hs.Nonce)
	go conn.readLoop(func(f Frame) { h.route(hs.Src, conn, f) })
}

func (h *Hub) route(from int, src *wsConn, f Frame) {
	switch f.Kind {
	case KindBarrier:
		h.arriveAtBarrier()
	case KindAbort:
		h.mailbox.abort(string(f.Payload))
		h.barrierCond.Broadcast()
		h.broadcastExcept(from, f)
	default:
		if f.Dst == 0 {
			h.mailbox.deliver(f)
			return
		}
		h.mu.Lock()
		dst := h.conns[f.Dst]
		h.mu.Unlock()
		if dst == nil {
			logging.Warn("Transport", "hub: no connection for rank %d, dropping frame", f.Dst)
			return
		}
		if err := dst.writeFrame(f); err != nil {
			logging.Error("Transport", err, "hub: relay to rank %d failed", f.Dst)
		}
	}
}

func (h *Hub) broadcastExcept(except int, f Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for rank, c := range h.conns {
		if rank == except {
			continue
		}
		_ = c.writeFrame(f)
	}
}

// arriveAtBarrier records one arrival (hub's own, or a worker's via route)
// out of h.size total. The last arrival releases every worker and wakes
// any goroutine blocked in Barrier.
func (h *Hub) arriveAtBarrier() {
	h.barrierMu.Lock()
	h.barrierArrived++
	done := h.barrierArrived >= h.size
	if done {
		h.barrierArrived = 0
		h.barrierGen++
	}
	h.barrierMu.Unlock()

	if done {
		h.mu.Lock()
		for _, c := range h.conns {
			_ = c.writeFrame(Frame{Kind: KindBarrier, Src: 0, Dst: -1, Tag: TagControl})
		}
		h.mu.Unlock()
		h.barrierCond.Broadcast()
	}
}

func (h *Hub) Send(dest int, tag Tag, payload []byte) error {
	if dest == 0 {
		h.mailbox.deliver(Frame{Kind: KindReq, Src: 0, Dst: 0, Tag: tag, Payload: payload})
		return nil
	}
	h.mu.Lock()
	c := h.conns[dest]
	h.mu.Unlock()
	if c == nil {
		return fmt.Errorf("transport: no connection for rank %d", dest)
	}
	return c.writeFrame(Frame{Kind: KindReq, Src: 0, Dst: dest, Tag: tag, Payload: payload})
}

func (h *Hub) Recv(source int, tag Tag) ([]byte, error) {
	f, err := h.mailbox.recv(source, tag)
	if err != nil {
		return nil, err
	}
	return f.Payload, nil
}

func (h *Hub) Probe(source int, tag Tag) bool {
	return h.mailbox.probe(source, tag)
}

func (h *Hub) RecvAny(source int) ([]byte, Tag, error) {
	f, err := h.mailbox.recvAny(source)
	if err != nil {
		return nil, 0, err
	}
	return f.Payload, f.Tag, nil
}

func (h *Hub) ProbeAny(source int) bool {
	return h.mailbox.probeAny(source)
}

// Gather collects one payload from every worker plus its own, indexed by
// rank. Rank 0 is the only caller that gets a non-nil result.
func (h *Hub) Gather(payload []byte) ([][]byte, error) {
	out := make([][]byte, h.size)
	out[0] = payload
	for rank := 1; rank < h.size; rank++ {
		f, err := h.mailbox.recv(rank, TagGather)
		if err != nil {
			return nil, err
		}
		out[rank] = f.Payload
	}
	return out, nil
}

// Barrier blocks until every worker has also called Barrier.
func (h *Hub) Barrier() error {
	h.barrierMu.Lock()
	gen := h.barrierGen
	h.barrierMu.Unlock()

	h.arriveAtBarrier()

	h.barrierMu.Lock()
	defer h.barrierMu.Unlock()
	for h.barrierGen == gen {
		if aborted, reason := h.mailbox.isAborted(); aborted {
			return fmt.Errorf("%w: %s", ErrAborted, reason)
		}
		h.barrierCond.Wait()
	}
	return nil
}

func (h *Hub) Abort(reason string) error {
	h.mailbox.abort(reason)
	h.barrierCond.Broadcast()
	h.broadcastExcept(-1, Frame{Kind: KindAbort, Src: 0, Dst: -1, Tag: TagControl, Payload: []byte(reason)})
	return nil
}

func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.conns {
		_ = c.close()
	}
	return nil
}
