package transport

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/jgcri/cassandra-go/pkg/logging"
)

// Peer is a worker's (rank > 0) end of the star topology: one outbound
// connection to the Hub. Frames addressed to any other rank are relayed
// through the hub transparently.
type Peer struct {
	rank int
	size int

	conn    *wsConn
	mailbox *mailbox

	barrierMu sync.Mutex
	barrierCh chan struct{}
}

// DialPeer connects rank (1..size-1) to the hub at addr and completes the
// handshake. The returned Peer is ready for use immediately.
func DialPeer(addr string, rank, size int) (*Peer, error) {
	url := fmt.Sprintf("ws://%s/cassandra/rab", addr)
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: dial hub: %w", err)
	}
	conn := newWSConn(c)

	hs := Frame{Kind: KindHandshake, Src: rank, Dst: 0, Tag: TagControl, Nonce: uuid.New().String()}
	if err := conn.writeFrame(hs); err != nil {
		return nil, fmt.Errorf("transport: handshake: %w", err)
	}

	p := &Peer{
		rank:      rank,
		size:      size,
		conn:      conn,
		mailbox:   newMailbox(),
		barrierCh: make(chan struct{}),
	}
	go conn.readLoop(p.handle)
	return p, nil
}

func (p *Peer) handle(f Frame) {
	switch f.Kind {
	case KindBarrier:
		select {
		case p.barrierCh <- struct{}{}:
		default:
		}
	case KindAbort:
		p.mailbox.abort(string(f.Payload))
		select {
		case p.barrierCh <- struct{}{}:
		default:
		}
	default:
		p.mailbox.deliver(f)
	}
}

func (p *Peer) Rank() int { return p.rank }
func (p *Peer) Size() int { return p.size }

func (p *Peer) Send(dest int, tag Tag, payload []byte) error {
	return p.conn.writeFrame(Frame{Kind: KindReq, Src: p.rank, Dst: dest, Tag: tag, Payload: payload})
}

func (p *Peer) Recv(source int, tag Tag) ([]byte, error) {
	f, err := p.mailbox.recv(source, tag)
	if err != nil {
		return nil, err
	}
	return f.Payload, nil
}

func (p *Peer) Probe(source int, tag Tag) bool {
	return p.mailbox.probe(source, tag)
}

// RecvAny blocks until any frame from source arrives, regardless of tag.
// The hub preserves the original sender's rank in Frame.Src when it relays,
// so this works the same whether source is rank 0 or another worker.
func (p *Peer) RecvAny(source int) ([]byte, Tag, error) {
	f, err := p.mailbox.recvAny(source)
	if err != nil {
		return nil, 0, err
	}
	return f.Payload, f.Tag, nil
}

func (p *Peer) ProbeAny(source int) bool {
	return p.mailbox.probeAny(source)
}

// Gather sends payload to the hub and returns (nil, nil): only rank 0
// receives the assembled result.
func (p *Peer) Gather(payload []byte) ([][]byte, error) {
	err := p.conn.writeFrame(Frame{Kind: KindGather, Src: p.rank, Dst: 0, Tag: TagGather, Payload: payload})
	return nil, err
}

// Barrier sends an arrival notice to the hub and blocks until the hub
// broadcasts the release.
func (p *Peer) Barrier() error {
	if err := p.conn.writeFrame(Frame{Kind: KindBarrier, Src: p.rank, Dst: 0, Tag: TagControl}); err != nil {
		return err
	}
	<-p.barrierCh
	if aborted, reason := p.mailbox.isAborted(); aborted {
		return fmt.Errorf("%w: %s", ErrAborted, reason)
	}
	return nil
}

func (p *Peer) Abort(reason string) error {
	p.mailbox.abort(reason)
	return p.conn.writeFrame(Frame{Kind: KindAbort, Src: p.rank, Dst: 0, Tag: TagControl, Payload: []byte(reason)})
}

func (p *Peer) Close() error {
	logging.Debug("Transport", "rank %d: closing connection", p.rank)
	return p.conn.close()
}
