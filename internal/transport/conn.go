package transport

import (
	"sync"

	"github.com/gorilla/websocket"
)

// wsConn serializes writes to a single websocket connection — gorilla
// requires at most one concurrent writer — and fans reads out to a
// caller-supplied handler until the socket closes.
type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func newWSConn(c *websocket.Conn) *wsConn {
	return &wsConn{conn: c}
}

func (c *wsConn) writeFrame(f Frame) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.BinaryMessage, data)
}

// readLoop blocks reading frames until the connection errors or closes,
// calling handle for each one. Run it on its own goroutine.
func (c *wsConn) readLoop(handle func(Frame)) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		f, err := UnmarshalFrame(data)
		if err != nil {
			continue
		}
		handle(f)
	}
}

func (c *wsConn) close() error {
	return c.conn.Close()
}
