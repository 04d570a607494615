package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn wraps a websocket connection with a write lock. The exam stream has
// two writers (the event pump and the read loop's direct replies) but
// gorilla/websocket supports only one concurrent writer, so every data
// write goes through mu.
type Conn struct {
	mu  sync.Mutex
	raw *websocket.Conn
}

// NewConn wraps a raw websocket connection.
func NewConn(raw *websocket.Conn) *Conn {
	return &Conn{raw: raw}
}

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func (c *Conn) WriteTyped(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.raw.WriteJSON(v)
}

// WriteError sends a typed ErrorResponse over the WebSocket.
func (c *Conn) WriteError(errMsg string) error {
	return c.WriteTyped(ErrorResponse{
		Event: EventError,
		Error: errMsg,
	})
}

// Read reads one raw message with a read deadline. Callers peek at the
// action before choosing a payload type.
func (c *Conn) Read() (int, []byte, error) {
	c.raw.SetReadDeadline(time.Now().Add(5 * time.Minute))
	return c.raw.ReadMessage()
}

// CloseNormal sends a normal-closure control frame. Control frames have
// their own concurrency guarantee in gorilla, so no lock is needed.
func (c *Conn) CloseNormal(reason string) error {
	return c.raw.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
		time.Now().Add(time.Second))
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.raw.Close()
}
