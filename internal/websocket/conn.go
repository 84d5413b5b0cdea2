package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// writeTimeout bounds how long a single outbound write may block on a slow
// or dead peer.
const writeTimeout = 10 * time.Second

// conn adapts a coder/websocket connection to the domain.Conn capability.
// Writes are serialized so concurrent broadcasts from different senders
// cannot interleave frames.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func newConn(ws *websocket.Conn) *conn {
	return &conn{ws: ws}
}

// Send marshals v as a JSON text frame. A failed send is how the core
// detects that the peer is gone.
func (c *conn) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, c.ws, v)
}
