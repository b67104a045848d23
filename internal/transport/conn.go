package transport

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/protocol"
)

const writeWait = 5 * time.Second

// Handler processes one inbound text frame.
type Handler func(ctx context.Context, raw []byte) error

// Conn is the websocket channel to the game server. Writes are serialized;
// reads belong to ReadLoop.
type Conn struct {
	ws *websocket.Conn

	mu     sync.Mutex
	closed bool
}

func Dial(ctx context.Context, url string) (*Conn, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return NewConn(ws), nil
}

func NewConn(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// ReadLoop hands every text frame to h in arrival order. A handler error
// drops only that message. It returns nil when ctx ends or the server closes
// the connection normally.
func (c *Conn) ReadLoop(ctx context.Context, h Handler) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-stop:
		}
	}()

	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		if mt != websocket.TextMessage {
			continue
		}
		if err := h(ctx, data); err != nil {
			log.Debug().Err(err).Msg("inbound message dropped")
		}
	}
}

// SendCommand validates cmd and writes it as JSON.
func (c *Conn) SendCommand(cmd protocol.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(cmd); err != nil {
		return fmt.Errorf("write %s: %w", cmd.Type, err)
	}
	log.Debug().Str("type", cmd.Type).Msg("command sent")
	return nil
}

// Close sends a close frame and closes the socket. Calling it again is a
// no-op.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return c.ws.Close()
}
