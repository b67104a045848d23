package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/ManadaHerath/realtime-grid-client/internal/diagnostics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamHello is the first frame of every diagnostics stream.
type streamHello struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

// GET /session/diagnostics/ws streams every diagnostic published for the
// session until either side goes away.
func (api *API) HandleDiagnosticsWS(c *gin.Context) {
	if api.Redis == nil {
		c.String(http.StatusInternalServerError, "diagnostics stream not configured")
		return
	}
	sessionID := api.Session.Summary().ID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := api.Redis.Subscribe(ctx, diagnostics.Channel(sessionID))
	defer sub.Close()

	if err := conn.WriteJSON(streamHello{Type: "hello", SessionID: sessionID}); err != nil {
		return
	}
	go discardUntilClosed(conn, cancel)

	if err := forward(ctx, conn, sub.Channel()); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("diagnostics ws write failed")
	}
}

// discardUntilClosed drains client frames, which keeps control frames
// flowing, and calls done once the peer disconnects.
func discardUntilClosed(conn *websocket.Conn, done context.CancelFunc) {
	defer done()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// forward writes each published payload to conn as a text frame. It stops
// without error when ctx ends or the subscription closes.
func forward(ctx context.Context, conn *websocket.Conn, ch <-chan *redis.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				return err
			}
		}
	}
}
