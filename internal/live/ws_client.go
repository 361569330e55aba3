package live

import (
	"encoding/json"
	"sync"
	"time"

	"sentra/backend/internal/lifecycle"
	"sentra/backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// WebSocketClient is a read-only subscriber: anything the browser sends is
// discarded, the read loop only tracks liveness.
type WebSocketClient struct {
	id       string
	identity lifecycle.Identity
	scope    lifecycle.Scope

	Conn *websocket.Conn
	Hub  *Hub
	Send chan models.IncidentEvent

	closeOnce sync.Once
	log       *zap.Logger
}

func NewWebSocketClient(hub *Hub, conn *websocket.Conn, id lifecycle.Identity, scope lifecycle.Scope, log *zap.Logger) *WebSocketClient {
	return &WebSocketClient{
		id:       uuid.NewString(),
		identity: id,
		scope:    scope,
		Conn:     conn,
		Hub:      hub,
		Send:     make(chan models.IncidentEvent, sendBuffer),
		log:      log,
	}
}

func (c *WebSocketClient) GetID() string                                { return c.id }
func (c *WebSocketClient) GetIdentity() lifecycle.Identity              { return c.identity }
func (c *WebSocketClient) GetScope() lifecycle.Scope                    { return c.scope }
func (c *WebSocketClient) GetSendChannel() chan<- models.IncidentEvent { return c.Send }

func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close stops the write pump, which closes the connection.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() { close(c.Send) })
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("live client read failed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				c.log.Error("encode live event", zap.String("client_id", c.id), zap.Error(err))
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
