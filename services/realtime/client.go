package realtime

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024
	sendBuffer     = 64
)

// Client is one authenticated websocket connection. A user may hold
// several clients at once (multiple tabs or devices).
type Client struct {
	UserID string
	Email  string

	hub  *Hub
	conn *websocket.Conn
	send chan Envelope
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, email string) *Client {
	return &Client{
		UserID: userID,
		Email:  email,
		hub:    hub,
		conn:   conn,
		send:   make(chan Envelope, sendBuffer),
	}
}

// emit queues an event for delivery. A client whose buffer is full is
// slow or gone; the event is dropped rather than blocking the hub.
func (c *Client) emit(ev Envelope) {
	select {
	case c.send <- ev:
	default:
	}
}

// ReadPump consumes inbound frames until the connection dies, then
// unregisters. Events are handled inline, so per-connection ordering
// is the handling order.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.Logger.Debug("websocket read error",
					zap.String("userId", c.UserID), zap.Error(err))
			}
			return
		}
		c.hub.HandleEvent(ctx, c, env)
	}
}

// WritePump drains the send channel onto the wire and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
