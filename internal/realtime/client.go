package realtime

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Client is one websocket connection inside a workspace room.
type Client struct {
	conn *websocket.Conn
	send chan Envelope

	UserID      string
	UserName    string
	Color       string
	WorkspaceID string
}

func NewClient(conn *websocket.Conn, userID, userName, color, workspaceID string) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan Envelope, sendBuffer),
		UserID:      userID,
		UserName:    userName,
		Color:       color,
		WorkspaceID: workspaceID,
	}
}

// Receive exposes the outbound channel; used by the write pump and by
// tests that run clients without a network connection.
func (c *Client) Receive() <-chan Envelope {
	return c.send
}

// ReadPump consumes frames until the peer goes away, handing each one
// to the hub. Leaves the room on exit.
func (c *Client) ReadPump(ctx context.Context, hub *Hub) {
	defer func() {
		hub.Leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		hub.HandleEvent(ctx, c, raw)
	}
}

// WritePump drains the send channel to the socket and keeps the
// connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
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
