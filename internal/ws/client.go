package ws

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/ethioska/sqboom/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 64
)

type Client struct {
	AccountID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Serve registers the connection and runs both pumps. It blocks until the
// connection drops.
func (h *Hub) Serve(accountID string, conn *websocket.Conn) {
	c := &Client{
		AccountID: accountID,
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	h.register(c)

	go c.writePump()
	c.readPump()
}

// queue drops the frame when the connection cannot keep up.
func (c *Client) queue(data []byte) {
	select {
	case c.send <- data:
	default:
		logger.Debug("dropping push for slow connection", "account", c.AccountID)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		close(c.send)
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "account", c.AccountID, "error", err)
			}
			return
		}
		c.hub.handleInbound(c.AccountID, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
