package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"aolcli/internal/config"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Client is one connected GUI console.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	cfg  config.WebSocketConfig
}

// ServeWS upgrades an HTTP request and registers the client on the hub.
func ServeWS(hub *Hub, cfg config.WebSocketConfig, w http.ResponseWriter, r *http.Request) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
		// The GUI is served from the same origin; remote origins are not
		// expected.
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 64),
		cfg:  cfg,
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()

	hub.BroadcastEvent(Event{Type: TypeConnection, Message: "console connected"})
	return nil
}

// readPump drains client messages (the console sends none) and detects
// disconnects via pong deadlines.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("client read error", slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump forwards hub messages and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
