package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joshua-hq/warroom/pkg/utils/logging"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The gateway serves a public anonymous feed; origin checks add
	// nothing the gate doesn't already (not) provide.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one connected web browser. Push-only: the browser writes
// through the REST API, snapshots flow down this connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// send is immutable after construction so writePump can receive
	// from it without holding mu. closed guards against double close
	// and against sending into a closed channel.
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// Handler upgrades the request and attaches the connection to the hub.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.From(r.Context()).Warn("websocket upgrade failed", logging.ErrAttr(err))
			return
		}

		client := &Client{
			hub:  h,
			conn: conn,
			send: make(chan []byte, clientSendBufferSize),
		}

		select {
		case h.register <- client:
		case <-h.ctx.Done():
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

// trySend queues a frame without blocking. Returns false when the
// client's buffer is full or its channel is closed.
func (c *Client) trySend(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel, which is writePump's exit signal.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump discards inbound frames; it exists to process control
// messages and to notice the peer going away.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
