package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dugout/pkg/logger"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Viewers are read-only; inbound frames beyond pongs are noise
	maxMessageSize = 512
)

// Client is one connected viewer of a game.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger logger.Logger
	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, bufferSize int, l logger.Logger) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, bufferSize),
		done:   make(chan struct{}),
		logger: l,
	}
}

// trySend queues a message without blocking. Returns false when the viewer's
// buffer is full and the message was dropped.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return true
	}

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
}

// run starts the write pump and blocks on the read pump until the viewer
// disconnects. onExit runs once the connection is gone.
func (c *Client) run(onExit func()) {
	go c.writePump()
	c.readPump()
	onExit()
	c.close()
}

// readPump discards inbound frames; it exists to detect disconnects and to
// keep the pong handler serviced.
func (c *Client) readPump() {
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

// writePump pumps messages from the send channel to the connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			_, _ = w.Write(message)

			// Flush queued messages into the same frame batch
			n := len(c.send)
			for i := 0; i < n; i++ {
				_, _ = w.Write([]byte{'\n'})
				_, _ = w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
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
