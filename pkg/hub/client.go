package hub

import (
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// writeTimeout bounds a single frame write.
	writeTimeout = 10 * time.Second

	// pongTimeout is how long a client may go silent before we drop it.
	pongTimeout = 60 * time.Second

	// pingInterval must stay under pongTimeout or healthy clients get cut.
	pingInterval = (pongTimeout * 9) / 10

	// readLimit caps inbound frames. The status stream is one-directional;
	// clients only send pongs.
	readLimit = 4 * 1024
)

// Client is one websocket subscriber of a hub.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Message
}

// NewClient registers a new subscriber with the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Message, 64),
	}
	hub.register <- client
	return client
}

// Run services the connection and blocks until it closes. Only the write
// loop touches the connection for output, so frames never interleave.
func (c *Client) Run() {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.drainReads()
	}()
	c.writeLoop(done)
}

// writeLoop forwards broadcast messages and keepalive pings until the
// hub closes the send channel or the read side notices a disconnect.
func (c *Client) writeLoop(done <-chan struct{}) {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		c.conn.Close()
		c.hub.unregister <- c
	}()

	for {
		select {
		case <-done:
			return

		case msg, ok := <-c.send:
			if !ok {
				// Hub dropped us; tell the peer before hanging up
				c.write(websocket.CloseMessage, nil)
				return
			}
			kind := websocket.TextMessage
			if msg.Type == BinaryMessage {
				kind = websocket.BinaryMessage
			}
			if c.write(kind, msg.Data) != nil {
				return
			}

		case <-ping.C:
			if c.write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

func (c *Client) write(kind int, data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(kind, data)
}

// drainReads discards inbound frames. The read side exists to refresh
// the liveness deadline on pongs and to notice the peer going away.
func (c *Client) drainReads() {
	c.conn.SetReadLimit(readLimit)
	c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
