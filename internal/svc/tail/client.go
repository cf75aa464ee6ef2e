// If you are AI: This file implements a tail client that drains a bus subscriber into a WebSocket.
// The client owns all writes on the connection; a reader goroutine only detects disconnects.

package tail

import (
	"time"

	"github.com/gorilla/websocket"

	"logbook/internal/core/bus"
)

// Conn is the part of *websocket.Conn the client needs.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
}

// Client forwards events of one stream to one WebSocket connection.
type Client struct {
	conn         Conn
	hub          *bus.Hub
	stream       string
	topic        *bus.Topic
	sub          *bus.Subscriber
	bufferSize   uint32
	pingInterval time.Duration
}

// NewClient creates a client for stream. It is not attached until Attach is called.
func NewClient(conn Conn, hub *bus.Hub, stream string, bufferSize uint32, pingInterval time.Duration) *Client {
	return &Client{
		conn:         conn,
		hub:          hub,
		stream:       stream,
		bufferSize:   bufferSize,
		pingInterval: pingInterval,
	}
}

// Attach subscribes to the stream's topic.
// Backpressure strategy: DropOldest. A slow reader loses old events, ingest never blocks.
func (c *Client) Attach() {
	c.topic, c.sub = c.hub.Subscribe(c.stream, c.bufferSize, bus.BackpressureDropOldest)
}

// Detach unsubscribes, drops the topic if this was its last subscriber and
// returns the number of events lost to backpressure.
func (c *Client) Detach() uint64 {
	if c.sub == nil {
		return 0
	}
	dropped := c.sub.Dropped()
	c.topic.Unsubscribe(c.sub.ID())
	c.hub.RemoveIfEmpty(c.stream)
	c.sub = nil
	return dropped
}

// Run writes events as text frames until the peer disconnects, the stream is
// deleted or a write fails. A deleted stream ends with a going-away close frame.
func (c *Client) Run() error {
	if c.sub == nil {
		return nil
	}

	closed := make(chan error, 1)
	go func() {
		for {
			if _, _, err := c.conn.ReadMessage(); err != nil {
				closed <- err
				return
			}
		}
	}()

	var pings <-chan time.Time
	if c.pingInterval > 0 {
		ticker := time.NewTicker(c.pingInterval)
		defer ticker.Stop()
		pings = ticker.C
	}

	for {
		select {
		case err := <-closed:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		case <-pings:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}
		case <-c.sub.Ready():
			if err := c.drain(); err != nil {
				return err
			}
		case <-c.sub.Done():
			if err := c.drain(); err != nil {
				return err
			}
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "stream deleted")
			return c.conn.WriteMessage(websocket.CloseMessage, msg)
		}
	}
}

// drain writes every buffered event.
func (c *Client) drain() error {
	for {
		ev, ok := c.sub.Buffer().Read()
		if !ok {
			return nil
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, ev.Body); err != nil {
			return err
		}
	}
}
