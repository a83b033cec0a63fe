package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/guessparty/guessparty-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Interval between keepalive pings; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size in bytes
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one websocket connection. A client exists from upgrade
// until the socket closes; it gains a player id after identify and a
// hub once it joins a lobby's room.
type Client struct {
	conn        *websocket.Conn
	send        chan []byte
	connectedAt time.Time
	logger      *slog.Logger

	mu       sync.RWMutex
	playerID model.PlayerID
	hub      *Hub
	closed   bool
}

// NewClient wraps an upgraded websocket connection
func NewClient(conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		conn:        conn,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
		logger:      logger,
	}
}

// PlayerID returns the identity bound to this connection, or empty
// before identify
func (c *Client) PlayerID() model.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

func (c *Client) setPlayerID(id model.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = id
}

// Hub returns the room the client is currently joined to, or nil
func (c *Client) Hub() *Hub {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hub
}

func (c *Client) setHub(hub *Hub) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hub = hub
}

// SendEvent marshals an event envelope and queues it for this
// connection only
func (c *Client) SendEvent(event string, data any) {
	msg, err := marshalEvent(event, data)
	if err != nil {
		c.logger.Error("failed to marshal event",
			slog.String("event", event),
			slog.Any("error", err))
		return
	}
	if !c.enqueue(msg) {
		c.logger.Warn("message dropped - client buffer full",
			slog.String("event", event),
			slog.String("player_id", string(c.PlayerID())))
	}
}

// Close stops the write pump, which closes the socket and in turn
// ends the read pump
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()
	close(c.send)
}

// enqueue queues a raw message without blocking. Returns false if the
// client is closed or its buffer is full.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// writePump drains the send channel onto the socket and keeps the
// connection alive with pings. Runs in its own goroutine per client.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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

// readPump reads envelopes off the socket and hands them to dispatch
// until the connection drops
func (c *Client) readPump(dispatch func(*Client, *Envelope)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var envelope Envelope
		if err := c.conn.ReadJSON(&envelope); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected connection close",
					slog.String("player_id", string(c.PlayerID())),
					slog.Any("error", err))
			}
			return
		}
		dispatch(c, &envelope)
	}
}
