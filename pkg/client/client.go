package client

import (
	"log/slog"
	"sync"
	"time"

	"github.com/epw80/message-board/pkg/hub"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// The feed is read-only; inbound frames are small control chatter at most
	maxMessageSize = 512

	// Buffer size for the send channel
	sendBufferSize = 256
)

// Hub is the part of the live-feed hub a client needs
type Hub interface {
	Unsubscribe(hub.Subscriber)
}

// Client is one websocket subscriber of the live feed
type Client struct {
	hub Hub

	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound events
	send chan []byte

	id string

	logger *slog.Logger

	closeOnce sync.Once
}

// New creates a new Client instance
func New(h Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		id:     "sub-" + uuid.NewString(),
		logger: logger,
	}
}

// readPump keeps the connection's read side alive so pongs and close frames
// are processed. Inbound data frames are discarded.
//
// The application runs readPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket read error",
					slog.String("subscriberId", c.id),
					slog.String("error", err.Error()))
			}
			return
		}

		c.logger.Debug("ignoring inbound frame on read-only feed",
			slog.String("subscriberId", c.id))
	}
}

// writePump pumps events from the hub to the WebSocket connection
//
// A goroutine running writePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One event per frame so subscribers can parse each frame as JSON
			if err := c.conn.WriteMessage(websocket.TextMessage, event); err != nil {
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

// Start begins the client's read and write pumps
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// Send queues an event for the subscriber
// Implements the hub.Subscriber interface
func (c *Client) Send(data []byte) {
	select {
	case c.send <- data:
	default:
		// Channel is full, log and skip
		c.logger.Warn("subscriber send buffer full, dropping event",
			slog.String("subscriberId", c.id))
	}
}

// Close closes the client's send channel
// Implements the hub.Subscriber interface
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// ID returns the client's unique identifier
// Implements the hub.Subscriber interface
func (c *Client) ID() string {
	return c.id
}
