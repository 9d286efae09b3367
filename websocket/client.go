package websocket

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"jukebox/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10

	// Listeners only send control frames
	maxInboundSize = 512

	sendQueueSize = 16
)

// Client is one snapshot listener
type Client struct {
	id   string
	hub  Hub
	conn *websocket.Conn
	send chan types.StateMessage
}

// NewClient wraps an upgraded connection
func NewClient(hub Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   uuid.New().String(),
		hub:  hub,
		conn: conn,
		send: make(chan types.StateMessage, sendQueueSize),
	}
}

// ID returns the client id
func (c *Client) ID() string {
	return c.id
}

// Queue sends a message to this client only; it must be called before RegisterClient
func (c *Client) Queue(message types.StateMessage) {
	select {
	case c.send <- message:
	default:
	}
}

// StartPumps starts the read and write loops for the client
func (c *Client) StartPumps() {
	go c.writeSnapshots()
	go c.awaitClose()
}

// awaitClose discards inbound frames and unregisters once the listener goes away
func (c *Client) awaitClose() {
	defer func() {
		c.hub.UnregisterClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxInboundSize)
	extend := func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
	_ = extend("")
	c.conn.SetPongHandler(extend)

	for {
		if _, _, err := c.conn.NextReader(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("client", c.id).Msg("Listener dropped")
			}
			return
		}
	}
}

// writeSnapshots forwards queued snapshots and keeps the connection alive with pings
func (c *Client) writeSnapshots() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		c.conn.Close()
	}()

	for {
		var err error
		select {
		case message, open := <-c.send:
			if !open {
				c.write(websocket.CloseMessage, nil)
				return
			}
			err = c.writeJSON(message)
		case <-ping.C:
			err = c.write(websocket.PingMessage, nil)
		}

		if err != nil {
			log.Debug().Err(err).Str("client", c.id).Msg("Listener write failed")
			return
		}
	}
}

func (c *Client) write(messageType int, payload []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, payload)
}

func (c *Client) writeJSON(message types.StateMessage) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}
