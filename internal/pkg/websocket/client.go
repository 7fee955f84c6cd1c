package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/pkg/livequery"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 16 * 1024

	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers authenticate with the token query parameter, so any origin may connect
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is a middleman between the websocket connection and one live query
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	sub  *livequery.Subscription

	// Buffered channel of replies to inbound frames
	send chan Frame

	userID    string
	inbound   InboundFunc
	expiresAt time.Time

	closeOnce sync.Once
	logger    zerolog.Logger
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.sub.Close()
		c.conn.Close()
	})
}

// queue schedules a reply frame. Replies are dropped when the client is not
// reading fast enough.
func (c *Client) queue(f Frame) {
	select {
	case c.send <- f:
	default:
		c.logger.Warn().Str("userID", c.userID).Str("type", f.Type).Msg("WebSocket send buffer full, dropping frame")
	}
}

// readPump reads inbound frames until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.hub.remove(c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.logger.Debug().Str("userID", c.userID).Msg("WebSocket closed normally")
			} else if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Str("userID", c.userID).Msg("Unexpected WebSocket close")
			} else {
				c.logger.Debug().Err(err).Str("userID", c.userID).Msg("WebSocket read error")
			}
			return
		}
		c.handleFrame(message)
	}
}

// writePump forwards snapshots and replies to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	var expired <-chan time.Time
	if !c.expiresAt.IsZero() {
		timer := time.NewTimer(time.Until(c.expiresAt))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case snap, ok := <-c.sub.C():
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(c.snapshotFrame(snap)); err != nil {
				return
			}
		case f := <-c.send:
			if err := c.write(f); err != nil {
				return
			}
		case <-expired:
			c.logger.Debug().Str("userID", c.userID).Msg("Access token expired, closing WebSocket")
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "token expired"),
				time.Now().Add(writeWait))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) write(f Frame) error {
	payload, err := json.Marshal(f)
	if err != nil {
		c.logger.Error().Err(err).Str("topic", f.Topic).Msg("Failed to encode WebSocket frame")
		payload, _ = json.Marshal(errorFrame(f.Topic, "Failed to encode data"))
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *Client) snapshotFrame(snap livequery.Snapshot) Frame {
	if snap.Err != nil {
		c.logger.Error().Err(snap.Err).Str("topic", snap.Topic).Str("userID", c.userID).Msg("Live query load failed")
		f := errorFrame(snap.Topic, "Failed to load data")
		f.Version = snap.Version
		return f
	}
	return Frame{
		Type:    FrameSnapshot,
		Topic:   snap.Topic,
		Version: snap.Version,
		Data:    snap.Data,
		At:      snap.At,
	}
}
