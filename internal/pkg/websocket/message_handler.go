package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yigit/skillswap/internal/pkg/apperrors"
)

// Frame types
const (
	FrameSnapshot = "snapshot"
	FrameError    = "error"
	FrameText     = "text"
	FrameAck      = "ack"
)

// inboundTimeout bounds the handling of one inbound frame.
const inboundTimeout = 5 * time.Second

// Frame is one JSON message on the socket, in either direction
type Frame struct {
	Type    string    `json:"type"`
	Topic   string    `json:"topic,omitempty"`
	Version uint64    `json:"version,omitempty"`
	Data    any       `json:"data,omitempty"`
	Text    string    `json:"text,omitempty"`
	Error   string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

func errorFrame(topic, msg string) Frame {
	return Frame{Type: FrameError, Topic: topic, Error: msg, At: time.Now()}
}

// InboundFunc handles a text frame sent by userID. A nil InboundFunc makes the
// stream read-only.
type InboundFunc func(ctx context.Context, userID, text string) error

// handleFrame processes one inbound frame and queues the reply
func (c *Client) handleFrame(raw []byte) {
	topic := c.sub.Topic()

	var in Frame
	if err := json.Unmarshal(raw, &in); err != nil {
		c.logger.Debug().Err(err).Str("userID", c.userID).Msg("Failed to unmarshal client frame")
		c.queue(errorFrame(topic, "Malformed frame"))
		return
	}
	if in.Type != FrameText {
		c.queue(errorFrame(topic, "Unsupported frame type"))
		return
	}
	if c.inbound == nil {
		c.queue(errorFrame(topic, "This stream is read-only"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), inboundTimeout)
	defer cancel()
	if err := c.inbound(ctx, c.userID, in.Text); err != nil {
		msg := apperrors.UserMessage(err)
		if msg == "" {
			c.logger.Error().Err(err).Str("userID", c.userID).Str("topic", topic).Msg("Failed to handle inbound frame")
			msg = "Failed to send message"
		}
		c.queue(errorFrame(topic, msg))
		return
	}
	c.queue(Frame{Type: FrameAck, Topic: topic, At: time.Now()})
}
