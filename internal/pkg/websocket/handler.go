package websocket

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/pkg/livequery"
)

// Stream describes what a connection receives and accepts. A non-zero
// ExpiresAt closes the connection once the caller's credentials lapse.
type Stream struct {
	Topic     string
	Load      livequery.Loader
	OnText    InboundFunc
	ExpiresAt time.Time
}

// Handler upgrades HTTP requests to live query streams
type Handler struct {
	hub    *Hub
	broker *livequery.Broker
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, broker *livequery.Broker, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		broker: broker,
		logger: logger,
	}
}

// Serve upgrades the request and streams snapshots of stream.Topic to userID
// until either side closes. Authorization must happen before calling Serve.
func (h *Handler) Serve(c *gin.Context, userID string, stream Stream) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("userID", userID).
			Str("topic", stream.Topic).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	// The request context ends when this handler returns; the stream outlives it.
	ctx := context.WithoutCancel(c.Request.Context())
	client := &Client{
		hub:       h.hub,
		conn:      conn,
		sub:       h.broker.Subscribe(ctx, stream.Topic, stream.Load),
		send:      make(chan Frame, sendBuffer),
		userID:    userID,
		inbound:   stream.OnText,
		expiresAt: stream.ExpiresAt,
		logger:    h.logger,
	}
	if !h.hub.add(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "server shutting down"),
			time.Now().Add(writeWait))
		client.close()
		return
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("userID", userID).
		Str("topic", stream.Topic).
		Str("remoteAddr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
}
