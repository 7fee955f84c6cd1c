package controllers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
	"github.com/yigit/skillswap/internal/pkg/apperrors"
	"github.com/yigit/skillswap/internal/pkg/helpers"
	"github.com/yigit/skillswap/internal/pkg/websocket"
)

// LiveController serves live-query streams over WebSocket. Each stream
// pushes a fresh snapshot whenever the data behind it changes.
type LiveController struct {
	ws                  *websocket.Handler
	exchangeService     services.ExchangeService
	threadService       services.ThreadService
	communityService    services.CommunityService
	resourceService     services.ResourceService
	notificationService services.NotificationService
	writeLimiter        *middleware.LimiterStore
	logger              zerolog.Logger
}

// NewLiveController creates a new LiveController
func NewLiveController(
	ws *websocket.Handler,
	exchangeService services.ExchangeService,
	threadService services.ThreadService,
	communityService services.CommunityService,
	resourceService services.ResourceService,
	notificationService services.NotificationService,
	writeLimiter *middleware.LimiterStore,
	logger zerolog.Logger,
) *LiveController {
	return &LiveController{
		ws:                  ws,
		exchangeService:     exchangeService,
		threadService:       threadService,
		communityService:    communityService,
		resourceService:     resourceService,
		notificationService: notificationService,
		writeLimiter:        writeLimiter,
		logger:              logger,
	}
}

// serve upgrades the request. Streams end when the access token expires.
func (c *LiveController) serve(ctx *gin.Context, userID string, stream websocket.Stream) {
	if exp, ok := middleware.GetTokenExpiry(ctx); ok {
		stream.ExpiresAt = exp
	}
	c.ws.Serve(ctx, userID, stream)
}

// StreamExchanges godoc
// @Summary Live exchange list
// @Description Streams the caller's exchanges. Query params match GET /exchanges.
// @Tags live
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Param bucket query string false "pending, upcoming, past, completed, closed or rejected"
// @Router /ws/exchanges [get]
func (c *LiveController) StreamExchanges(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.ExchangeFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	c.serve(ctx, userID, websocket.Stream{
		Topic: services.UserExchangesTopic(userID),
		Load: func(loadCtx context.Context) (any, error) {
			return c.exchangeService.List(loadCtx, userID, &filter)
		},
	})
}

// StreamSessions godoc
// @Summary Live chat list
// @Tags live
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Param search query string false "Partner name or skill"
// @Router /ws/sessions [get]
func (c *LiveController) StreamSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	search := ctx.Query("search")
	c.serve(ctx, userID, websocket.Stream{
		Topic: services.UserExchangesTopic(userID),
		Load: func(loadCtx context.Context) (any, error) {
			return c.exchangeService.Sessions(loadCtx, userID, search)
		},
	})
}

// StreamMessages godoc
// @Summary Live message thread
// @Description Streams the thread of an exchange. Text frames sent by the client are posted as messages and count against the per-user write limit.
// @Tags live
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Param id path string true "Exchange ID"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /ws/exchanges/{id}/messages [get]
func (c *LiveController) StreamMessages(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	exchangeID := ctx.Param("id")

	// Participation is checked before the upgrade so outsiders get a plain HTTP error.
	if _, err := c.threadService.List(ctx.Request.Context(), userID, exchangeID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	c.serve(ctx, userID, websocket.Stream{
		Topic: services.ExchangeMessagesTopic(exchangeID),
		Load: func(loadCtx context.Context) (any, error) {
			return c.threadService.List(loadCtx, userID, exchangeID)
		},
		OnText: c.sendText(exchangeID),
	})
}

// sendText posts text frames to the thread. Frames share the per-user write
// limit with POST /exchanges/{id}/messages.
func (c *LiveController) sendText(exchangeID string) websocket.InboundFunc {
	return func(ctx context.Context, senderID, text string) error {
		if c.writeLimiter != nil && !c.writeLimiter.Allow("user:"+senderID) {
			return apperrors.NewCustomError(apperrors.ErrTooManyRequests, "Too many requests, please slow down")
		}
		_, err := c.threadService.SendText(ctx, senderID, exchangeID, text)
		return err
	}
}

// StreamNotifications godoc
// @Summary Live notification inbox
// @Tags live
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Param unread query bool false "Only unread"
// @Router /ws/notifications [get]
func (c *LiveController) StreamNotifications(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.NotificationFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	c.serve(ctx, userID, websocket.Stream{
		Topic: services.UserNotificationsTopic(userID),
		Load: func(loadCtx context.Context) (any, error) {
			return c.notificationService.List(loadCtx, userID, &filter)
		},
	})
}

// StreamPosts godoc
// @Summary Live community feed
// @Tags live
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Param category query string false "Category"
// @Param sort query string false "newest, oldest, mostLiked or mostCommented"
// @Router /ws/posts [get]
func (c *LiveController) StreamPosts(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.PostFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)
	c.serve(ctx, userID, websocket.Stream{
		Topic: services.PostsTopic,
		Load: func(loadCtx context.Context) (any, error) {
			return c.communityService.List(loadCtx, userID, &filter, page, size)
		},
	})
}

// StreamResources godoc
// @Summary Live resource library
// @Tags live
// @Security BearerAuth
// @Param token query string false "Access token when headers cannot be set"
// @Param skill query string false "Skill tag"
// @Router /ws/resources [get]
func (c *LiveController) StreamResources(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.ResourceFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	c.serve(ctx, userID, websocket.Stream{
		Topic: services.ResourcesTopic,
		Load: func(loadCtx context.Context) (any, error) {
			return c.resourceService.List(loadCtx, userID, &filter)
		},
	})
}
