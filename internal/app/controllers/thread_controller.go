package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
)

// ThreadController handles the message thread of an exchange
type ThreadController struct {
	threadService services.ThreadService
	logger        zerolog.Logger
}

// NewThreadController creates a new ThreadController
func NewThreadController(threadService services.ThreadService, logger zerolog.Logger) *ThreadController {
	return &ThreadController{
		threadService: threadService,
		logger:        logger,
	}
}

// GetMessages godoc
// @Summary Get the thread of an exchange
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Success 200 {object} dto.APIResponse{data=dto.ThreadResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /exchanges/{id}/messages [get]
func (c *ThreadController) GetMessages(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	thread, err := c.threadService.List(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, thread, "")
}

// SendMessage godoc
// @Summary Send a text message
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Empty message"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /exchanges/{id}/messages [post]
func (c *ThreadController) SendMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	msg, err := c.threadService.SendText(ctx.Request.Context(), userID, ctx.Param("id"), req.Text)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, msg, "")
}

// ShareResource godoc
// @Summary Share a link in the thread
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Param request body dto.ShareResourceRequest true "Resource"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Title and absolute URL are required"
// @Router /exchanges/{id}/messages/resource [post]
func (c *ThreadController) ShareResource(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.ShareResourceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	msg, err := c.threadService.ShareResource(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, msg, "")
}

// ClearMessages godoc
// @Summary Clear the thread
// @Description Deletes every message of the thread. The exchange itself is kept.
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Success 200 {object} dto.APIResponse{data=dto.ClearThreadResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /exchanges/{id}/messages [delete]
func (c *ThreadController) ClearMessages(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	cleared, err := c.threadService.Clear(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	c.logger.Info().Str("exchangeID", ctx.Param("id")).Str("userID", userID).Int64("deleted", cleared.Deleted).Msg("Thread cleared")
	respond(ctx, http.StatusOK, cleared, "Chat cleared")
}
