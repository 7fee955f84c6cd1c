package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
)

// ExchangeController handles the exchange lifecycle
type ExchangeController struct {
	exchangeService services.ExchangeService
	logger          zerolog.Logger
}

// NewExchangeController creates a new ExchangeController
func NewExchangeController(exchangeService services.ExchangeService, logger zerolog.Logger) *ExchangeController {
	return &ExchangeController{
		exchangeService: exchangeService,
		logger:          logger,
	}
}

// CreateExchange godoc
// @Summary Request an exchange
// @Description Sends an exchange request with a proposed session slot. Skills default to the best mutual suggestion.
// @Tags exchanges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateExchangeRequest true "Exchange request"
// @Success 201 {object} dto.APIResponse{data=dto.ExchangeResponse}
// @Failure 400 {object} dto.ErrorResponse "Message, date and time are required"
// @Failure 404 {object} dto.ErrorResponse "Recipient not found"
// @Router /exchanges [post]
func (c *ExchangeController) CreateExchange(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateExchangeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	ex, err := c.exchangeService.Request(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, ex, "Exchange request sent")
}

// ListExchanges godoc
// @Summary List own exchanges
// @Tags exchanges
// @Produce json
// @Security BearerAuth
// @Param bucket query string false "pending, upcoming, past, completed, closed or rejected"
// @Param search query string false "Partner name or skill"
// @Success 200 {object} dto.APIResponse{data=dto.ExchangeListResponse}
// @Router /exchanges [get]
func (c *ExchangeController) ListExchanges(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.ExchangeFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	list, err := c.exchangeService.List(ctx.Request.Context(), userID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, list, "")
}

// GetExchange godoc
// @Summary Get an exchange
// @Tags exchanges
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExchangeResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Exchange not found"
// @Router /exchanges/{id} [get]
func (c *ExchangeController) GetExchange(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	ex, err := c.exchangeService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, ex, "")
}

// AcceptExchange godoc
// @Summary Accept a pending request
// @Tags exchanges
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExchangeResponse}
// @Failure 403 {object} dto.ErrorResponse "Only the recipient can respond"
// @Failure 409 {object} dto.ErrorResponse "Exchange is not pending"
// @Router /exchanges/{id}/accept [post]
func (c *ExchangeController) AcceptExchange(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	ex, err := c.exchangeService.Accept(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, ex, "Exchange accepted")
}

// RejectExchange godoc
// @Summary Decline a pending request
// @Tags exchanges
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Success 200 {object} dto.APIResponse{data=dto.ExchangeResponse}
// @Failure 403 {object} dto.ErrorResponse "Only the recipient can respond"
// @Failure 409 {object} dto.ErrorResponse "Exchange is not pending"
// @Router /exchanges/{id}/reject [post]
func (c *ExchangeController) RejectExchange(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	ex, err := c.exchangeService.Reject(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, ex, "Exchange declined")
}

// ScheduleExchange godoc
// @Summary Schedule or reschedule a session
// @Description Sets the session slot of an accepted or scheduled exchange and issues a new meeting link
// @Tags exchanges
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Param request body dto.ScheduleExchangeRequest true "Session slot"
// @Success 200 {object} dto.APIResponse{data=dto.ExchangeResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid date, time, duration or timezone"
// @Failure 409 {object} dto.ErrorResponse "Exchange cannot be scheduled"
// @Router /exchanges/{id}/schedule [put]
func (c *ExchangeController) ScheduleExchange(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.ScheduleExchangeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	ex, err := c.exchangeService.Schedule(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, ex, "Session scheduled")
}

// GetMeeting godoc
// @Summary Meeting link and join state
// @Tags exchanges
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exchange ID"
// @Success 200 {object} dto.APIResponse{data=dto.MeetingResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /exchanges/{id}/meeting [get]
func (c *ExchangeController) GetMeeting(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	meeting, err := c.exchangeService.Meeting(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, meeting, "")
}

// ListSessions godoc
// @Summary Chat list
// @Description One entry per partner with the most recent exchange and its last message
// @Tags exchanges
// @Produce json
// @Security BearerAuth
// @Param search query string false "Partner name or skill"
// @Success 200 {object} dto.APIResponse{data=dto.SessionListResponse}
// @Router /sessions [get]
func (c *ExchangeController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessions, err := c.exchangeService.Sessions(ctx.Request.Context(), userID, ctx.Query("search"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, sessions, "")
}
