package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
)

// UserController handles profiles and skill discovery
type UserController struct {
	profileService   services.ProfileService
	discoveryService services.DiscoveryService
	logger           zerolog.Logger
}

// NewUserController creates a new UserController
func NewUserController(profileService services.ProfileService, discoveryService services.DiscoveryService, logger zerolog.Logger) *UserController {
	return &UserController{
		profileService:   profileService,
		discoveryService: discoveryService,
		logger:           logger,
	}
}

// GetProfile godoc
// @Summary Get own profile
// @Description Returns the caller's profile. A missing profile is created with defaults.
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	profile, err := c.profileService.GetMe(ctx.Request.Context(), userID, middleware.GetEmail(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "")
}

// UpdateProfile godoc
// @Summary Update own profile
// @Description Replaces the editable profile fields. Skill lists are trimmed and deduplicated.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	profile, err := c.profileService.Update(ctx.Request.Context(), userID, middleware.GetEmail(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "Profile updated")
}

// GetUser godoc
// @Summary Get a public profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} dto.APIResponse{data=dto.ProfileResponse}
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /users/{id} [get]
func (c *UserController) GetUser(ctx *gin.Context) {
	profile, err := c.profileService.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, profile, "")
}

// BrowseUsers godoc
// @Summary Browse other users
// @Description Lists every other user. Filter by one skill list (teach or learn) and by location.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param teach query string false "Skill the user can teach"
// @Param learn query string false "Skill the user wants to learn"
// @Param location query string false "Location substring, case-insensitive"
// @Success 200 {object} dto.APIResponse{data=dto.UserListResponse}
// @Failure 400 {object} dto.ErrorResponse "Both skill filters set"
// @Router /users [get]
func (c *UserController) BrowseUsers(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.UserFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	users, err := c.discoveryService.Browse(ctx.Request.Context(), userID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, users, "")
}

// Matches godoc
// @Summary Ranked mutual matches
// @Description Users who teach something the caller wants and want something the caller teaches, best first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MatchListResponse}
// @Router /matches [get]
func (c *UserController) Matches(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	matches, err := c.discoveryService.Recommend(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, matches, "")
}
