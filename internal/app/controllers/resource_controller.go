package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
)

// ResourceController handles the learning resource library
type ResourceController struct {
	resourceService services.ResourceService
	logger          zerolog.Logger
}

// NewResourceController creates a new ResourceController
func NewResourceController(resourceService services.ResourceService, logger zerolog.Logger) *ResourceController {
	return &ResourceController{
		resourceService: resourceService,
		logger:          logger,
	}
}

// CreateResource godoc
// @Summary Share a learning resource
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateResourceRequest true "Resource"
// @Success 201 {object} dto.APIResponse{data=dto.ResourceResponse}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Router /resources [post]
func (c *ResourceController) CreateResource(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreateResourceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resource, err := c.resourceService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, resource, "Resource shared")
}

// ListResources godoc
// @Summary List learning resources
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param skill query string false "Skill tag, all for every skill"
// @Success 200 {object} dto.APIResponse{data=dto.ResourceListResponse}
// @Router /resources [get]
func (c *ResourceController) ListResources(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.ResourceFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	resources, err := c.resourceService.List(ctx.Request.Context(), userID, &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, resources, "")
}

// GetSkills godoc
// @Summary List resource skill tags
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.SkillListResponse}
// @Router /resources/skills [get]
func (c *ResourceController) GetSkills(ctx *gin.Context) {
	skills, err := c.resourceService.Skills(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, skills, "")
}

// ToggleLike godoc
// @Summary Like or unlike a resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Router /resources/{id}/like [post]
func (c *ResourceController) ToggleLike(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	like, err := c.resourceService.ToggleLike(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, like, "")
}

// DeleteResource godoc
// @Summary Delete own resource
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resource ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Only the author can delete"
// @Failure 404 {object} dto.ErrorResponse "Resource not found"
// @Router /resources/{id} [delete]
func (c *ResourceController) DeleteResource(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if err := c.resourceService.Delete(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Resource deleted")
}
