package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/app/services"
	"github.com/yigit/skillswap/internal/middleware"
	"github.com/yigit/skillswap/internal/pkg/helpers"
)

// CommunityController handles the community feed
type CommunityController struct {
	communityService services.CommunityService
	logger           zerolog.Logger
}

// NewCommunityController creates a new CommunityController
func NewCommunityController(communityService services.CommunityService, logger zerolog.Logger) *CommunityController {
	return &CommunityController{
		communityService: communityService,
		logger:           logger,
	}
}

// CreatePost godoc
// @Summary Create a post
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePostRequest true "Post"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Content is required"
// @Router /posts [post]
func (c *CommunityController) CreatePost(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.CreatePostRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	post, err := c.communityService.Create(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, post, "Post created")
}

// ListPosts godoc
// @Summary List posts
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param search query string false "Content, author or category"
// @Param category query string false "Category, all for every category"
// @Param sort query string false "newest, oldest, mostLiked or mostCommented"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PostListResponse}
// @Router /posts [get]
func (c *CommunityController) ListPosts(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var filter dto.PostFilterRequest
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	posts, err := c.communityService.List(ctx.Request.Context(), userID, &filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, posts, "")
}

// GetPost godoc
// @Summary Get a post with its comments
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [get]
func (c *CommunityController) GetPost(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	post, err := c.communityService.Get(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, post, "")
}

// GetCategories godoc
// @Summary List post categories
// @Tags community
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CategoryListResponse}
// @Router /posts/categories [get]
func (c *CommunityController) GetCategories(ctx *gin.Context) {
	categories, err := c.communityService.Categories(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, categories, "")
}

// DeletePost godoc
// @Summary Delete own post
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Only the author can delete"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id} [delete]
func (c *CommunityController) DeletePost(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if err := c.communityService.Delete(ctx.Request.Context(), userID, ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Post deleted")
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} dto.APIResponse{data=dto.LikeResponse}
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/like [post]
func (c *CommunityController) ToggleLike(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	like, err := c.communityService.ToggleLike(ctx.Request.Context(), userID, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, like, "")
}

// AddComment godoc
// @Summary Comment on a post
// @Tags community
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body dto.AddCommentRequest true "Comment"
// @Success 201 {object} dto.APIResponse{data=dto.PostResponse}
// @Failure 400 {object} dto.ErrorResponse "Text is required"
// @Failure 404 {object} dto.ErrorResponse "Post not found"
// @Router /posts/{id}/comments [post]
func (c *CommunityController) AddComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	var req dto.AddCommentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	post, err := c.communityService.AddComment(ctx.Request.Context(), userID, ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusCreated, post, "Comment added")
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description The comment author or the post author may delete a comment
// @Tags community
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param commentId path string true "Comment ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Permission denied"
// @Failure 404 {object} dto.ErrorResponse "Comment not found"
// @Router /posts/{id}/comments/{commentId} [delete]
func (c *CommunityController) DeleteComment(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	if err := c.communityService.DeleteComment(ctx.Request.Context(), userID, ctx.Param("id"), ctx.Param("commentId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respond(ctx, http.StatusOK, nil, "Comment deleted")
}
