package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/skillswap/internal/app/controllers"
	"github.com/yigit/skillswap/internal/app/models/dto"
	"github.com/yigit/skillswap/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	User         *controllers.UserController
	Exchange     *controllers.ExchangeController
	Thread       *controllers.ThreadController
	Community    *controllers.CommunityController
	Resource     *controllers.ResourceController
	Notification *controllers.NotificationController
	Live         *controllers.LiveController
}

// Limiters holds the rate limiter stores used by the router
type Limiters struct {
	Auth  *middleware.LimiterStore
	Write *middleware.LimiterStore
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiters Limiters,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimitByIP(limiters.Auth))
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
		auth.POST("/refresh", ctrl.Auth.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	// Writes are limited per user; reads are not.
	write := middleware.RateLimitByUser(limiters.Write)

	{
		authenticated.POST("/auth/logout", ctrl.Auth.Logout)
		authenticated.POST("/auth/logout-all", ctrl.Auth.LogoutAll)

		authenticated.GET("/profile", ctrl.User.GetProfile)
		authenticated.PUT("/profile", write, ctrl.User.UpdateProfile)

		users := authenticated.Group("/users")
		{
			users.GET("", ctrl.User.BrowseUsers)
			users.GET("/:id", ctrl.User.GetUser)
		}
		authenticated.GET("/matches", ctrl.User.Matches)

		authenticated.GET("/sessions", ctrl.Exchange.ListSessions)

		exchanges := authenticated.Group("/exchanges")
		{
			exchanges.GET("", ctrl.Exchange.ListExchanges)
			exchanges.POST("", write, ctrl.Exchange.CreateExchange)
			exchanges.GET("/:id", ctrl.Exchange.GetExchange)
			exchanges.POST("/:id/accept", write, ctrl.Exchange.AcceptExchange)
			exchanges.POST("/:id/reject", write, ctrl.Exchange.RejectExchange)
			exchanges.PUT("/:id/schedule", write, ctrl.Exchange.ScheduleExchange)
			exchanges.GET("/:id/meeting", ctrl.Exchange.GetMeeting)

			exchanges.GET("/:id/messages", ctrl.Thread.GetMessages)
			exchanges.POST("/:id/messages", write, ctrl.Thread.SendMessage)
			exchanges.DELETE("/:id/messages", write, ctrl.Thread.ClearMessages)
			exchanges.POST("/:id/messages/resource", write, ctrl.Thread.ShareResource)
		}

		posts := authenticated.Group("/posts")
		{
			posts.GET("", ctrl.Community.ListPosts)
			posts.POST("", write, ctrl.Community.CreatePost)
			posts.GET("/categories", ctrl.Community.GetCategories)
			posts.GET("/:id", ctrl.Community.GetPost)
			posts.DELETE("/:id", write, ctrl.Community.DeletePost)
			posts.POST("/:id/like", write, ctrl.Community.ToggleLike)
			posts.POST("/:id/comments", write, ctrl.Community.AddComment)
			posts.DELETE("/:id/comments/:commentId", write, ctrl.Community.DeleteComment)
		}

		resources := authenticated.Group("/resources")
		{
			resources.GET("", ctrl.Resource.ListResources)
			resources.POST("", write, ctrl.Resource.CreateResource)
			resources.GET("/skills", ctrl.Resource.GetSkills)
			resources.POST("/:id/like", write, ctrl.Resource.ToggleLike)
			resources.DELETE("/:id", write, ctrl.Resource.DeleteResource)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", ctrl.Notification.ListNotifications)
			notifications.GET("/unread-count", ctrl.Notification.GetUnreadCount)
			notifications.PUT("/read-all", ctrl.Notification.MarkAllRead)
			notifications.PUT("/:id/read", ctrl.Notification.MarkRead)
		}

		// Live query streams (WebSocket)
		ws := authenticated.Group("/ws")
		{
			ws.GET("/exchanges", ctrl.Live.StreamExchanges)
			ws.GET("/exchanges/:id/messages", ctrl.Live.StreamMessages)
			ws.GET("/sessions", ctrl.Live.StreamSessions)
			ws.GET("/notifications", ctrl.Live.StreamNotifications)
			ws.GET("/posts", ctrl.Live.StreamPosts)
			ws.GET("/resources", ctrl.Live.StreamResources)
		}
	}

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
	})

	router.NoRoute(func(c *gin.Context) {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeRouteNotFound, "Route not found").
			WithDetails(c.Request.Method + " " + c.Request.URL.Path)
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(errorDetail))
	})
}
