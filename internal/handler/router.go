package handler

import (
	"net/http"
	"strconv"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/metrics"
	"socialnet/backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with every route. messageLimiter may be
// nil, which leaves message sending unlimited.
func NewRouter(h *Handler, messageLimiter *ratelimit.Limiter) *gin.Engine {
	router := gin.Default()
	router.Use(metrics.Middleware())

	requireSession := auth.RequireSession(h.Sessions)
	optionalSession := auth.OptionalSession(h.Sessions)

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", metrics.Handler())

	// Health check endpoints
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes
	router.POST("/login", h.Login)
	router.POST("/logout", requireSession, h.Logout)
	router.GET("/me", requireSession, h.Me)

	// User routes
	userRoutes := router.Group("/users")
	{
		userRoutes.POST("", h.Register)
		userRoutes.GET("", h.ListUsers)
		userRoutes.GET("/search", requireSession, h.SearchUsers)
		userRoutes.GET("/:id", optionalSession, h.GetUser)
		userRoutes.PUT("/:id", requireSession, h.UpdateUser)
		userRoutes.DELETE("/:id", requireSession, h.DeleteUser)
	}

	// Post routes
	postRoutes := router.Group("/posts")
	{
		postRoutes.POST("", requireSession, h.CreatePost)
		postRoutes.GET("", requireSession, h.ListPosts)
		postRoutes.GET("/:id", h.GetPost)
		postRoutes.DELETE("/:id", requireSession, h.DeletePost)
	}
	router.POST("/media", requireSession, h.UploadMedia)

	// Friendship routes (protected)
	friendRoutes := router.Group("/friends")
	friendRoutes.Use(requireSession)
	{
		friendRoutes.POST("", h.SendFriendRequest)
		friendRoutes.GET("", h.ListFriends)
		friendRoutes.GET("/requests", h.ListFriendRequests)
		friendRoutes.PUT("/:id", h.RespondFriendRequest)
		friendRoutes.DELETE("/:id", h.RemoveFriend)
	}

	// Message routes (protected)
	messageRoutes := router.Group("/messages")
	messageRoutes.Use(requireSession)
	{
		send := []gin.HandlerFunc{h.SendMessage}
		if messageLimiter != nil {
			send = append([]gin.HandlerFunc{messageLimiter.Middleware(userKey)}, send...)
		}
		messageRoutes.POST("", send...)
		messageRoutes.GET("", h.ListMessages)
		messageRoutes.GET("/:id", h.GetMessage)
	}

	// Real-time routes (protected)
	router.GET("/events", requireSession, h.Events)
	router.GET("/ws", requireSession, h.WebSocket)

	return router
}

func userKey(c *gin.Context) string {
	id, ok := auth.CurrentUserID(c)
	if !ok {
		return ""
	}
	return strconv.FormatUint(uint64(id), 10)
}
