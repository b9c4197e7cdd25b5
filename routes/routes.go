package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"broadcast/handlers"
	"broadcast/middleware"
	"broadcast/websocket"
)

type Options struct {
	CORSOrigins    []string
	AdminJWTSecret string
	// ChatLimiter throttles the AI chat relay; nil disables throttling.
	ChatLimiter *middleware.IPRateLimiter
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func SetupRouter(h *handlers.Handler, hub *websocket.Manager, opts Options, log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/ws", hub.ServeWS)
	router.GET("/ws/stats", hub.StatsHandler)

	api := router.Group("/api")
	api.GET("", h.APIRoot)

	posts := api.Group("/posts")
	posts.GET("", h.ListPosts)
	posts.POST("", h.CreatePost)
	posts.POST("/:id/like", h.LikePost)
	posts.POST("/:id/recast", h.RecastPost)
	posts.POST("/:id/view", h.ViewPost)
	posts.GET("/:id/comments", h.ListPostComments)
	posts.POST("/:id/comments", h.CreatePostComment)
	posts.DELETE("/:id", h.DeletePost)
	posts.PUT("/restore/:id", h.RestorePost)

	comments := api.Group("/comments")
	comments.GET("", h.ListComments)
	comments.POST("", h.CreateComment)
	comments.GET("/:id", h.ListComments)
	comments.DELETE("/:id", h.DeleteComment)
	comments.POST("/:id/like", h.LikeComment)
	comments.PATCH("/:id/views", h.IncrementViews)
	comments.POST("/:id/replies", h.AddReply)
	comments.DELETE("/:id/replies/:replyId", h.DeleteReply)
	comments.POST("/:id/replies/:replyId/like", h.LikeReply)

	users := api.Group("/users")
	users.GET("", h.ListUsers)
	users.POST("/create-user", h.CreateUser)
	users.POST("/create-or-get-user", h.CreateOrGetUser)
	users.POST("/update-location", h.UpdateLocation)
	users.POST("/update-image", h.UpdateImage)
	users.GET("/:clerkId", h.GetUser)
	users.POST("/:clerkId/follow/:targetClerkId", h.Follow)
	users.POST("/:clerkId/unfollow/:targetClerkId", h.Unfollow)

	api.POST("/verify", h.RequestVerification)
	api.GET("/verify/:token", h.ConfirmVerification)

	status := api.Group("/status")
	status.GET("", h.ListStatuses)
	status.POST("", h.CreateStatus)
	status.POST("/:statusId/like", h.LikeStatus)
	status.DELETE("/:statusId", h.DeleteStatus)

	products := api.Group("/products")
	products.GET("", h.ListProducts)
	products.POST("", h.CreateProduct)
	products.GET("/:id", h.GetProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)

	categories := api.Group("/categories")
	categories.GET("", h.ListCategories)
	categories.POST("", h.CreateCategory)
	categories.GET("/:id", h.GetCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)

	news := api.Group("/news")
	news.GET("", h.ListNews)
	news.POST("", h.CreateNews)
	news.GET("/:id", h.GetNews)
	news.PUT("/:id", h.UpdateNews)
	news.DELETE("/:id", h.DeleteNews)

	api.GET("/stream-token/:userId", h.StreamToken)
	api.POST("/upsert-ai", h.UpsertAI)
	api.POST("/stream/upsert-ai", h.UpsertAI)

	chat := []gin.HandlerFunc{h.Chat}
	if opts.ChatLimiter != nil {
		chat = append([]gin.HandlerFunc{middleware.RateLimit(opts.ChatLimiter)}, chat...)
	}
	api.POST("/chat", chat...)
	api.POST("/ai-reply", h.AIReply)

	admin := api.Group("/admin", middleware.AdminAuth(opts.AdminJWTSecret, log))
	admin.POST("/reconcile", h.Reconcile)

	router.NoRoute(h.NotFound)
	return router
}
