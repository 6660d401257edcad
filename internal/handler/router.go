package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 注册路由
func SetupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(Logger())
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Metrics())

	// 健康检查和指标
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 支付服务商回调，签名校验在处理器里做
	router.POST("/webhook/cryptobot", h.PaymentWebhook)

	v1 := router.Group("/api/v1")
	{
		// 注册登录不需要鉴权
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}

		// 以下全部需要登录
		authed := v1.Group("")
		authed.Use(h.JWTAuth())
		{
			authed.POST("/auth/logout", h.Logout)

			// websocket 实时连接
			authed.GET("/ws", h.WebSocket)

			// 用户资料
			profile := authed.Group("/profiles")
			{
				profile.GET("/me", h.GetMyProfile)
				profile.PUT("/me", h.UpdateProfile)
				profile.GET("/:username", h.GetProfileByUsername)
			}

			// 帖子
			posts := authed.Group("/posts")
			{
				posts.POST("", h.CreatePost)
				posts.GET("/feed", h.GetFeed)
				posts.GET("/:id", h.GetPost)
				posts.DELETE("/:id", h.DeletePost)
				posts.GET("/:id/comments", h.ListComments)
				posts.DELETE("/:id/like", h.Unlike)
			}
			authed.GET("/users/search", h.SearchUsers)
			authed.GET("/users/:user_id/posts", h.ListUserPosts)

			// 媒体
			media := authed.Group("/media")
			{
				media.POST("", h.UploadMedia)
				media.GET("/:id", h.GetMedia)
				media.DELETE("/:id", h.DeleteMedia)
				media.GET("/:id/comments", h.ListMediaComments)
				media.DELETE("/:id/like", h.UnlikeMedia)
			}
			authed.GET("/users/:user_id/media", h.ListUserMedia)

			// 互动
			authed.POST("/comments", h.CreateComment)
			authed.POST("/likes", h.Like)
			authed.POST("/subscriptions/:user_id", h.Subscribe)
			authed.DELETE("/subscriptions/:user_id", h.Unsubscribe)
			authed.GET("/subscriptions", h.ListSubscriptions)

			// 私信与群聊
			messages := authed.Group("/messages")
			{
				messages.POST("", h.SendMessage)
				messages.GET("/unread", h.CountUnreadMessages)
				messages.GET("/:user_id", h.GetConversation)
			}
			groups := authed.Group("/groups")
			{
				groups.POST("", h.CreateGroup)
				groups.POST("/:id/members", h.AddGroupMember)
				groups.POST("/:id/messages", h.SendGroupMessage)
				groups.GET("/:id/messages", h.ListGroupMessages)
			}

			// 直播
			streams := authed.Group("/streams")
			{
				streams.POST("", h.StartStream)
				streams.GET("", h.ListLiveStreams)
				streams.GET("/:id", h.GetStream)
				streams.POST("/:id/end", h.EndStream)
			}

			// 通知
			notifications := authed.Group("/notifications")
			{
				notifications.GET("", h.ListNotifications)
				notifications.GET("/unread", h.CountUnreadNotifications)
				notifications.PUT("/read", h.MarkAllNotificationsRead)
				notifications.PUT("/:id/read", h.MarkNotificationRead)
				notifications.GET("/settings", h.GetNotificationSettings)
				notifications.PUT("/settings", h.UpdateNotificationSettings)
			}

			// 代币
			tokens := authed.Group("/tokens")
			{
				tokens.POST("/invoice", h.CreateInvoice)
				tokens.GET("/payments/:payment_id", h.CheckPayment)
				tokens.POST("/spend", h.SpendTokens)
				tokens.GET("/balance", h.GetBalance)
				tokens.GET("/purchases", h.ListPurchases)
				tokens.GET("/transactions", h.ListTransactions)
			}
		}
	}

	return router
}
