package handler

import (
	"net/http"

	"fanstream/internal/realtime"
	"fanstream/internal/service"

	"github.com/gorilla/websocket"
)

// Handler HTTP 处理器集合
type Handler struct {
	authService         *service.AuthService
	profileService      *service.ProfileService
	postService         *service.PostService
	mediaService        *service.MediaService
	socialService       *service.SocialService
	messageService      *service.MessageService
	livestreamService   *service.LiveStreamService
	notificationService *service.NotificationService
	purchaseService     *service.PurchaseService
	spendService        *service.SpendService
	hub                 *realtime.Hub
	upgrader            websocket.Upgrader
}

func NewHandler(
	authService *service.AuthService,
	profileService *service.ProfileService,
	postService *service.PostService,
	mediaService *service.MediaService,
	socialService *service.SocialService,
	messageService *service.MessageService,
	livestreamService *service.LiveStreamService,
	notificationService *service.NotificationService,
	purchaseService *service.PurchaseService,
	spendService *service.SpendService,
	hub *realtime.Hub,
) *Handler {
	return &Handler{
		authService:         authService,
		profileService:      profileService,
		postService:         postService,
		mediaService:        mediaService,
		socialService:       socialService,
		messageService:      messageService,
		livestreamService:   livestreamService,
		notificationService: notificationService,
		purchaseService:     purchaseService,
		spendService:        spendService,
		hub:                 hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 浏览器端跨域由 CORS 中间件把关，这里放行所有 Origin
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}
