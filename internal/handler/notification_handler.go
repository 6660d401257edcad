package handler

import (
	"fanstream/internal/model"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

// ListNotifications 通知列表
func (h *Handler) ListNotifications(c *gin.Context) {
	page, pageSize := parsePage(c)
	notifications, err := h.notificationService.List(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, notifications)
}

// CountUnreadNotifications 未读通知数
func (h *Handler) CountUnreadNotifications(c *gin.Context) {
	count, err := h.notificationService.CountUnread(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, gin.H{"unread": count})
}

// MarkNotificationRead 单条标记已读
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	notificationID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), currentUserID(c), notificationID); err != nil {
		response.ServerError(c, "操作失败")
		return
	}
	response.Success(c, nil)
}

// MarkAllNotificationsRead 全部标记已读
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	if err := h.notificationService.MarkAllRead(c.Request.Context(), currentUserID(c)); err != nil {
		response.ServerError(c, "操作失败")
		return
	}
	response.Success(c, nil)
}

// GetNotificationSettings 查通知偏好
func (h *Handler) GetNotificationSettings(c *gin.Context) {
	settings, err := h.notificationService.GetSettings(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, settings)
}

type notificationSettingsRequest struct {
	Likes         *bool `json:"likes"`
	Comments      *bool `json:"comments"`
	Messages      *bool `json:"messages"`
	Subscriptions *bool `json:"subscriptions"`
}

// UpdateNotificationSettings 改通知偏好，没传的字段保持原值
func (h *Handler) UpdateNotificationSettings(c *gin.Context) {
	var req notificationSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	userID := currentUserID(c)
	current, err := h.notificationService.GetSettings(c.Request.Context(), userID)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	setting := &model.NotificationSetting{
		UserID:        userID,
		Likes:         current.Likes,
		Comments:      current.Comments,
		Messages:      current.Messages,
		Subscriptions: current.Subscriptions,
	}
	if req.Likes != nil {
		setting.Likes = *req.Likes
	}
	if req.Comments != nil {
		setting.Comments = *req.Comments
	}
	if req.Messages != nil {
		setting.Messages = *req.Messages
	}
	if req.Subscriptions != nil {
		setting.Subscriptions = *req.Subscriptions
	}

	if err := h.notificationService.UpdateSettings(c.Request.Context(), setting); err != nil {
		response.ServerError(c, "保存失败")
		return
	}
	response.Success(c, setting)
}
