package handler

import (
	"errors"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

type sendMessageRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// SendMessage 发私信
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), currentUserID(c), req.RecipientID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMessageSelf), errors.Is(err, service.ErrEmptyContent):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, "收件人不存在")
		default:
			response.ServerError(c, "发送失败")
		}
		return
	}
	response.Success(c, message)
}

// GetConversation 拉取和某个用户的会话
func (h *Handler) GetConversation(c *gin.Context) {
	peerID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	messages, err := h.messageService.GetConversation(c.Request.Context(), currentUserID(c), peerID, page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, messages)
}

// CountUnreadMessages 未读私信数
func (h *Handler) CountUnreadMessages(c *gin.Context) {
	count, err := h.messageService.CountUnread(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, gin.H{"unread": count})
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateGroup 建群
func (h *Handler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	group, err := h.messageService.CreateGroup(c.Request.Context(), currentUserID(c), req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmptyGroupName) {
			response.ParamError(c, err.Error())
			return
		}
		response.ServerError(c, "建群失败")
		return
	}
	response.Success(c, group)
}

type addGroupMemberRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}

// AddGroupMember 拉人入群
func (h *Handler) AddGroupMember(c *gin.Context) {
	groupID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req addGroupMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.messageService.AddGroupMember(c.Request.Context(), currentUserID(c), groupID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotGroupCreator):
			response.Forbidden(c, err.Error())
		case errors.Is(err, repository.ErrGroupNotFound), errors.Is(err, repository.ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			response.ServerError(c, "操作失败")
		}
		return
	}
	response.Success(c, nil)
}

type groupMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// SendGroupMessage 发群消息
func (h *Handler) SendGroupMessage(c *gin.Context) {
	groupID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req groupMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	message, err := h.messageService.SendGroupMessage(c.Request.Context(), currentUserID(c), groupID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrNotGroupMember):
			response.Forbidden(c, err.Error())
		default:
			response.ServerError(c, "发送失败")
		}
		return
	}
	response.Success(c, message)
}

// ListGroupMessages 拉群消息
func (h *Handler) ListGroupMessages(c *gin.Context) {
	groupID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	messages, err := h.messageService.ListGroupMessages(c.Request.Context(), currentUserID(c), groupID, page, pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrNotGroupMember) {
			response.Forbidden(c, err.Error())
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, messages)
}
