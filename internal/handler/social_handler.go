package handler

import (
	"errors"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	PostID  *int64 `json:"post_id"`
	MediaID *int64 `json:"media_id"`
	Content string `json:"content" binding:"required"`
}

// CreateComment 发评论
func (h *Handler) CreateComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	comment, err := h.socialService.Comment(c.Request.Context(), currentUserID(c), req.PostID, req.MediaID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentBadTarget), errors.Is(err, service.ErrEmptyContent):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrPostNotFound), errors.Is(err, repository.ErrMediaNotFound):
			response.NotFound(c, err.Error())
		default:
			response.ServerError(c, "评论失败")
		}
		return
	}
	response.Success(c, comment)
}

// ListComments 帖子的评论列表
func (h *Handler) ListComments(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	comments, err := h.socialService.ListComments(c.Request.Context(), postID, page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, comments)
}

// ListMediaComments 媒体的评论列表
func (h *Handler) ListMediaComments(c *gin.Context) {
	mediaID, ok := parseID(c, "id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	comments, err := h.socialService.ListMediaComments(c.Request.Context(), mediaID, page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, comments)
}

type likeRequest struct {
	PostID  *int64 `json:"post_id"`
	MediaID *int64 `json:"media_id"`
}

// Like 点赞
func (h *Handler) Like(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	err := h.socialService.Like(c.Request.Context(), currentUserID(c), req.PostID, req.MediaID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLikeBadTarget):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrPostNotFound), errors.Is(err, repository.ErrMediaNotFound):
			response.NotFound(c, err.Error())
		default:
			response.ServerError(c, "点赞失败")
		}
		return
	}
	response.Success(c, nil)
}

// Unlike 取消点赞
func (h *Handler) Unlike(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.socialService.Unlike(c.Request.Context(), currentUserID(c), postID); err != nil {
		response.ServerError(c, "取消点赞失败")
		return
	}
	response.Success(c, nil)
}

// UnlikeMedia 取消媒体点赞
func (h *Handler) UnlikeMedia(c *gin.Context) {
	mediaID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.socialService.UnlikeMedia(c.Request.Context(), currentUserID(c), mediaID); err != nil {
		response.ServerError(c, "取消点赞失败")
		return
	}
	response.Success(c, nil)
}

// Subscribe 订阅作者
func (h *Handler) Subscribe(c *gin.Context) {
	creatorID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	err := h.socialService.Subscribe(c.Request.Context(), currentUserID(c), creatorID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscribeSelf):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrProfileNotFound):
			response.NotFound(c, "作者不存在")
		default:
			response.ServerError(c, "订阅失败")
		}
		return
	}
	response.Success(c, nil)
}

// Unsubscribe 取消订阅
func (h *Handler) Unsubscribe(c *gin.Context) {
	creatorID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	if err := h.socialService.Unsubscribe(c.Request.Context(), currentUserID(c), creatorID); err != nil {
		response.ServerError(c, "取消订阅失败")
		return
	}
	response.Success(c, nil)
}

// ListSubscriptions 自己的订阅列表
func (h *Handler) ListSubscriptions(c *gin.Context) {
	subs, err := h.socialService.ListSubscriptions(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, subs)
}
