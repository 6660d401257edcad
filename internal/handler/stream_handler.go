package handler

import (
	"errors"
	"log"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

type startStreamRequest struct {
	Title string `json:"title" binding:"required"`
}

// StartStream 开播
func (h *Handler) StartStream(c *gin.Context) {
	var req startStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	stream, err := h.livestreamService.Start(c.Request.Context(), currentUserID(c), req.Title)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyStreamTitle):
			response.ParamError(c, err.Error())
		case errors.Is(err, repository.ErrStreamLive):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "开播失败")
		}
		return
	}
	response.Success(c, stream)
}

// EndStream 下播
func (h *Handler) EndStream(c *gin.Context) {
	streamID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.livestreamService.End(c.Request.Context(), currentUserID(c), streamID); err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			response.NotFound(c, "直播不存在或已结束")
			return
		}
		response.ServerError(c, "下播失败")
		return
	}
	response.Success(c, nil)
}

// GetStream 查直播详情
func (h *Handler) GetStream(c *gin.Context) {
	streamID, ok := parseID(c, "id")
	if !ok {
		return
	}

	stream, err := h.livestreamService.Get(c.Request.Context(), streamID)
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			response.NotFound(c, "直播不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, stream)
}

// ListLiveStreams 正在直播的列表
func (h *Handler) ListLiveStreams(c *gin.Context) {
	streams, err := h.livestreamService.ListLive(c.Request.Context())
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, streams)
}

// WebSocket 实时连接入口
// 通知 / 私信 / 直播信令都走这一条连接
func (h *Handler) WebSocket(c *gin.Context) {
	userID := currentUserID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket 升级失败: %v", err)
		return
	}

	h.hub.Register(conn, userID)
}
