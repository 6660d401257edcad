package handler

import (
	"errors"
	"strconv"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的 "+name)
		return 0, false
	}
	return id, true
}

func parsePage(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

// ---------------------------------------------------------------------------
// 帖子
// ---------------------------------------------------------------------------

// CreatePost 发帖
func (h *Handler) CreatePost(c *gin.Context) {
	var input service.CreatePostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	post, err := h.postService.Create(c.Request.Context(), currentUserID(c), &input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent),
			errors.Is(err, service.ErrInvalidTokenCost),
			errors.Is(err, service.ErrInvalidViewCondition):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "发帖失败")
		}
		return
	}
	response.Success(c, post)
}

// GetPost 查看帖子，访问口令通过 query 参数传入
func (h *Handler) GetPost(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.postService.Get(c.Request.Context(), currentUserID(c), postID, c.Query("password"))
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "帖子不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, view)
}

// GetFeed 订阅流
func (h *Handler) GetFeed(c *gin.Context) {
	page, pageSize := parsePage(c)
	views, err := h.postService.ListFeed(c.Request.Context(), currentUserID(c), page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, views)
}

// ListUserPosts 某个作者的帖子列表
func (h *Handler) ListUserPosts(c *gin.Context) {
	authorID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	views, total, err := h.postService.ListByUser(c.Request.Context(), currentUserID(c), authorID, page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, gin.H{"items": views, "total": total})
}

// DeletePost 删帖（只能删自己的）
func (h *Handler) DeletePost(c *gin.Context) {
	postID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), currentUserID(c), postID); err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			response.NotFound(c, "帖子不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}
	response.Success(c, nil)
}

// ---------------------------------------------------------------------------
// 媒体
// ---------------------------------------------------------------------------

// UploadMedia 上传媒体文件（multipart 表单）
func (h *Handler) UploadMedia(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.ParamError(c, "缺少上传文件")
		return
	}
	defer file.Close()

	tokenCost, _ := strconv.ParseInt(c.PostForm("token_cost"), 10, 64)

	input := &service.UploadMediaInput{
		Type:           c.PostForm("type"),
		Filename:       header.Filename,
		ContentType:    header.Header.Get("Content-Type"),
		Description:    c.PostForm("description"),
		TokenCost:      tokenCost,
		ViewCondition:  c.PostForm("view_condition"),
		AccessPassword: c.PostForm("access_password"),
		Body:           file,
	}

	media, err := h.mediaService.Upload(c.Request.Context(), currentUserID(c), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTokenCost),
			errors.Is(err, service.ErrInvalidViewCondition):
			response.ParamError(c, err.Error())
		default:
			response.ServerError(c, "上传失败")
		}
		return
	}
	response.Success(c, media)
}

// GetMedia 查看媒体
func (h *Handler) GetMedia(c *gin.Context) {
	mediaID, ok := parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.mediaService.Get(c.Request.Context(), currentUserID(c), mediaID, c.Query("password"))
	if err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			response.NotFound(c, "媒体不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, view)
}

// ListUserMedia 某个作者的媒体列表，type 参数可过滤 photo / video
func (h *Handler) ListUserMedia(c *gin.Context) {
	ownerID, ok := parseID(c, "user_id")
	if !ok {
		return
	}
	page, pageSize := parsePage(c)

	views, total, err := h.mediaService.ListByUser(
		c.Request.Context(), currentUserID(c), ownerID, c.Query("type"), page, pageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, gin.H{"items": views, "total": total})
}

// DeleteMedia 删除媒体（只能删自己的）
func (h *Handler) DeleteMedia(c *gin.Context) {
	mediaID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.mediaService.Delete(c.Request.Context(), currentUserID(c), mediaID); err != nil {
		if errors.Is(err, repository.ErrMediaNotFound) {
			response.NotFound(c, "媒体不存在")
			return
		}
		response.ServerError(c, "删除失败")
		return
	}
	response.Success(c, nil)
}
