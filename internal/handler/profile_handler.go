package handler

import (
	"errors"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

// GetMyProfile 查自己的资料
func (h *Handler) GetMyProfile(c *gin.Context) {
	profile, err := h.profileService.GetByUserID(c.Request.Context(), currentUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			response.NotFound(c, "用户资料不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, profile)
}

// GetProfileByUsername 按用户名查资料
func (h *Handler) GetProfileByUsername(c *gin.Context) {
	profile, err := h.profileService.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			response.NotFound(c, "用户资料不存在")
			return
		}
		response.ServerError(c, "查询失败")
		return
	}
	response.Success(c, profile)
}

// SearchUsers 按用户名或昵称搜索用户
func (h *Handler) SearchUsers(c *gin.Context) {
	keyword := c.Query("q")
	if keyword == "" {
		response.ParamError(c, "缺少搜索关键词")
		return
	}

	profiles, err := h.profileService.Search(c.Request.Context(), keyword)
	if err != nil {
		response.ServerError(c, "搜索失败")
		return
	}
	response.Success(c, profiles)
}

// UpdateProfile 更新资料
func (h *Handler) UpdateProfile(c *gin.Context) {
	var input service.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	profile, err := h.profileService.Update(c.Request.Context(), currentUserID(c), &input)
	if err != nil {
		response.ServerError(c, "更新失败")
		return
	}
	response.Success(c, profile)
}
