package handler

import (
	"errors"

	"fanstream/internal/repository"
	"fanstream/internal/service"
	"fanstream/pkg/response"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Username string `json:"username" binding:"required,min=3,max=32"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Username)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailTaken):
			response.ParamError(c, "邮箱已被注册")
		case errors.Is(err, service.ErrUsernameTaken):
			response.ParamError(c, "用户名已被占用")
		default:
			response.ServerError(c, "注册失败")
		}
		return
	}

	response.Success(c, result)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(c, "邮箱或密码错误")
			return
		}
		response.ServerError(c, "登录失败")
		return
	}

	response.Success(c, result)
}

// Logout 注销
func (h *Handler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), currentUserID(c)); err != nil {
		response.ServerError(c, "注销失败")
		return
	}
	response.Success(c, nil)
}
