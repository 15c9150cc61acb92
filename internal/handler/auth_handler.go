package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/middleware"
	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/auth"
	"github.com/argilla-io/argilla-server/internal/service/policy"
)

// AuthHandler 认证与用户处理器
type AuthHandler struct {
	svc *service.Services
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(svc *service.Services) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Auth.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			Unauthorized(c, err.Error())
			return
		}
		Error(c, err)
		return
	}

	Success(c, data)
}

// Me 获取当前用户
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "authentication required")
		return
	}
	Success(c, user.ToUserInfo())
}

// CreateUser 创建用户
func (h *AuthHandler) CreateUser(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpUserManage, ""); !ok {
		return
	}

	var req auth.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	user, err := h.svc.Auth.CreateUser(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, user.ToUserInfo())
}

// ListUsers 列出用户
func (h *AuthHandler) ListUsers(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpUserManage, ""); !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	users, err := h.svc.Auth.ListUsers(c.Request.Context(), offset, limit)
	if err != nil {
		Error(c, err)
		return
	}

	infos := make([]*model.UserInfo, 0, len(users))
	for _, u := range users {
		infos = append(infos, u.ToUserInfo())
	}
	Success(c, infos)
}
