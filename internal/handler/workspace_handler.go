package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
	"github.com/argilla-io/argilla-server/internal/service/workspace"
)

// WorkspaceHandler 工作区处理器
type WorkspaceHandler struct {
	svc *service.Services
}

// NewWorkspaceHandler 创建工作区处理器
func NewWorkspaceHandler(svc *service.Services) *WorkspaceHandler {
	return &WorkspaceHandler{svc: svc}
}

// CreateWorkspace 创建工作区
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWorkspaceManage, ""); !ok {
		return
	}

	var req workspace.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Workspace.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, data)
}

// GetWorkspace 获取工作区
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	id := c.Param("id")
	if _, ok := authorize(c, h.svc, policy.OpDatasetRead, id); !ok {
		return
	}

	data, err := h.svc.Workspace.Get(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// ListWorkspaces 列出工作区
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	data, err := h.svc.Workspace.List(c.Request.Context(), offset, limit)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// DeleteWorkspace 删除工作区
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWorkspaceManage, ""); !ok {
		return
	}

	if err := h.svc.Workspace.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// addMemberRequest 添加成员请求
type addMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// AddMember 添加工作区成员
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWorkspaceManage, ""); !ok {
		return
	}

	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	member, err := h.svc.Workspace.AddMember(c.Request.Context(), c.Param("id"), req.UserID)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, member)
}

// RemoveMember 移除工作区成员
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWorkspaceManage, ""); !ok {
		return
	}

	if err := h.svc.Workspace.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("userID")); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}
