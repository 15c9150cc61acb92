package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
	"github.com/argilla-io/argilla-server/internal/service/response"
)

// ResponseHandler 响应处理器
type ResponseHandler struct {
	svc *service.Services
}

// NewResponseHandler 创建响应处理器
func NewResponseHandler(svc *service.Services) *ResponseHandler {
	return &ResponseHandler{svc: svc}
}

// CreateResponse 为当前用户创建响应
func (h *ResponseHandler) CreateResponse(c *gin.Context) {
	recordID := c.Param("id")

	rec, err := h.svc.Record.Get(c.Request.Context(), recordID)
	if err != nil {
		Error(c, err)
		return
	}
	ds, err := h.svc.Dataset.Get(c.Request.Context(), rec.DatasetID)
	if err != nil {
		Error(c, err)
		return
	}
	user, ok := authorize(c, h.svc, policy.OpResponseWrite, ds.WorkspaceID)
	if !ok {
		return
	}

	var req response.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Response.Create(c.Request.Context(), recordID, user, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, data)
}

// authorizeResponse 按响应所在记录的工作区鉴权
func (h *ResponseHandler) authorizeResponse(c *gin.Context, responseID string) (*model.User, bool) {
	resp, err := h.svc.Response.Get(c.Request.Context(), responseID)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	rec, err := h.svc.Record.Get(c.Request.Context(), resp.RecordID)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	ds, err := h.svc.Dataset.Get(c.Request.Context(), rec.DatasetID)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	return authorize(c, h.svc, policy.OpResponseWrite, ds.WorkspaceID)
}

// UpdateResponse 更新响应
func (h *ResponseHandler) UpdateResponse(c *gin.Context) {
	user, ok := h.authorizeResponse(c, c.Param("id"))
	if !ok {
		return
	}

	var req response.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Response.Update(c.Request.Context(), c.Param("id"), user, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// DeleteResponse 删除响应
func (h *ResponseHandler) DeleteResponse(c *gin.Context) {
	user, ok := h.authorizeResponse(c, c.Param("id"))
	if !ok {
		return
	}

	if err := h.svc.Response.Delete(c.Request.Context(), c.Param("id"), user); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// bulkUpsertRequest 批量写入响应请求
type bulkUpsertRequest struct {
	Items []response.BulkItem `json:"items" binding:"required"`
}

// BulkUpsertResponses 当前用户批量写入响应
func (h *ResponseHandler) BulkUpsertResponses(c *gin.Context) {
	datasetID := c.Param("id")

	ds, err := h.svc.Dataset.Get(c.Request.Context(), datasetID)
	if err != nil {
		Error(c, err)
		return
	}
	user, ok := authorize(c, h.svc, policy.OpResponseWrite, ds.WorkspaceID)
	if !ok {
		return
	}

	var req bulkUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Response.BulkUpsert(c.Request.Context(), datasetID, user, req.Items)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, result)
}
