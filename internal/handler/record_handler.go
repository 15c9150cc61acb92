package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
	"github.com/argilla-io/argilla-server/internal/service/record"
)

// RecordHandler 记录处理器
type RecordHandler struct {
	svc *service.Services
}

// NewRecordHandler 创建记录处理器
func NewRecordHandler(svc *service.Services) *RecordHandler {
	return &RecordHandler{svc: svc}
}

// authorizeRecord 加载记录及其数据集并按工作区鉴权
func (h *RecordHandler) authorizeRecord(c *gin.Context, recordID string, op policy.Operation) (*model.Record, bool) {
	rec, err := h.svc.Record.Get(c.Request.Context(), recordID)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	ds, err := h.svc.Dataset.Get(c.Request.Context(), rec.DatasetID)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	if _, ok := authorize(c, h.svc, op, ds.WorkspaceID); !ok {
		return nil, false
	}
	return rec, true
}

// bulkCreateRequest 批量创建请求
type bulkCreateRequest struct {
	Items []record.CreateRecordItem `json:"items" binding:"required"`
}

// BulkCreateRecords 批量创建记录
func (h *RecordHandler) BulkCreateRecords(c *gin.Context) {
	datasetID := c.Param("id")

	ds, err := h.svc.Dataset.Get(c.Request.Context(), datasetID)
	if err != nil {
		Error(c, err)
		return
	}
	if _, ok := authorize(c, h.svc, policy.OpRecordCreate, ds.WorkspaceID); !ok {
		return
	}

	var req bulkCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	result, err := h.svc.Record.BulkCreate(c.Request.Context(), datasetID, req.Items)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, result)
}

// ListRecords 按插入顺序列出记录
func (h *RecordHandler) ListRecords(c *gin.Context) {
	datasetID := c.Param("id")

	ds, err := h.svc.Dataset.Get(c.Request.Context(), datasetID)
	if err != nil {
		Error(c, err)
		return
	}
	if _, ok := authorize(c, h.svc, policy.OpDatasetRead, ds.WorkspaceID); !ok {
		return
	}

	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	records, total, err := h.svc.Record.List(c.Request.Context(), datasetID, offset, limit)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, records, total)
}

// GetRecord 获取记录
func (h *RecordHandler) GetRecord(c *gin.Context) {
	rec, ok := h.authorizeRecord(c, c.Param("id"), policy.OpDatasetRead)
	if !ok {
		return
	}
	Success(c, rec)
}

// updateMetadataRequest 更新元数据请求
type updateMetadataRequest struct {
	Metadata model.JSONMap `json:"metadata"`
}

// UpdateRecordMetadata 更新记录元数据
func (h *RecordHandler) UpdateRecordMetadata(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeRecord(c, id, policy.OpRecordCreate); !ok {
		return
	}

	var req updateMetadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	rec, err := h.svc.Record.UpdateMetadata(c.Request.Context(), id, req.Metadata)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, rec)
}

// upsertVectorRequest 写入向量请求
type upsertVectorRequest struct {
	Name  string    `json:"name" binding:"required"`
	Value []float64 `json:"value" binding:"required"`
}

// UpsertRecordVector 写入或替换记录向量
func (h *RecordHandler) UpsertRecordVector(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeRecord(c, id, policy.OpRecordCreate); !ok {
		return
	}

	var req upsertVectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	vector, err := h.svc.Record.UpsertVector(c.Request.Context(), id, req.Name, req.Value)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, vector)
}

// DeleteRecord 删除记录
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeRecord(c, id, policy.OpRecordCreate); !ok {
		return
	}

	if err := h.svc.Record.Delete(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}
