package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/dataset"
	"github.com/argilla-io/argilla-server/internal/service/policy"
)

// DatasetHandler 数据集处理器
type DatasetHandler struct {
	svc *service.Services
}

// NewDatasetHandler 创建数据集处理器
func NewDatasetHandler(svc *service.Services) *DatasetHandler {
	return &DatasetHandler{svc: svc}
}

// authorizeDataset 加载数据集并按其所属工作区鉴权
func (h *DatasetHandler) authorizeDataset(c *gin.Context, datasetID string, op policy.Operation) (*model.Dataset, bool) {
	ds, err := h.svc.Dataset.Get(c.Request.Context(), datasetID)
	if err != nil {
		Error(c, err)
		return nil, false
	}
	if _, ok := authorize(c, h.svc, op, ds.WorkspaceID); !ok {
		return nil, false
	}
	return ds, true
}

// CreateDataset 创建数据集
func (h *DatasetHandler) CreateDataset(c *gin.Context) {
	var req dataset.CreateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}
	if _, ok := authorize(c, h.svc, policy.OpDatasetCreate, req.WorkspaceID); !ok {
		return
	}

	data, err := h.svc.Dataset.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, data)
}

// GetDataset 获取数据集
func (h *DatasetHandler) GetDataset(c *gin.Context) {
	ds, ok := h.authorizeDataset(c, c.Param("id"), policy.OpDatasetRead)
	if !ok {
		return
	}
	Success(c, ds)
}

// ListDatasets 列出数据集
func (h *DatasetHandler) ListDatasets(c *gin.Context) {
	workspaceID := c.Query("workspace_id")
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	if workspaceID != "" {
		if _, ok := authorize(c, h.svc, policy.OpDatasetRead, workspaceID); !ok {
			return
		}
	}

	datasets, total, err := h.svc.Dataset.List(c.Request.Context(), workspaceID, offset, limit)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, datasets, total)
}

// UpdateDataset 更新数据集
func (h *DatasetHandler) UpdateDataset(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetConfigure); !ok {
		return
	}

	var req dataset.UpdateDatasetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Dataset.Update(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// PublishDataset 发布数据集
func (h *DatasetHandler) PublishDataset(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetPublish); !ok {
		return
	}

	data, err := h.svc.Dataset.Publish(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// DeleteDataset 删除数据集
func (h *DatasetHandler) DeleteDataset(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetDelete); !ok {
		return
	}

	if err := h.svc.Dataset.Delete(c.Request.Context(), id); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// ========== 结构配置 ==========

// CreateField 创建字段
func (h *DatasetHandler) CreateField(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetConfigure); !ok {
		return
	}

	var req dataset.CreateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	field, err := h.svc.Dataset.CreateField(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, field)
}

// ListFields 列出字段
func (h *DatasetHandler) ListFields(c *gin.Context) {
	ds, ok := h.authorizeDataset(c, c.Param("id"), policy.OpDatasetRead)
	if !ok {
		return
	}
	Success(c, ds.Fields)
}

// CreateQuestion 创建问题
func (h *DatasetHandler) CreateQuestion(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetConfigure); !ok {
		return
	}

	var req dataset.CreateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	question, err := h.svc.Dataset.CreateQuestion(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, question)
}

// ListQuestions 列出问题
func (h *DatasetHandler) ListQuestions(c *gin.Context) {
	ds, ok := h.authorizeDataset(c, c.Param("id"), policy.OpDatasetRead)
	if !ok {
		return
	}
	Success(c, ds.Questions)
}

// UpdateQuestion 更新问题
func (h *DatasetHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.Param("id")

	question, err := h.svc.Dataset.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		Error(c, err)
		return
	}
	if _, ok := h.authorizeDataset(c, question.DatasetID, policy.OpDatasetConfigure); !ok {
		return
	}

	var req dataset.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	updated, err := h.svc.Dataset.UpdateQuestion(c.Request.Context(), questionID, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, updated)
}

// DeleteQuestion 删除问题
func (h *DatasetHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.Param("id")

	question, err := h.svc.Dataset.GetQuestion(c.Request.Context(), questionID)
	if err != nil {
		Error(c, err)
		return
	}
	if _, ok := h.authorizeDataset(c, question.DatasetID, policy.OpDatasetConfigure); !ok {
		return
	}

	if err := h.svc.Dataset.DeleteQuestion(c.Request.Context(), questionID); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// CreateMetadataProperty 创建元数据属性
func (h *DatasetHandler) CreateMetadataProperty(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetConfigure); !ok {
		return
	}

	var req dataset.CreateMetadataPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	property, err := h.svc.Dataset.CreateMetadataProperty(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, property)
}

// ListMetadataProperties 列出元数据属性
func (h *DatasetHandler) ListMetadataProperties(c *gin.Context) {
	ds, ok := h.authorizeDataset(c, c.Param("id"), policy.OpDatasetRead)
	if !ok {
		return
	}
	Success(c, ds.MetadataProperties)
}

// CreateVectorSettings 创建向量配置
func (h *DatasetHandler) CreateVectorSettings(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetConfigure); !ok {
		return
	}

	var req dataset.CreateVectorSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	settings, err := h.svc.Dataset.CreateVectorSettings(c.Request.Context(), id, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, settings)
}

// ListVectorSettings 列出向量配置
func (h *DatasetHandler) ListVectorSettings(c *gin.Context) {
	ds, ok := h.authorizeDataset(c, c.Param("id"), policy.OpDatasetRead)
	if !ok {
		return
	}
	Success(c, ds.VectorSettings)
}

// ========== 进度与指标 ==========

// GetProgress 获取数据集进度
func (h *DatasetHandler) GetProgress(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetRead); !ok {
		return
	}

	progress, err := h.svc.Dataset.GetProgress(c.Request.Context(), id)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, progress)
}

// GetUserMetrics 获取某用户在数据集内的响应统计
func (h *DatasetHandler) GetUserMetrics(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorizeDataset(c, id, policy.OpDatasetRead); !ok {
		return
	}

	metrics, err := h.svc.Dataset.GetUserMetrics(c.Request.Context(), id, c.Param("userID"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, metrics)
}
