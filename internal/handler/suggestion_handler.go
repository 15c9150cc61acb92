package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
	"github.com/argilla-io/argilla-server/internal/service/suggestion"
)

// SuggestionHandler 建议处理器
type SuggestionHandler struct {
	svc *service.Services
}

// NewSuggestionHandler 创建建议处理器
func NewSuggestionHandler(svc *service.Services) *SuggestionHandler {
	return &SuggestionHandler{svc: svc}
}

// authorizeRecord 按记录所在工作区鉴权
func (h *SuggestionHandler) authorizeRecord(c *gin.Context, recordID string, op policy.Operation) bool {
	rec, err := h.svc.Record.Get(c.Request.Context(), recordID)
	if err != nil {
		Error(c, err)
		return false
	}
	ds, err := h.svc.Dataset.Get(c.Request.Context(), rec.DatasetID)
	if err != nil {
		Error(c, err)
		return false
	}
	_, ok := authorize(c, h.svc, op, ds.WorkspaceID)
	return ok
}

// UpsertSuggestion 写入或替换记录某问题的建议
func (h *SuggestionHandler) UpsertSuggestion(c *gin.Context) {
	recordID := c.Param("id")
	if !h.authorizeRecord(c, recordID, policy.OpSuggestionWrite) {
		return
	}

	var req suggestion.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Suggestion.Upsert(c.Request.Context(), recordID, &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// ListSuggestions 列出记录的建议
func (h *SuggestionHandler) ListSuggestions(c *gin.Context) {
	recordID := c.Param("id")
	if !h.authorizeRecord(c, recordID, policy.OpDatasetRead) {
		return
	}

	data, err := h.svc.Suggestion.ListByRecord(c.Request.Context(), recordID)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// DeleteSuggestion 删除记录某问题的建议
func (h *SuggestionHandler) DeleteSuggestion(c *gin.Context) {
	recordID := c.Param("id")
	if !h.authorizeRecord(c, recordID, policy.OpSuggestionWrite) {
		return
	}

	if err := h.svc.Suggestion.Delete(c.Request.Context(), recordID, c.Param("questionID")); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}
