// Package handler HTTP 处理器层：解析请求、鉴权、调用服务并统一编码响应
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/middleware"
	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
)

// Handlers 处理器集合
type Handlers struct {
	Auth       *AuthHandler
	Workspace  *WorkspaceHandler
	Dataset    *DatasetHandler
	Record     *RecordHandler
	Response   *ResponseHandler
	Suggestion *SuggestionHandler
	Search     *SearchHandler
	Webhook    *WebhookHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc),
		Workspace:  NewWorkspaceHandler(svc),
		Dataset:    NewDatasetHandler(svc),
		Record:     NewRecordHandler(svc),
		Response:   NewResponseHandler(svc),
		Suggestion: NewSuggestionHandler(svc),
		Search:     NewSearchHandler(svc),
		Webhook:    NewWebhookHandler(svc),
	}
}

// authorize 取当前用户并做操作鉴权。
// workspaceID 非空时先查成员关系；未授权时已写好响应，调用方直接 return。
func authorize(c *gin.Context, svc *service.Services, op policy.Operation, workspaceID string) (*model.User, bool) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		Unauthorized(c, "authentication required")
		return nil, false
	}

	isMember := false
	if workspaceID != "" {
		var err error
		isMember, err = svc.Workspace.IsMember(c.Request.Context(), workspaceID, user.ID)
		if err != nil {
			Error(c, err)
			return nil, false
		}
	}

	if err := policy.Check(user, op, isMember); err != nil {
		Forbidden(c, err.Error())
		return nil, false
	}
	return user, true
}
