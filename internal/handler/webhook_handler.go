package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/argilla-io/argilla-server/internal/service"
	"github.com/argilla-io/argilla-server/internal/service/policy"
	"github.com/argilla-io/argilla-server/internal/service/webhook"
)

// WebhookHandler Webhook 处理器
type WebhookHandler struct {
	svc *service.Services
}

// NewWebhookHandler 创建 Webhook 处理器
func NewWebhookHandler(svc *service.Services) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

// CreateWebhook 创建 Webhook
func (h *WebhookHandler) CreateWebhook(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWebhookManage, ""); !ok {
		return
	}

	var req webhook.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Webhook.Create(c.Request.Context(), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, data)
}

// ListWebhooks 列出 Webhook
func (h *WebhookHandler) ListWebhooks(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWebhookManage, ""); !ok {
		return
	}

	data, err := h.svc.Webhook.List(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// UpdateWebhook 更新 Webhook
func (h *WebhookHandler) UpdateWebhook(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWebhookManage, ""); !ok {
		return
	}

	var req webhook.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	data, err := h.svc.Webhook.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, data)
}

// DeleteWebhook 删除 Webhook
func (h *WebhookHandler) DeleteWebhook(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWebhookManage, ""); !ok {
		return
	}

	if err := h.svc.Webhook.Delete(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}

	NoContent(c)
}

// PingWebhook 向订阅方投递一条测试事件
func (h *WebhookHandler) PingWebhook(c *gin.Context) {
	if _, ok := authorize(c, h.svc, policy.OpWebhookManage, ""); !ok {
		return
	}

	if err := h.svc.Webhook.Ping(c.Request.Context(), c.Param("id")); err != nil {
		Error(c, err)
		return
	}

	Success(c, gin.H{"status": "ok"})
}
