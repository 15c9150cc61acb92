package repository

import (
	"github.com/argilla-io/argilla-server/internal/model"
	"gorm.io/gorm"
)

// WebhookRepository Webhook 仓库
type WebhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository 创建 Webhook 仓库
func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// Create 创建 Webhook
func (r *WebhookRepository) Create(webhook *model.Webhook) error {
	return r.db.Create(webhook).Error
}

// GetByID 根据ID获取 Webhook
func (r *WebhookRepository) GetByID(id string) (*model.Webhook, error) {
	var webhook model.Webhook
	err := r.db.Where("id = ?", id).First(&webhook).Error
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

// List 列出全部 Webhook
func (r *WebhookRepository) List() ([]*model.Webhook, error) {
	var webhooks []*model.Webhook
	err := r.db.Order("created_at DESC").Find(&webhooks).Error
	return webhooks, err
}

// ListEnabled 列出启用状态的 Webhook
func (r *WebhookRepository) ListEnabled() ([]*model.Webhook, error) {
	var webhooks []*model.Webhook
	err := r.db.Where("enabled = ?", true).Find(&webhooks).Error
	return webhooks, err
}

// Update 更新 Webhook
func (r *WebhookRepository) Update(webhook *model.Webhook) error {
	return r.db.Save(webhook).Error
}

// Delete 删除 Webhook
func (r *WebhookRepository) Delete(id string) error {
	return r.db.Delete(&model.Webhook{}, "id = ?", id).Error
}
