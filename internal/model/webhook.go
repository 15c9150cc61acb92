package model

import "time"

// WebhookEvent 可订阅的事件类型
type WebhookEvent string

const (
	// EventRecordCreated 记录创建
	EventRecordCreated WebhookEvent = "record.created"
	// EventRecordUpdated 记录更新（含状态重算）
	EventRecordUpdated WebhookEvent = "record.updated"
	// EventRecordCompleted 记录达到完成阈值
	EventRecordCompleted WebhookEvent = "record.completed"
	// EventRecordDeleted 记录删除
	EventRecordDeleted WebhookEvent = "record.deleted"
	// EventResponseCreated 响应创建
	EventResponseCreated WebhookEvent = "response.created"
	// EventResponseUpdated 响应更新
	EventResponseUpdated WebhookEvent = "response.updated"
	// EventResponseDeleted 响应删除
	EventResponseDeleted WebhookEvent = "response.deleted"
	// EventDatasetPublished 数据集发布
	EventDatasetPublished WebhookEvent = "dataset.published"
	// EventDatasetDeleted 数据集删除
	EventDatasetDeleted WebhookEvent = "dataset.deleted"
)

// Webhook 外部回调订阅
type Webhook struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	URL         string     `gorm:"size:500;not null" json:"url"`
	Secret      string     `gorm:"size:255;not null" json:"-"`
	Description string     `gorm:"size:500" json:"description"`
	Events      StringList `gorm:"type:jsonb;not null" json:"events"`
	Enabled     bool       `gorm:"default:true" json:"enabled"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Webhook) TableName() string {
	return "webhooks"
}

// SubscribedTo 是否订阅了某事件
func (w *Webhook) SubscribedTo(event WebhookEvent) bool {
	for _, e := range w.Events {
		if e == string(event) {
			return true
		}
	}
	return false
}
