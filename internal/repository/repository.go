package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	DB         *gorm.DB // 直接访问数据库
	User       *UserRepository
	Workspace  *WorkspaceRepository
	Dataset    *DatasetRepository
	Record     *RecordRepository
	Response   *ResponseRepository
	Suggestion *SuggestionRepository
	Webhook    *WebhookRepository
}

// NewRepositories 创建所有仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:         db,
		User:       NewUserRepository(db),
		Workspace:  NewWorkspaceRepository(db),
		Dataset:    NewDatasetRepository(db),
		Record:     NewRecordRepository(db),
		Response:   NewResponseRepository(db),
		Suggestion: NewSuggestionRepository(db),
		Webhook:    NewWebhookRepository(db),
	}
}
