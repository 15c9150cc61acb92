package repository

import (
	"errors"

	"github.com/argilla-io/argilla-server/internal/model"
	"gorm.io/gorm"
)

// WorkspaceRepository 工作区仓库
type WorkspaceRepository struct {
	db *gorm.DB
}

// NewWorkspaceRepository 创建工作区仓库
func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create 创建工作区
func (r *WorkspaceRepository) Create(workspace *model.Workspace) error {
	return r.db.Create(workspace).Error
}

// GetByID 根据ID获取工作区
func (r *WorkspaceRepository) GetByID(id string) (*model.Workspace, error) {
	var workspace model.Workspace
	err := r.db.Where("id = ?", id).First(&workspace).Error
	if err != nil {
		return nil, err
	}
	return &workspace, nil
}

// List 列出工作区
func (r *WorkspaceRepository) List(offset, limit int) ([]*model.Workspace, error) {
	var workspaces []*model.Workspace
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&workspaces).Error
	return workspaces, err
}

// Delete 删除工作区
func (r *WorkspaceRepository) Delete(id string) error {
	return r.db.Delete(&model.Workspace{}, "id = ?", id).Error
}

// AddMember 添加成员
func (r *WorkspaceRepository) AddMember(member *model.WorkspaceMember) error {
	return r.db.Create(member).Error
}

// RemoveMember 移除成员
func (r *WorkspaceRepository) RemoveMember(workspaceID, userID string) error {
	return r.db.Delete(&model.WorkspaceMember{}, "workspace_id = ? AND user_id = ?", workspaceID, userID).Error
}

// IsMember 用户是否是工作区成员
func (r *WorkspaceRepository) IsMember(workspaceID, userID string) (bool, error) {
	var member model.WorkspaceMember
	err := r.db.Where("workspace_id = ? AND user_id = ?", workspaceID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListMembers 列出工作区成员
func (r *WorkspaceRepository) ListMembers(workspaceID string) ([]*model.WorkspaceMember, error) {
	var members []*model.WorkspaceMember
	err := r.db.Where("workspace_id = ?", workspaceID).Find(&members).Error
	return members, err
}
