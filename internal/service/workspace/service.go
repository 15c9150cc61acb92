package workspace

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/repository"
)

// Service 工作区服务
type Service struct {
	repo *repository.Repositories
}

// NewService 创建工作区服务
func NewService(repo *repository.Repositories) *Service {
	return &Service{repo: repo}
}

// CreateWorkspaceRequest 创建工作区请求
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// Create 创建工作区
func (s *Service) Create(ctx context.Context, req *CreateWorkspaceRequest) (*model.Workspace, error) {
	workspace := &model.Workspace{
		ID:   uuid.New().String(),
		Name: req.Name,
	}
	if err := s.repo.Workspace.Create(workspace); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return workspace, nil
}

// Get 获取工作区
func (s *Service) Get(ctx context.Context, id string) (*model.Workspace, error) {
	return s.repo.Workspace.GetByID(id)
}

// List 列出工作区
func (s *Service) List(ctx context.Context, offset, limit int) ([]*model.Workspace, error) {
	return s.repo.Workspace.List(offset, limit)
}

// Delete 删除工作区
func (s *Service) Delete(ctx context.Context, id string) error {
	count, err := s.repo.Dataset.Count(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("cannot delete workspace with %d datasets", count)
	}
	return s.repo.Workspace.Delete(id)
}

// AddMember 把用户加入工作区
func (s *Service) AddMember(ctx context.Context, workspaceID, userID string) (*model.WorkspaceMember, error) {
	if _, err := s.repo.Workspace.GetByID(workspaceID); err != nil {
		return nil, err
	}
	if _, err := s.repo.User.GetByID(userID); err != nil {
		return nil, err
	}

	member := &model.WorkspaceMember{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
	}
	if err := s.repo.Workspace.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	return member, nil
}

// RemoveMember 把用户移出工作区
func (s *Service) RemoveMember(ctx context.Context, workspaceID, userID string) error {
	return s.repo.Workspace.RemoveMember(workspaceID, userID)
}

// IsMember 用户是否是工作区成员
func (s *Service) IsMember(ctx context.Context, workspaceID, userID string) (bool, error) {
	return s.repo.Workspace.IsMember(workspaceID, userID)
}
