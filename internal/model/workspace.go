package model

import "time"

// Workspace 工作区，数据集的归属单位
type Workspace struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Workspace) TableName() string {
	return "workspaces"
}

// WorkspaceMember 工作区成员关系
type WorkspaceMember struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	WorkspaceID string    `gorm:"index:idx_workspace_user,unique;size:36;not null" json:"workspace_id"`
	UserID      string    `gorm:"index:idx_workspace_user,unique;size:36;not null" json:"user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName 指定表名
func (WorkspaceMember) TableName() string {
	return "workspace_members"
}
