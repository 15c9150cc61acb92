// Package policy 集中定义操作到角色的授权表。
// 所有 handler 通过唯一的授权入口检查权限，避免角色判断散落在各处。
package policy

import (
	"errors"

	"github.com/argilla-io/argilla-server/internal/model"
)

// ErrForbidden 当前角色或工作区归属不允许该操作
var ErrForbidden = errors.New("operation not allowed for this user")

// Operation 受控操作
type Operation string

const (
	// OpWorkspaceManage 工作区增删与成员管理
	OpWorkspaceManage Operation = "workspace.manage"
	// OpDatasetCreate 创建数据集
	OpDatasetCreate Operation = "dataset.create"
	// OpDatasetConfigure 配置数据集结构（字段/问题/元数据/向量）
	OpDatasetConfigure Operation = "dataset.configure"
	// OpDatasetPublish 发布数据集
	OpDatasetPublish Operation = "dataset.publish"
	// OpDatasetDelete 删除数据集
	OpDatasetDelete Operation = "dataset.delete"
	// OpDatasetRead 读取数据集与进度
	OpDatasetRead Operation = "dataset.read"
	// OpRecordCreate 创建/修改/删除记录
	OpRecordCreate Operation = "record.create"
	// OpRecordSearch 检索记录
	OpRecordSearch Operation = "record.search"
	// OpResponseWrite 写入自己的响应
	OpResponseWrite Operation = "response.write"
	// OpSuggestionWrite 写入建议
	OpSuggestionWrite Operation = "suggestion.write"
	// OpUserManage 用户管理
	OpUserManage Operation = "user.manage"
	// OpWebhookManage Webhook 管理
	OpWebhookManage Operation = "webhook.manage"
)

// allowedRoles 操作对应的允许角色。owner 不在表内：对所有操作放行
var allowedRoles = map[Operation][]model.UserRole{
	OpWorkspaceManage:  {},
	OpDatasetCreate:    {model.RoleAdmin},
	OpDatasetConfigure: {model.RoleAdmin},
	OpDatasetPublish:   {model.RoleAdmin},
	OpDatasetDelete:    {model.RoleAdmin},
	OpDatasetRead:      {model.RoleAdmin, model.RoleAnnotator},
	OpRecordCreate:     {model.RoleAdmin},
	OpRecordSearch:     {model.RoleAdmin, model.RoleAnnotator},
	OpResponseWrite:    {model.RoleAdmin, model.RoleAnnotator},
	OpSuggestionWrite:  {model.RoleAdmin},
	OpUserManage:       {},
	OpWebhookManage:    {},
}

// workspaceScoped 需要工作区归属检查的操作。
// owner 全局放行；admin/annotator 必须是目标工作区成员。
var workspaceScoped = map[Operation]bool{
	OpDatasetCreate:    true,
	OpDatasetConfigure: true,
	OpDatasetPublish:   true,
	OpDatasetDelete:    true,
	OpDatasetRead:      true,
	OpRecordCreate:     true,
	OpRecordSearch:     true,
	OpResponseWrite:    true,
	OpSuggestionWrite:  true,
}

// Check 唯一的授权入口。
// isWorkspaceMember 表示用户是否属于操作目标所在的工作区；
// 对不限定工作区的操作传 false 即可。
func Check(user *model.User, op Operation, isWorkspaceMember bool) error {
	if user == nil {
		return ErrForbidden
	}
	if user.Role == model.RoleOwner {
		return nil
	}

	roles, ok := allowedRoles[op]
	if !ok {
		return ErrForbidden
	}
	allowed := false
	for _, role := range roles {
		if user.Role == role {
			allowed = true
			break
		}
	}
	if !allowed {
		return ErrForbidden
	}

	if workspaceScoped[op] && !isWorkspaceMember {
		return ErrForbidden
	}
	return nil
}

// RequiresWorkspace 操作是否需要工作区归属检查
func RequiresWorkspace(op Operation) bool {
	return workspaceScoped[op]
}
