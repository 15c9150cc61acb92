package policy

import (
	"errors"
	"testing"

	"github.com/argilla-io/argilla-server/internal/model"
)

func userWithRole(role model.UserRole) *model.User {
	return &model.User{ID: "u1", Username: "tester", Role: role}
}

// ========== 授权检查 ==========

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		role    model.UserRole
		op      Operation
		member  bool
		wantErr bool
	}{
		// owner 对任何操作放行，不要求工作区归属
		{name: "owner manages workspaces", role: model.RoleOwner, op: OpWorkspaceManage},
		{name: "owner creates dataset without membership", role: model.RoleOwner, op: OpDatasetCreate},
		{name: "owner manages users", role: model.RoleOwner, op: OpUserManage},

		// admin 在自己的工作区内有全部数据集权限
		{name: "admin creates dataset in own workspace", role: model.RoleAdmin, op: OpDatasetCreate, member: true},
		{name: "admin publishes dataset in own workspace", role: model.RoleAdmin, op: OpDatasetPublish, member: true},
		{name: "admin writes suggestions in own workspace", role: model.RoleAdmin, op: OpSuggestionWrite, member: true},
		{name: "admin outside workspace denied", role: model.RoleAdmin, op: OpDatasetCreate, wantErr: true},
		{name: "admin cannot manage workspaces", role: model.RoleAdmin, op: OpWorkspaceManage, member: true, wantErr: true},
		{name: "admin cannot manage users", role: model.RoleAdmin, op: OpUserManage, wantErr: true},
		{name: "admin cannot manage webhooks", role: model.RoleAdmin, op: OpWebhookManage, wantErr: true},

		// annotator 只读与响应写入，且必须在工作区内
		{name: "annotator reads dataset in own workspace", role: model.RoleAnnotator, op: OpDatasetRead, member: true},
		{name: "annotator searches records in own workspace", role: model.RoleAnnotator, op: OpRecordSearch, member: true},
		{name: "annotator writes responses in own workspace", role: model.RoleAnnotator, op: OpResponseWrite, member: true},
		{name: "annotator outside workspace denied", role: model.RoleAnnotator, op: OpDatasetRead, wantErr: true},
		{name: "annotator cannot create datasets", role: model.RoleAnnotator, op: OpDatasetCreate, member: true, wantErr: true},
		{name: "annotator cannot create records", role: model.RoleAnnotator, op: OpRecordCreate, member: true, wantErr: true},
		{name: "annotator cannot write suggestions", role: model.RoleAnnotator, op: OpSuggestionWrite, member: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(userWithRole(tt.role), tt.op, tt.member)
			if tt.wantErr {
				if !errors.Is(err, ErrForbidden) {
					t.Errorf("Check() = %v, want ErrForbidden", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Check() unexpected error: %v", err)
			}
		})
	}
}

func TestCheck_NilUser(t *testing.T) {
	if err := Check(nil, OpDatasetRead, true); !errors.Is(err, ErrForbidden) {
		t.Errorf("Check(nil) = %v, want ErrForbidden", err)
	}
}

func TestCheck_UnknownOperation(t *testing.T) {
	if err := Check(userWithRole(model.RoleAdmin), Operation("dataset.export"), true); !errors.Is(err, ErrForbidden) {
		t.Errorf("Check() = %v, want ErrForbidden for unknown operation", err)
	}
}

func TestRequiresWorkspace(t *testing.T) {
	if !RequiresWorkspace(OpDatasetRead) {
		t.Error("dataset.read should require workspace membership")
	}
	if RequiresWorkspace(OpUserManage) {
		t.Error("user.manage should not require workspace membership")
	}
}
