package dataset

import (
	"testing"

	"github.com/argilla-io/argilla-server/internal/model"
)

func resp(recordID, userID string, status model.ResponseStatus) *model.Response {
	return &model.Response{RecordID: recordID, UserID: userID, Status: status}
}

// ========== 进度聚合 ==========

func TestComputeProgress(t *testing.T) {
	// 8 条记录：2 条只有提交、2 条只有丢弃、1 条提交+丢弃冲突、
	// 1 条只有草稿、2 条没有任何响应
	responses := []*model.Response{
		resp("r1", "u1", model.ResponseSubmitted),
		resp("r2", "u1", model.ResponseSubmitted),
		resp("r2", "u2", model.ResponseSubmitted),
		resp("r2", "u3", model.ResponseSubmitted),
		resp("r3", "u1", model.ResponseDiscarded),
		resp("r4", "u1", model.ResponseDiscarded),
		resp("r4", "u2", model.ResponseDiscarded),
		resp("r5", "u1", model.ResponseSubmitted),
		resp("r5", "u2", model.ResponseDiscarded),
		resp("r6", "u1", model.ResponseDraft),
	}

	got := computeProgress(8, responses)

	want := Progress{Total: 8, Submitted: 2, Discarded: 2, Conflicting: 1, Pending: 3}
	if *got != want {
		t.Errorf("computeProgress() = %+v, want %+v", *got, want)
	}
}

func TestComputeProgress_EmptyDataset(t *testing.T) {
	got := computeProgress(0, nil)
	if got.Total != 0 || got.Pending != 0 || got.Submitted != 0 {
		t.Errorf("computeProgress() = %+v, want all zero", *got)
	}
}

func TestComputeProgress_AllRecordsWithoutResponses(t *testing.T) {
	got := computeProgress(5, nil)
	if got.Pending != 5 {
		t.Errorf("pending = %d, want 5", got.Pending)
	}
}
