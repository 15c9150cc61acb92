package model

import "testing"

func resp(userID string, status ResponseStatus) *Response {
	return &Response{UserID: userID, Status: status}
}

// ========== 记录状态计算 ==========

func TestComputeRecordStatus(t *testing.T) {
	tests := []struct {
		name         string
		strategy     DistributionStrategy
		minSubmitted int
		responses    []*Response
		want         RecordStatus
	}{
		{
			name:         "no responses stays pending",
			strategy:     DistributionOverlap,
			minSubmitted: 1,
			responses:    nil,
			want:         RecordPending,
		},
		{
			name:         "one submission meets threshold",
			strategy:     DistributionOverlap,
			minSubmitted: 1,
			responses:    []*Response{resp("u1", ResponseSubmitted)},
			want:         RecordCompleted,
		},
		{
			name:         "draft does not count",
			strategy:     DistributionOverlap,
			minSubmitted: 1,
			responses:    []*Response{resp("u1", ResponseDraft)},
			want:         RecordPending,
		},
		{
			name:         "discarded does not count",
			strategy:     DistributionOverlap,
			minSubmitted: 1,
			responses:    []*Response{resp("u1", ResponseDiscarded)},
			want:         RecordPending,
		},
		{
			name:         "below threshold",
			strategy:     DistributionOverlap,
			minSubmitted: 3,
			responses:    []*Response{resp("u1", ResponseSubmitted), resp("u2", ResponseSubmitted)},
			want:         RecordPending,
		},
		{
			name:         "distinct users reach threshold",
			strategy:     DistributionOverlap,
			minSubmitted: 2,
			responses: []*Response{
				resp("u1", ResponseSubmitted),
				resp("u2", ResponseDraft),
				resp("u3", ResponseSubmitted),
			},
			want: RecordCompleted,
		},
		{
			// 同一用户的多条提交只计一次
			name:         "same user counted once",
			strategy:     DistributionOverlap,
			minSubmitted: 2,
			responses:    []*Response{resp("u1", ResponseSubmitted), resp("u1", ResponseSubmitted)},
			want:         RecordPending,
		},
		{
			name:         "min submitted below one clamps to one",
			strategy:     DistributionOverlap,
			minSubmitted: 0,
			responses:    []*Response{resp("u1", ResponseSubmitted)},
			want:         RecordCompleted,
		},
		{
			name:         "unknown strategy stays pending",
			strategy:     DistributionStrategy("round_robin"),
			minSubmitted: 1,
			responses:    []*Response{resp("u1", ResponseSubmitted)},
			want:         RecordPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeRecordStatus(tt.strategy, tt.minSubmitted, tt.responses)
			if got != tt.want {
				t.Errorf("ComputeRecordStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ========== 进度桶归类 ==========

func TestComputeProgressBucket(t *testing.T) {
	tests := []struct {
		name      string
		responses []*Response
		want      ProgressBucket
	}{
		{
			name:      "no responses is pending",
			responses: nil,
			want:      BucketPending,
		},
		{
			name:      "draft only is pending",
			responses: []*Response{resp("u1", ResponseDraft), resp("u2", ResponseDraft)},
			want:      BucketPending,
		},
		{
			name:      "submitted only",
			responses: []*Response{resp("u1", ResponseSubmitted)},
			want:      BucketSubmitted,
		},
		{
			name:      "discarded only",
			responses: []*Response{resp("u1", ResponseDiscarded)},
			want:      BucketDiscarded,
		},
		{
			name:      "submitted and discarded conflict",
			responses: []*Response{resp("u1", ResponseSubmitted), resp("u2", ResponseDiscarded)},
			want:      BucketConflicting,
		},
		{
			name: "draft alongside submitted keeps submitted",
			responses: []*Response{
				resp("u1", ResponseSubmitted),
				resp("u2", ResponseDraft),
			},
			want: BucketSubmitted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProgressBucket(tt.responses)
			if got != tt.want {
				t.Errorf("ComputeProgressBucket() = %q, want %q", got, tt.want)
			}
		})
	}
}
