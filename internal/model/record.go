package model

import "time"

// RecordStatus 记录完成状态，由其响应和数据集分发策略推导
type RecordStatus string

const (
	// RecordPending 提交数未达到阈值
	RecordPending RecordStatus = "pending"
	// RecordCompleted 提交数达到阈值
	RecordCompleted RecordStatus = "completed"
)

// Record 一条可标注记录
type Record struct {
	ID         string       `gorm:"primaryKey;size:36" json:"id"`
	Fields     JSONMap      `gorm:"type:jsonb;not null" json:"fields"`
	Metadata   JSONMap      `gorm:"type:jsonb" json:"metadata,omitempty"`
	ExternalID string       `gorm:"index:idx_record_dataset_external,unique;size:255" json:"external_id,omitempty"`
	Status     RecordStatus `gorm:"size:20;index;not null;default:pending" json:"status"`
	DatasetID  string       `gorm:"index:idx_record_dataset_external,unique;size:36;not null" json:"dataset_id"`
	InsertedAt time.Time    `gorm:"autoCreateTime;index" json:"inserted_at"`
	UpdatedAt  time.Time    `gorm:"autoUpdateTime;index" json:"updated_at"`

	Responses   []Response   `gorm:"foreignKey:RecordID" json:"responses,omitempty"`
	Suggestions []Suggestion `gorm:"foreignKey:RecordID" json:"suggestions,omitempty"`
	Vectors     []Vector     `gorm:"foreignKey:RecordID" json:"vectors,omitempty"`
}

// TableName 指定表名
func (Record) TableName() string {
	return "records"
}

// ComputeRecordStatus 根据当前响应和分发策略计算记录状态。
// overlap 策略下，提交状态的不同用户数达到 minSubmitted 即视为完成。
func ComputeRecordStatus(strategy DistributionStrategy, minSubmitted int, responses []*Response) RecordStatus {
	if minSubmitted < 1 {
		minSubmitted = 1
	}

	switch strategy {
	case DistributionOverlap:
		submitted := make(map[string]struct{})
		for _, r := range responses {
			if r.Status == ResponseSubmitted {
				submitted[r.UserID] = struct{}{}
			}
		}
		if len(submitted) >= minSubmitted {
			return RecordCompleted
		}
		return RecordPending
	default:
		return RecordPending
	}
}

// ProgressBucket 进度聚合桶
type ProgressBucket string

const (
	// BucketSubmitted 仅有提交响应
	BucketSubmitted ProgressBucket = "submitted"
	// BucketDiscarded 仅有丢弃响应
	BucketDiscarded ProgressBucket = "discarded"
	// BucketConflicting 同时存在提交和丢弃响应
	BucketConflicting ProgressBucket = "conflicting"
	// BucketPending 没有终态响应
	BucketPending ProgressBucket = "pending"
)

// ComputeProgressBucket 把一条记录归入唯一的进度桶。
// 草稿响应不是终态，只有草稿或没有响应的记录都算 pending。
func ComputeProgressBucket(responses []*Response) ProgressBucket {
	var hasSubmitted, hasDiscarded bool
	for _, r := range responses {
		switch r.Status {
		case ResponseSubmitted:
			hasSubmitted = true
		case ResponseDiscarded:
			hasDiscarded = true
		}
	}

	switch {
	case hasSubmitted && hasDiscarded:
		return BucketConflicting
	case hasSubmitted:
		return BucketSubmitted
	case hasDiscarded:
		return BucketDiscarded
	default:
		return BucketPending
	}
}
