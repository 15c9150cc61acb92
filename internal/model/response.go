package model

import "time"

// ResponseStatus 响应状态
type ResponseStatus string

const (
	// ResponseDraft 草稿
	ResponseDraft ResponseStatus = "draft"
	// ResponseSubmitted 已提交
	ResponseSubmitted ResponseStatus = "submitted"
	// ResponseDiscarded 已丢弃
	ResponseDiscarded ResponseStatus = "discarded"
)

// Valid 校验状态取值
func (s ResponseStatus) Valid() bool {
	switch s {
	case ResponseDraft, ResponseSubmitted, ResponseDiscarded:
		return true
	}
	return false
}

// Response 一个用户对一条记录的回答集合。
// (RecordID, UserID) 全局唯一：每个用户对每条记录至多一个响应。
type Response struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Values    JSONMap        `gorm:"type:jsonb" json:"values"`
	Status    ResponseStatus `gorm:"size:20;index;not null" json:"status"`
	RecordID  string         `gorm:"index:idx_response_record_user,unique;size:36;not null" json:"record_id"`
	UserID    string         `gorm:"index:idx_response_record_user,unique;size:36;not null" json:"user_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Response) TableName() string {
	return "responses"
}
