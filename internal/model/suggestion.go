package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// SuggestionType 建议来源类型
type SuggestionType string

const (
	// SuggestionModel 模型生成
	SuggestionModel SuggestionType = "model"
	// SuggestionHuman 人工预填
	SuggestionHuman SuggestionType = "human"
)

// SuggestionValue 建议值，任意 JSON
type SuggestionValue struct {
	V interface{} `json:"-"`
}

// MarshalJSON 实现 json.Marshaler 接口
func (v SuggestionValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.V)
}

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (v *SuggestionValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &v.V)
}

// Value 实现 driver.Valuer 接口
func (v SuggestionValue) Value() (driver.Value, error) {
	return json.Marshal(v.V)
}

// Scan 实现 sql.Scanner 接口
func (v *SuggestionValue) Scan(value interface{}) error {
	return scanJSON(value, &v.V)
}

// Suggestion 模型对某条记录某个问题的建议答案，与人工响应独立
type Suggestion struct {
	ID         string          `gorm:"primaryKey;size:36" json:"id"`
	Value      SuggestionValue `gorm:"type:jsonb" json:"value"`
	Score      *float64        `json:"score,omitempty"`
	Agent      string          `gorm:"size:200" json:"agent,omitempty"`
	Type       SuggestionType  `gorm:"size:20" json:"type,omitempty"`
	RecordID   string          `gorm:"index:idx_suggestion_record_question,unique;size:36;not null" json:"record_id"`
	QuestionID string          `gorm:"index:idx_suggestion_record_question,unique;size:36;not null" json:"question_id"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Suggestion) TableName() string {
	return "suggestions"
}
