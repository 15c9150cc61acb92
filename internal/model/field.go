package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FieldType 字段类型
type FieldType string

const (
	// FieldText 文本字段
	FieldText FieldType = "text"
	// FieldChat 对话字段，值为消息列表
	FieldChat FieldType = "chat"
	// FieldImage 图片字段，值为 URL 或 data URI
	FieldImage FieldType = "image"
)

// FieldSettings 字段配置，按 Type 区分变体
type FieldSettings struct {
	Type        FieldType `json:"type"`
	UseMarkdown bool      `json:"use_markdown,omitempty"`
}

// Validate 校验字段配置
func (s *FieldSettings) Validate() error {
	switch s.Type {
	case FieldText, FieldChat, FieldImage:
		return nil
	default:
		return fmt.Errorf("unknown field type: %q", s.Type)
	}
}

// Value 实现 driver.Valuer 接口
func (s FieldSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *FieldSettings) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// Field 记录的输入字段定义
type Field struct {
	ID        string        `gorm:"primaryKey;size:36" json:"id"`
	Name      string        `gorm:"index:idx_field_dataset_name,unique;size:100;not null" json:"name"`
	Title     string        `gorm:"size:255" json:"title"`
	Required  bool          `gorm:"default:false" json:"required"`
	Settings  FieldSettings `gorm:"type:jsonb" json:"settings"`
	DatasetID string        `gorm:"index:idx_field_dataset_name,unique;size:36;not null" json:"dataset_id"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Field) TableName() string {
	return "fields"
}

// scanJSON jsonb 列扫描辅助
func scanJSON(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T as JSON", value)
	}
	return json.Unmarshal(data, dest)
}
