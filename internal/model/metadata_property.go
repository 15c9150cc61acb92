package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MetadataPropertyType 元数据属性类型
type MetadataPropertyType string

const (
	// MetadataTerms 枚举型元数据
	MetadataTerms MetadataPropertyType = "terms"
	// MetadataInteger 整数型元数据
	MetadataInteger MetadataPropertyType = "integer"
	// MetadataFloat 浮点型元数据
	MetadataFloat MetadataPropertyType = "float"
)

// TermsMetadataSettings 枚举型配置，Values 为空时接受任意字符串
type TermsMetadataSettings struct {
	Values []string `json:"values,omitempty"`
}

// NumericMetadataSettings 数值型配置，边界可选
type NumericMetadataSettings struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// MetadataPropertySettings 元数据属性配置，按 Type 区分变体
type MetadataPropertySettings struct {
	Type    MetadataPropertyType     `json:"type"`
	Terms   *TermsMetadataSettings   `json:"terms,omitempty"`
	Integer *NumericMetadataSettings `json:"integer,omitempty"`
	Float   *NumericMetadataSettings `json:"float,omitempty"`
}

// Validate 校验元数据属性配置
func (s *MetadataPropertySettings) Validate() error {
	switch s.Type {
	case MetadataTerms:
		if s.Terms == nil {
			return fmt.Errorf("terms metadata property requires terms settings")
		}
	case MetadataInteger:
		if s.Integer == nil {
			return fmt.Errorf("integer metadata property requires integer settings")
		}
	case MetadataFloat:
		if s.Float == nil {
			return fmt.Errorf("float metadata property requires float settings")
		}
	default:
		return fmt.Errorf("unknown metadata property type: %q", s.Type)
	}
	return nil
}

// ValidateValue 校验记录元数据值是否符合属性配置
func (s *MetadataPropertySettings) ValidateValue(value interface{}) error {
	switch s.Type {
	case MetadataTerms:
		term, ok := value.(string)
		if !ok {
			return fmt.Errorf("terms metadata value must be a string")
		}
		if len(s.Terms.Values) > 0 && !containsString(s.Terms.Values, term) {
			return fmt.Errorf("metadata term %q is not in the configured values", term)
		}
	case MetadataInteger:
		num, ok := toInt(value)
		if !ok {
			return fmt.Errorf("integer metadata value must be an integer")
		}
		return s.Integer.checkBounds(float64(num))
	case MetadataFloat:
		num, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("float metadata value must be a number")
		}
		return s.Float.checkBounds(num)
	default:
		return fmt.Errorf("unknown metadata property type: %q", s.Type)
	}
	return nil
}

func (s *NumericMetadataSettings) checkBounds(value float64) error {
	if s.Min != nil && value < *s.Min {
		return fmt.Errorf("metadata value %v is below the configured minimum %v", value, *s.Min)
	}
	if s.Max != nil && value > *s.Max {
		return fmt.Errorf("metadata value %v is above the configured maximum %v", value, *s.Max)
	}
	return nil
}

// Value 实现 driver.Valuer 接口
func (s MetadataPropertySettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *MetadataPropertySettings) Scan(value interface{}) error {
	return scanJSON(value, s)
}

// MetadataProperty 数据集的元数据属性定义
type MetadataProperty struct {
	ID        string                   `gorm:"primaryKey;size:36" json:"id"`
	Name      string                   `gorm:"index:idx_metadata_dataset_name,unique;size:100;not null" json:"name"`
	Title     string                   `gorm:"size:255" json:"title"`
	Settings  MetadataPropertySettings `gorm:"type:jsonb" json:"settings"`
	DatasetID string                   `gorm:"index:idx_metadata_dataset_name,unique;size:36;not null" json:"dataset_id"`
	CreatedAt time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (MetadataProperty) TableName() string {
	return "metadata_properties"
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	}
	return 0, false
}
