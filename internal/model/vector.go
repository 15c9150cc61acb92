package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// VectorSettings 数据集的向量配置，维度创建后不可变
type VectorSettings struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"index:idx_vector_settings_dataset_name,unique;size:100;not null" json:"name"`
	Title      string    `gorm:"size:255" json:"title"`
	Dimensions int       `gorm:"not null" json:"dimensions"`
	DatasetID  string    `gorm:"index:idx_vector_settings_dataset_name,unique;size:36;not null" json:"dataset_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (VectorSettings) TableName() string {
	return "vector_settings"
}

// VectorValue 向量值
type VectorValue []float64

// Value 实现 driver.Valuer 接口
func (v VectorValue) Value() (driver.Value, error) {
	return json.Marshal([]float64(v))
}

// Scan 实现 sql.Scanner 接口
func (v *VectorValue) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	var data []byte
	switch raw := value.(type) {
	case []byte:
		data = raw
	case string:
		data = []byte(raw)
	default:
		return fmt.Errorf("cannot scan %T into VectorValue", value)
	}
	return json.Unmarshal(data, (*[]float64)(v))
}

// Vector 某条记录在某个向量配置下的向量值
type Vector struct {
	ID               string      `gorm:"primaryKey;size:36" json:"id"`
	Value            VectorValue `gorm:"type:jsonb;not null" json:"value"`
	RecordID         string      `gorm:"index:idx_vector_record_settings,unique;size:36;not null" json:"record_id"`
	VectorSettingsID string      `gorm:"index:idx_vector_record_settings,unique;size:36;not null" json:"vector_settings_id"`
	CreatedAt        time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Vector) TableName() string {
	return "vectors"
}
