package model

import "time"

// DatasetStatus 数据集状态
type DatasetStatus string

const (
	// DatasetDraft 草稿态，可以自由修改结构，不能写入记录
	DatasetDraft DatasetStatus = "draft"
	// DatasetReady 发布态，结构冻结，可以写入和检索记录
	DatasetReady DatasetStatus = "ready"
)

// DistributionStrategy 记录完成策略
type DistributionStrategy string

const (
	// DistributionOverlap overlap 策略：min_submitted 个不同用户提交后记录视为完成
	DistributionOverlap DistributionStrategy = "overlap"
)

// Dataset 数据集
type Dataset struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Name        string        `gorm:"index:idx_dataset_workspace_name,unique;size:200;not null" json:"name"`
	Guidelines  string        `gorm:"type:text" json:"guidelines"`
	Status      DatasetStatus `gorm:"size:20;index;not null;default:draft" json:"status"`
	WorkspaceID string        `gorm:"index:idx_dataset_workspace_name,unique;size:36;not null" json:"workspace_id"`

	// 分发策略，决定记录何时视为完成
	DistributionStrategy     DistributionStrategy `gorm:"size:20;not null;default:overlap" json:"distribution_strategy"`
	DistributionMinSubmitted int                  `gorm:"not null;default:1" json:"distribution_min_submitted"`

	AllowExtraMetadata bool      `gorm:"default:true" json:"allow_extra_metadata"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Fields             []Field            `gorm:"foreignKey:DatasetID" json:"fields,omitempty"`
	Questions          []Question         `gorm:"foreignKey:DatasetID" json:"questions,omitempty"`
	MetadataProperties []MetadataProperty `gorm:"foreignKey:DatasetID" json:"metadata_properties,omitempty"`
	VectorSettings     []VectorSettings   `gorm:"foreignKey:DatasetID" json:"vector_settings,omitempty"`
}

// TableName 指定表名
func (Dataset) TableName() string {
	return "datasets"
}

// IsReady 数据集是否已发布
func (d *Dataset) IsReady() bool {
	return d.Status == DatasetReady
}

// QuestionByName 按名称查找问题，不存在时返回 nil
func (d *Dataset) QuestionByName(name string) *Question {
	for i := range d.Questions {
		if d.Questions[i].Name == name {
			return &d.Questions[i]
		}
	}
	return nil
}

// FieldByName 按名称查找字段，不存在时返回 nil
func (d *Dataset) FieldByName(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	return nil
}

// MetadataPropertyByName 按名称查找元数据属性，不存在时返回 nil
func (d *Dataset) MetadataPropertyByName(name string) *MetadataProperty {
	for i := range d.MetadataProperties {
		if d.MetadataProperties[i].Name == name {
			return &d.MetadataProperties[i]
		}
	}
	return nil
}

// VectorSettingsByName 按名称查找向量配置，不存在时返回 nil
func (d *Dataset) VectorSettingsByName(name string) *VectorSettings {
	for i := range d.VectorSettings {
		if d.VectorSettings[i].Name == name {
			return &d.VectorSettings[i]
		}
	}
	return nil
}
