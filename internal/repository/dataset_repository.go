package repository

import (
	"github.com/argilla-io/argilla-server/internal/model"
	"gorm.io/gorm"
)

// DatasetRepository 数据集仓库
type DatasetRepository struct {
	db *gorm.DB
}

// NewDatasetRepository 创建数据集仓库
func NewDatasetRepository(db *gorm.DB) *DatasetRepository {
	return &DatasetRepository{db: db}
}

// Create 创建数据集
func (r *DatasetRepository) Create(dataset *model.Dataset) error {
	return r.db.Create(dataset).Error
}

// GetByID 根据ID获取数据集，加载结构定义
func (r *DatasetRepository) GetByID(id string) (*model.Dataset, error) {
	var dataset model.Dataset
	err := r.db.
		Preload("Fields").
		Preload("Questions").
		Preload("MetadataProperties").
		Preload("VectorSettings").
		Where("id = ?", id).
		First(&dataset).Error
	if err != nil {
		return nil, err
	}
	return &dataset, nil
}

// List 列出数据集
func (r *DatasetRepository) List(workspaceID string, offset, limit int) ([]*model.Dataset, error) {
	var datasets []*model.Dataset
	query := r.db.Order("created_at DESC").Offset(offset).Limit(limit)
	if workspaceID != "" {
		query = query.Where("workspace_id = ?", workspaceID)
	}
	err := query.Find(&datasets).Error
	return datasets, err
}

// Count 统计数据集数量
func (r *DatasetRepository) Count(workspaceID string) (int64, error) {
	var count int64
	query := r.db.Model(&model.Dataset{})
	if workspaceID != "" {
		query = query.Where("workspace_id = ?", workspaceID)
	}
	err := query.Count(&count).Error
	return count, err
}

// Update 更新数据集
func (r *DatasetRepository) Update(dataset *model.Dataset) error {
	return r.db.Save(dataset).Error
}

// Delete 删除数据集及其所有附属数据
func (r *DatasetRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var recordIDs []string
		if err := tx.Model(&model.Record{}).Where("dataset_id = ?", id).Pluck("id", &recordIDs).Error; err != nil {
			return err
		}
		if len(recordIDs) > 0 {
			if err := tx.Delete(&model.Response{}, "record_id IN ?", recordIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.Suggestion{}, "record_id IN ?", recordIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.Vector{}, "record_id IN ?", recordIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&model.Record{}, "dataset_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Field{}, "dataset_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Question{}, "dataset_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.MetadataProperty{}, "dataset_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.VectorSettings{}, "dataset_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Dataset{}, "id = ?", id).Error
	})
}

// ========== 结构定义操作 ==========

// CreateField 创建字段
func (r *DatasetRepository) CreateField(field *model.Field) error {
	return r.db.Create(field).Error
}

// DeleteField 删除字段
func (r *DatasetRepository) DeleteField(id string) error {
	return r.db.Delete(&model.Field{}, "id = ?", id).Error
}

// CreateQuestion 创建问题
func (r *DatasetRepository) CreateQuestion(question *model.Question) error {
	return r.db.Create(question).Error
}

// GetQuestionByID 获取问题
func (r *DatasetRepository) GetQuestionByID(id string) (*model.Question, error) {
	var question model.Question
	err := r.db.Where("id = ?", id).First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// UpdateQuestion 更新问题
func (r *DatasetRepository) UpdateQuestion(question *model.Question) error {
	return r.db.Save(question).Error
}

// DeleteQuestion 删除问题
func (r *DatasetRepository) DeleteQuestion(id string) error {
	return r.db.Delete(&model.Question{}, "id = ?", id).Error
}

// CreateMetadataProperty 创建元数据属性
func (r *DatasetRepository) CreateMetadataProperty(property *model.MetadataProperty) error {
	return r.db.Create(property).Error
}

// DeleteMetadataProperty 删除元数据属性
func (r *DatasetRepository) DeleteMetadataProperty(id string) error {
	return r.db.Delete(&model.MetadataProperty{}, "id = ?", id).Error
}

// CreateVectorSettings 创建向量配置
func (r *DatasetRepository) CreateVectorSettings(settings *model.VectorSettings) error {
	return r.db.Create(settings).Error
}
