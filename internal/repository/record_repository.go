package repository

import (
	"github.com/argilla-io/argilla-server/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordRepository 记录仓库
type RecordRepository struct {
	db *gorm.DB
}

// NewRecordRepository 创建记录仓库
func NewRecordRepository(db *gorm.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create 创建记录
func (r *RecordRepository) Create(record *model.Record) error {
	return r.db.Create(record).Error
}

// CreateBatch 批量创建记录
func (r *RecordRepository) CreateBatch(records []*model.Record) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.Create(&records).Error
}

// GetByID 根据ID获取记录
func (r *RecordRepository) GetByID(id string) (*model.Record, error) {
	var record model.Record
	err := r.db.Where("id = ?", id).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListByIDs 批量获取记录。返回顺序不定，调用方按需要重排
func (r *RecordRepository) ListByIDs(datasetID string, ids []string) ([]*model.Record, error) {
	var records []*model.Record
	if len(ids) == 0 {
		return records, nil
	}
	err := r.db.Where("dataset_id = ? AND id IN ?", datasetID, ids).Find(&records).Error
	return records, err
}

// List 按插入顺序分页列出记录
func (r *RecordRepository) List(datasetID string, offset, limit int) ([]*model.Record, error) {
	var records []*model.Record
	err := r.db.Where("dataset_id = ?", datasetID).
		Order("inserted_at ASC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, err
}

// Count 统计数据集记录数
func (r *RecordRepository) Count(datasetID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Record{}).Where("dataset_id = ?", datasetID).Count(&count).Error
	return count, err
}

// ExistingExternalIDs 返回给定 external_id 中已存在于数据集的那些
func (r *RecordRepository) ExistingExternalIDs(datasetID string, externalIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(externalIDs) == 0 {
		return existing, nil
	}
	var found []string
	err := r.db.Model(&model.Record{}).
		Where("dataset_id = ? AND external_id IN ?", datasetID, externalIDs).
		Pluck("external_id", &found).Error
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}

// Update 更新记录
func (r *RecordRepository) Update(record *model.Record) error {
	return r.db.Save(record).Error
}

// Delete 删除记录及其附属数据
func (r *RecordRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.Response{}, "record_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Suggestion{}, "record_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Vector{}, "record_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Record{}, "id = ?", id).Error
	})
}

// ========== 向量操作 ==========

// GetVector 获取记录在某向量配置下的向量
func (r *RecordRepository) GetVector(recordID, vectorSettingsID string) (*model.Vector, error) {
	var vector model.Vector
	err := r.db.Where("record_id = ? AND vector_settings_id = ?", recordID, vectorSettingsID).First(&vector).Error
	if err != nil {
		return nil, err
	}
	return &vector, nil
}

// UpsertVector 写入或更新记录向量
func (r *RecordRepository) UpsertVector(vector *model.Vector) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}, {Name: "vector_settings_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(vector).Error
}

// ListVectors 批量获取记录向量
func (r *RecordRepository) ListVectors(recordIDs []string, vectorSettingsIDs []string) ([]*model.Vector, error) {
	var vectors []*model.Vector
	if len(recordIDs) == 0 {
		return vectors, nil
	}
	query := r.db.Where("record_id IN ?", recordIDs)
	if len(vectorSettingsIDs) > 0 {
		query = query.Where("vector_settings_id IN ?", vectorSettingsIDs)
	}
	err := query.Find(&vectors).Error
	return vectors, err
}
