package repository

import (
	"errors"

	"github.com/argilla-io/argilla-server/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ResponseRepository 响应仓库
type ResponseRepository struct {
	db *gorm.DB
}

// NewResponseRepository 创建响应仓库
func NewResponseRepository(db *gorm.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// UpsertResult 响应写入结果
type UpsertResult struct {
	Response      *model.Response
	Record        *model.Record
	Created       bool
	StatusChanged bool
}

// Upsert 写入或更新响应，并在同一事务内重算记录状态。
// 先对记录行加排他锁，避免两个用户并发提交时状态重算丢失更新。
func (r *ResponseRepository) Upsert(response *model.Response, ds *model.Dataset) (*UpsertResult, error) {
	result := &UpsertResult{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var record model.Record
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND dataset_id = ?", response.RecordID, ds.ID).
			First(&record).Error; err != nil {
			return err
		}

		var existing model.Response
		err := tx.Where("record_id = ? AND user_id = ?", response.RecordID, response.UserID).
			First(&existing).Error
		switch {
		case err == nil:
			existing.Values = response.Values
			existing.Status = response.Status
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}
			result.Response = &existing
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(response).Error; err != nil {
				return err
			}
			result.Response = response
			result.Created = true
		default:
			return err
		}

		return recomputeRecordStatus(tx, &record, ds, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAndRecompute 删除响应并在同一事务内重算记录状态
func (r *ResponseRepository) DeleteAndRecompute(responseID string, ds *model.Dataset) (*UpsertResult, error) {
	result := &UpsertResult{}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var response model.Response
		if err := tx.Where("id = ?", responseID).First(&response).Error; err != nil {
			return err
		}
		result.Response = &response

		var record model.Record
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", response.RecordID).
			First(&record).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.Response{}, "id = ?", responseID).Error; err != nil {
			return err
		}

		return recomputeRecordStatus(tx, &record, ds, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// recomputeRecordStatus 记录状态是其当前响应集合的纯函数，必须在持锁事务内重算
func recomputeRecordStatus(tx *gorm.DB, record *model.Record, ds *model.Dataset, result *UpsertResult) error {
	var responses []*model.Response
	if err := tx.Where("record_id = ?", record.ID).Find(&responses).Error; err != nil {
		return err
	}

	newStatus := model.ComputeRecordStatus(ds.DistributionStrategy, ds.DistributionMinSubmitted, responses)
	if newStatus != record.Status {
		record.Status = newStatus
		result.StatusChanged = true
		if err := tx.Model(record).Update("status", newStatus).Error; err != nil {
			return err
		}
	}
	result.Record = record
	return nil
}

// GetByID 根据ID获取响应
func (r *ResponseRepository) GetByID(id string) (*model.Response, error) {
	var response model.Response
	err := r.db.Where("id = ?", id).First(&response).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByRecordAndUser 获取某用户在某记录上的响应，没有时返回 nil
func (r *ResponseRepository) GetByRecordAndUser(recordID, userID string) (*model.Response, error) {
	var response model.Response
	err := r.db.Where("record_id = ? AND user_id = ?", recordID, userID).First(&response).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &response, nil
}

// ListByRecordIDs 批量获取记录的全部响应
func (r *ResponseRepository) ListByRecordIDs(recordIDs []string) ([]*model.Response, error) {
	var responses []*model.Response
	if len(recordIDs) == 0 {
		return responses, nil
	}
	err := r.db.Where("record_id IN ?", recordIDs).Find(&responses).Error
	return responses, err
}

// ListByRecordIDsAndUser 批量获取某用户在记录上的响应
func (r *ResponseRepository) ListByRecordIDsAndUser(recordIDs []string, userID string) ([]*model.Response, error) {
	var responses []*model.Response
	if len(recordIDs) == 0 {
		return responses, nil
	}
	err := r.db.Where("record_id IN ? AND user_id = ?", recordIDs, userID).Find(&responses).Error
	return responses, err
}

// ListByDataset 获取数据集全部响应，进度聚合用
func (r *ResponseRepository) ListByDataset(datasetID string) ([]*model.Response, error) {
	var responses []*model.Response
	err := r.db.
		Joins("JOIN records ON records.id = responses.record_id").
		Where("records.dataset_id = ?", datasetID).
		Find(&responses).Error
	return responses, err
}

// CountByDatasetUserAndStatus 统计某用户在数据集内各状态的响应数
func (r *ResponseRepository) CountByDatasetUserAndStatus(datasetID, userID string) (map[model.ResponseStatus]int64, error) {
	type row struct {
		Status model.ResponseStatus
		Count  int64
	}
	var rows []row
	err := r.db.Model(&model.Response{}).
		Select("responses.status AS status, COUNT(*) AS count").
		Joins("JOIN records ON records.id = responses.record_id").
		Where("records.dataset_id = ? AND responses.user_id = ?", datasetID, userID).
		Group("responses.status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[model.ResponseStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
