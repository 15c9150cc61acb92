package repository

import (
	"github.com/argilla-io/argilla-server/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SuggestionRepository 建议仓库
type SuggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository 创建建议仓库
func NewSuggestionRepository(db *gorm.DB) *SuggestionRepository {
	return &SuggestionRepository{db: db}
}

// Upsert 写入或更新某 (记录, 问题) 的建议
func (r *SuggestionRepository) Upsert(suggestion *model.Suggestion) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "score", "agent", "type", "updated_at"}),
	}).Create(suggestion).Error
}

// GetByID 根据ID获取建议
func (r *SuggestionRepository) GetByID(id string) (*model.Suggestion, error) {
	var suggestion model.Suggestion
	err := r.db.Where("id = ?", id).First(&suggestion).Error
	if err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// ListByRecordIDs 批量获取记录的建议
func (r *SuggestionRepository) ListByRecordIDs(recordIDs []string) ([]*model.Suggestion, error) {
	var suggestions []*model.Suggestion
	if len(recordIDs) == 0 {
		return suggestions, nil
	}
	err := r.db.Where("record_id IN ?", recordIDs).Find(&suggestions).Error
	return suggestions, err
}

// DeleteByRecordAndQuestion 删除某 (记录, 问题) 的建议
func (r *SuggestionRepository) DeleteByRecordAndQuestion(recordID, questionID string) error {
	return r.db.Delete(&model.Suggestion{}, "record_id = ? AND question_id = ?", recordID, questionID).Error
}
