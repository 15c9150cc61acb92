// Package suggestion 提供模型建议的写入与删除。
// 每个 (记录, 问题) 至多一条建议，重复写入按替换处理。
package suggestion

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/repository"
	"github.com/argilla-io/argilla-server/internal/search"
)

// Service 建议服务
type Service struct {
	repo    *repository.Repositories
	backend search.Backend
}

// NewService 创建建议服务
func NewService(repo *repository.Repositories, backend search.Backend) *Service {
	return &Service{repo: repo, backend: backend}
}

// UpsertRequest 写入建议请求
type UpsertRequest struct {
	QuestionID string      `json:"question_id" binding:"required"`
	Value      interface{} `json:"value"`
	Score      *float64    `json:"score,omitempty"`
	Agent      string      `json:"agent,omitempty"`
	Type       string      `json:"type,omitempty"`
}

// Upsert 写入或替换某记录某问题的建议
func (s *Service) Upsert(ctx context.Context, recordID string, req *UpsertRequest) (*model.Suggestion, error) {
	record, err := s.repo.Record.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	dataset, err := s.repo.Dataset.GetByID(record.DatasetID)
	if err != nil {
		return nil, err
	}

	var question *model.Question
	for i := range dataset.Questions {
		if dataset.Questions[i].ID == req.QuestionID {
			question = &dataset.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, fmt.Errorf("question %s not found in dataset %s", req.QuestionID, dataset.ID)
	}
	if err := question.Settings.ValidateAnswer(req.Value); err != nil {
		return nil, fmt.Errorf("invalid suggestion for question %q: %w", question.Name, err)
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 1) {
		return nil, fmt.Errorf("suggestion score must be between 0 and 1")
	}

	sgType := model.SuggestionType(req.Type)
	switch sgType {
	case "":
		sgType = model.SuggestionModel
	case model.SuggestionModel, model.SuggestionHuman:
	default:
		return nil, fmt.Errorf("invalid suggestion type: %q", req.Type)
	}

	suggestion := &model.Suggestion{
		ID:         uuid.New().String(),
		Value:      model.SuggestionValue{V: req.Value},
		Score:      req.Score,
		Agent:      req.Agent,
		Type:       sgType,
		RecordID:   record.ID,
		QuestionID: question.ID,
	}
	if err := s.repo.Suggestion.Upsert(suggestion); err != nil {
		return nil, fmt.Errorf("failed to upsert suggestion: %w", err)
	}

	if err := s.reindex(ctx, dataset, record); err != nil {
		log.Printf("Failed to reindex record %s after suggestion upsert: %v", record.ID, err)
	}
	return suggestion, nil
}

// ListByRecord 获取记录的全部建议
func (s *Service) ListByRecord(ctx context.Context, recordID string) ([]*model.Suggestion, error) {
	if _, err := s.repo.Record.GetByID(recordID); err != nil {
		return nil, err
	}
	return s.repo.Suggestion.ListByRecordIDs([]string{recordID})
}

// Delete 删除某记录某问题的建议
func (s *Service) Delete(ctx context.Context, recordID, questionID string) error {
	record, err := s.repo.Record.GetByID(recordID)
	if err != nil {
		return err
	}
	dataset, err := s.repo.Dataset.GetByID(record.DatasetID)
	if err != nil {
		return err
	}

	if err := s.repo.Suggestion.DeleteByRecordAndQuestion(recordID, questionID); err != nil {
		return fmt.Errorf("failed to delete suggestion: %w", err)
	}
	if err := s.reindex(ctx, dataset, record); err != nil {
		log.Printf("Failed to reindex record %s after suggestion delete: %v", record.ID, err)
	}
	return nil
}

// reindex 建议没有增量脚本，直接重建记录文档
func (s *Service) reindex(ctx context.Context, dataset *model.Dataset, record *model.Record) error {
	suggestions, err := s.repo.Suggestion.ListByRecordIDs([]string{record.ID})
	if err != nil {
		return err
	}
	record.Suggestions = record.Suggestions[:0]
	for _, sg := range suggestions {
		record.Suggestions = append(record.Suggestions, *sg)
	}

	vectors, err := s.repo.Record.ListVectors([]string{record.ID}, nil)
	if err != nil {
		return err
	}
	record.Vectors = record.Vectors[:0]
	for _, v := range vectors {
		record.Vectors = append(record.Vectors, *v)
	}

	responses, err := s.repo.Response.ListByRecordIDs([]string{record.ID})
	if err != nil {
		return err
	}
	record.Responses = record.Responses[:0]
	var userIDs []string
	for _, r := range responses {
		record.Responses = append(record.Responses, *r)
		userIDs = append(userIDs, r.UserID)
	}
	usernames := map[string]string{}
	users, err := s.repo.User.GetByIDs(userIDs)
	if err != nil {
		return err
	}
	for _, u := range users {
		usernames[u.ID] = u.Username
	}
	return s.backend.IndexRecords(ctx, dataset, []*model.Record{record}, usernames)
}
