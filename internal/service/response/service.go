// Package response 提供响应的写入、更新、删除和批量提交。
// 写入时在同一事务内重算记录状态，随后同步检索索引并发出事件。
package response

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/repository"
	"github.com/argilla-io/argilla-server/internal/search"
	"github.com/argilla-io/argilla-server/internal/service/webhook"
)

// ResponseStore 响应服务需要的响应读写接口
type ResponseStore interface {
	GetByID(id string) (*model.Response, error)
	GetByRecordAndUser(recordID, userID string) (*model.Response, error)
	Upsert(response *model.Response, ds *model.Dataset) (*repository.UpsertResult, error)
	DeleteAndRecompute(responseID string, ds *model.Dataset) (*repository.UpsertResult, error)
}

// RecordStore 响应服务需要的记录读取接口
type RecordStore interface {
	GetByID(id string) (*model.Record, error)
}

// DatasetStore 响应服务需要的数据集读取接口
type DatasetStore interface {
	GetByID(id string) (*model.Dataset, error)
}

// UserStore 响应服务需要的用户读取接口
type UserStore interface {
	GetByID(id string) (*model.User, error)
}

// Service 响应服务
type Service struct {
	responses  ResponseStore
	records    RecordStore
	datasets   DatasetStore
	users      UserStore
	backend    search.Backend
	events     webhook.Sink
	batchLimit int
}

// NewService 创建响应服务
func NewService(repo *repository.Repositories, backend search.Backend, events webhook.Sink, batchLimit int) *Service {
	return NewServiceWithStores(repo.Response, repo.Record, repo.Dataset, repo.User, backend, events, batchLimit)
}

// NewServiceWithStores 用显式依赖创建响应服务，测试用
func NewServiceWithStores(responses ResponseStore, records RecordStore, datasets DatasetStore, users UserStore, backend search.Backend, events webhook.Sink, batchLimit int) *Service {
	if events == nil {
		events = webhook.NopSink{}
	}
	if batchLimit <= 0 {
		batchLimit = 100
	}
	return &Service{
		responses:  responses,
		records:    records,
		datasets:   datasets,
		users:      users,
		backend:    backend,
		events:     events,
		batchLimit: batchLimit,
	}
}

// Get 获取响应
func (s *Service) Get(ctx context.Context, responseID string) (*model.Response, error) {
	return s.responses.GetByID(responseID)
}

// UpsertRequest 写入响应请求
type UpsertRequest struct {
	Values model.JSONMap        `json:"values"`
	Status model.ResponseStatus `json:"status" binding:"required"`
}

// Create 为当前用户创建响应，该用户已有响应时报错
func (s *Service) Create(ctx context.Context, recordID string, user *model.User, req *UpsertRequest) (*model.Response, error) {
	record, dataset, err := s.loadRecordAndDataset(recordID)
	if err != nil {
		return nil, err
	}

	existing, err := s.responses.GetByRecordAndUser(recordID, user.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("user %q already has a response for this record", user.Username)
	}

	return s.upsert(ctx, dataset, record, user, req)
}

// Update 更新响应，只允许响应作者本人
func (s *Service) Update(ctx context.Context, responseID string, user *model.User, req *UpsertRequest) (*model.Response, error) {
	response, err := s.responses.GetByID(responseID)
	if err != nil {
		return nil, err
	}
	if response.UserID != user.ID {
		return nil, fmt.Errorf("responses can only be updated by their author")
	}

	record, dataset, err := s.loadRecordAndDataset(response.RecordID)
	if err != nil {
		return nil, err
	}
	return s.upsert(ctx, dataset, record, user, req)
}

// upsert 校验后写入响应、重算记录状态、同步索引并发事件
func (s *Service) upsert(ctx context.Context, dataset *model.Dataset, record *model.Record, user *model.User, req *UpsertRequest) (*model.Response, error) {
	if err := validateValues(dataset, req.Values, req.Status); err != nil {
		return nil, err
	}

	response := &model.Response{
		ID:       uuid.New().String(),
		Values:   req.Values,
		Status:   req.Status,
		RecordID: record.ID,
		UserID:   user.ID,
	}
	result, err := s.responses.Upsert(response, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert response: %w", err)
	}

	if err := s.backend.UpdateRecordResponse(ctx, dataset, record.ID, user.Username, req.Values, req.Status); err != nil {
		log.Printf("Failed to sync response for record %s to index: %v", record.ID, err)
	}

	s.emitResponseEvents(ctx, dataset, result)
	return result.Response, nil
}

// Delete 删除响应并重算记录状态。标注员只能删自己的响应
func (s *Service) Delete(ctx context.Context, responseID string, user *model.User) error {
	response, err := s.responses.GetByID(responseID)
	if err != nil {
		return err
	}
	if response.UserID != user.ID && user.Role == model.RoleAnnotator {
		return fmt.Errorf("annotators can only delete their own responses")
	}
	record, dataset, err := s.loadRecordAndDataset(response.RecordID)
	if err != nil {
		return err
	}

	author, err := s.users.GetByID(response.UserID)
	if err != nil {
		return err
	}

	result, err := s.responses.DeleteAndRecompute(responseID, dataset)
	if err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}

	if err := s.backend.DeleteRecordResponse(ctx, dataset, record.ID, author.Username); err != nil {
		log.Printf("Failed to remove response for record %s from index: %v", record.ID, err)
	}

	if err := s.events.Enqueue(ctx, webhook.NewEvent(model.EventResponseDeleted, map[string]interface{}{
		"dataset_id":  dataset.ID,
		"record_id":   record.ID,
		"response_id": responseID,
	})); err != nil {
		log.Printf("Failed to enqueue response.deleted event: %v", err)
	}
	if result.StatusChanged {
		s.emitRecordStatusEvent(ctx, dataset, result.Record)
	}
	return nil
}

// ========== 批量提交 ==========

// BulkItem 批量提交中的一条响应
type BulkItem struct {
	RecordID string               `json:"record_id"`
	Values   model.JSONMap        `json:"values"`
	Status   model.ResponseStatus `json:"status"`
}

// BulkResultItem 批量提交中第 i 条的结果，Response 和 Error 恰有一个非空
type BulkResultItem struct {
	Response *model.Response `json:"response,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// BulkResult 批量提交结果，Items 与请求条目一一对应
type BulkResult struct {
	Items []BulkResultItem `json:"items"`
}

// BulkUpsert 当前用户批量写入某数据集的响应。
// 同一请求内出现重复 record_id 时，重复条目报错而不是覆盖前一条。
func (s *Service) BulkUpsert(ctx context.Context, datasetID string, user *model.User, items []BulkItem) (*BulkResult, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one response is required")
	}
	if len(items) > s.batchLimit {
		return nil, fmt.Errorf("cannot upsert more than %d responses per request", s.batchLimit)
	}

	result := &BulkResult{Items: make([]BulkResultItem, len(items))}
	seen := make(map[string]bool)
	for i := range items {
		item := &items[i]
		if seen[item.RecordID] {
			result.Items[i] = BulkResultItem{
				Error: fmt.Sprintf("duplicate response for record %s and user %s in the same request", item.RecordID, user.ID),
			}
			continue
		}
		seen[item.RecordID] = true

		record, dataset, err := s.loadRecordAndDataset(item.RecordID)
		if err != nil {
			result.Items[i] = BulkResultItem{Error: err.Error()}
			continue
		}
		if dataset.ID != datasetID {
			result.Items[i] = BulkResultItem{
				Error: fmt.Sprintf("record %s does not belong to dataset %s", item.RecordID, datasetID),
			}
			continue
		}
		response, err := s.upsert(ctx, dataset, record, user, &UpsertRequest{Values: item.Values, Status: item.Status})
		if err != nil {
			result.Items[i] = BulkResultItem{Error: err.Error()}
			continue
		}
		result.Items[i] = BulkResultItem{Response: response}
	}
	return result, nil
}

// ========== 内部辅助 ==========

func (s *Service) loadRecordAndDataset(recordID string) (*model.Record, *model.Dataset, error) {
	record, err := s.records.GetByID(recordID)
	if err != nil {
		return nil, nil, err
	}
	dataset, err := s.datasets.GetByID(record.DatasetID)
	if err != nil {
		return nil, nil, err
	}
	return record, dataset, nil
}

// validateValues 校验响应回答。
// 每个键必须是数据集里的问题；submitted 状态要求全部必答问题都有回答；
// draft 和 discarded 允许不完整。
func validateValues(dataset *model.Dataset, values model.JSONMap, status model.ResponseStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid response status: %q", status)
	}

	for name, raw := range values {
		question := dataset.QuestionByName(name)
		if question == nil {
			return fmt.Errorf("question %q not found", name)
		}
		if err := question.Settings.ValidateAnswer(answerValue(raw)); err != nil {
			return fmt.Errorf("invalid answer for question %q: %w", name, err)
		}
	}

	if status == model.ResponseSubmitted {
		for _, q := range dataset.Questions {
			if !q.Required {
				continue
			}
			if _, ok := values[q.Name]; !ok {
				return fmt.Errorf("missing answer for required question %q", q.Name)
			}
		}
	}
	return nil
}

// answerValue 回答条目允许裸值或 {"value": ...} 包装
func answerValue(raw interface{}) interface{} {
	if m, ok := raw.(map[string]interface{}); ok {
		if v, ok := m["value"]; ok {
			return v
		}
	}
	return raw
}

func (s *Service) emitResponseEvents(ctx context.Context, dataset *model.Dataset, result *repository.UpsertResult) {
	eventType := model.EventResponseUpdated
	if result.Created {
		eventType = model.EventResponseCreated
	}
	if err := s.events.Enqueue(ctx, webhook.NewEvent(eventType, map[string]interface{}{
		"dataset_id":  dataset.ID,
		"record_id":   result.Record.ID,
		"response_id": result.Response.ID,
		"status":      string(result.Response.Status),
	})); err != nil {
		log.Printf("Failed to enqueue %s event: %v", eventType, err)
	}
	if result.StatusChanged {
		s.emitRecordStatusEvent(ctx, dataset, result.Record)
	}
}

// emitRecordStatusEvent 记录状态变化事件，进入 completed 时单独发 record.completed
func (s *Service) emitRecordStatusEvent(ctx context.Context, dataset *model.Dataset, record *model.Record) {
	eventType := model.EventRecordUpdated
	if record.Status == model.RecordCompleted {
		eventType = model.EventRecordCompleted
	}
	if err := s.events.Enqueue(ctx, webhook.NewEvent(eventType, map[string]interface{}{
		"dataset_id": dataset.ID,
		"record_id":  record.ID,
		"status":     string(record.Status),
	})); err != nil {
		log.Printf("Failed to enqueue %s event: %v", eventType, err)
	}
}
