// Package record 提供记录的批量写入、查询、元数据更新、向量写入和删除。
// 批量写入按条报告错误，部分成功是正常结果。
package record

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

// Service 记录服务
type Service struct {
	repo       *repository.Repositories
	backend    search.Backend
	events     webhook.Sink
	batchLimit int
}

// NewService 创建记录服务
func NewService(repo *repository.Repositories, backend search.Backend, events webhook.Sink, batchLimit int) *Service {
	if events == nil {
		events = webhook.NopSink{}
	}
	if batchLimit <= 0 {
		batchLimit = 1000
	}
	return &Service{repo: repo, backend: backend, events: events, batchLimit: batchLimit}
}

// ========== 批量创建 ==========

// CreateRecordItem 批量创建中的一条记录
type CreateRecordItem struct {
	Fields      model.JSONMap          `json:"fields"`
	Metadata    model.JSONMap          `json:"metadata,omitempty"`
	ExternalID  string                 `json:"external_id,omitempty"`
	Vectors     map[string][]float64   `json:"vectors,omitempty"`
	Suggestions []CreateSuggestionItem `json:"suggestions,omitempty"`
}

// CreateSuggestionItem 随记录一起写入的建议
type CreateSuggestionItem struct {
	QuestionName string      `json:"question_name"`
	Value        interface{} `json:"value"`
	Score        *float64    `json:"score,omitempty"`
	Agent        string      `json:"agent,omitempty"`
	Type         string      `json:"type,omitempty"`
}

// BulkResultItem 批量创建中第 i 条的结果，Record 和 Error 恰有一个非空
type BulkResultItem struct {
	Record *model.Record `json:"record,omitempty"`
	Error  string        `json:"error,omitempty"`
}

// BulkResult 批量创建结果，Items 与请求条目一一对应
type BulkResult struct {
	Items []BulkResultItem `json:"items"`
}

// BulkCreate 批量创建记录。
// 逐条校验，非法条目记录错误并跳过，合法条目一次性落库并写入索引。
func (s *Service) BulkCreate(ctx context.Context, datasetID string, items []CreateRecordItem) (*BulkResult, error) {
	dataset, err := s.repo.Dataset.GetByID(datasetID)
	if err != nil {
		return nil, err
	}
	if !dataset.IsReady() {
		return nil, fmt.Errorf("records can only be added to a published dataset")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one record is required")
	}
	if len(items) > s.batchLimit {
		return nil, fmt.Errorf("cannot create more than %d records per request", s.batchLimit)
	}

	// 预取已存在的 external_id，批内重复单独跟踪
	var externalIDs []string
	for _, item := range items {
		if item.ExternalID != "" {
			externalIDs = append(externalIDs, item.ExternalID)
		}
	}
	existing, err := s.repo.Record.ExistingExternalIDs(datasetID, externalIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to check external ids: %w", err)
	}
	seenInBatch := make(map[string]bool)

	result := &BulkResult{Items: make([]BulkResultItem, len(items))}
	var valid []*model.Record
	for i := range items {
		item := &items[i]
		record, err := s.buildRecord(dataset, item, existing, seenInBatch)
		if err != nil {
			result.Items[i] = BulkResultItem{Error: err.Error()}
			continue
		}
		result.Items[i] = BulkResultItem{Record: record}
		valid = append(valid, record)
	}

	if len(valid) == 0 {
		return result, nil
	}
	if err := s.repo.Record.CreateBatch(valid); err != nil {
		return nil, fmt.Errorf("failed to create records: %w", err)
	}
	for _, record := range valid {
		for i := range record.Vectors {
			v := record.Vectors[i]
			if err := s.repo.Record.UpsertVector(&v); err != nil {
				return nil, fmt.Errorf("failed to store vector: %w", err)
			}
		}
		for i := range record.Suggestions {
			sg := record.Suggestions[i]
			if err := s.repo.Suggestion.Upsert(&sg); err != nil {
				return nil, fmt.Errorf("failed to store suggestion: %w", err)
			}
		}
	}

	if err := s.backend.IndexRecords(ctx, dataset, valid, nil); err != nil {
		// 主存储是事实来源，索引失败降级为日志
		log.Printf("Failed to index %d records for dataset %s: %v", len(valid), datasetID, err)
	}

	for _, record := range valid {
		if err := s.events.Enqueue(ctx, webhook.NewEvent(model.EventRecordCreated, map[string]interface{}{
			"dataset_id": datasetID,
			"record_id":  record.ID,
		})); err != nil {
			log.Printf("Failed to enqueue record.created event: %v", err)
		}
	}
	return result, nil
}

// buildRecord 校验一条请求并构造待落库的记录
func (s *Service) buildRecord(dataset *model.Dataset, item *CreateRecordItem, existing, seenInBatch map[string]bool) (*model.Record, error) {
	if err := validateFields(dataset, item.Fields); err != nil {
		return nil, err
	}
	if err := validateMetadata(dataset, item.Metadata); err != nil {
		return nil, err
	}

	if item.ExternalID != "" {
		if existing[item.ExternalID] {
			return nil, fmt.Errorf("record with external_id %q already exists", item.ExternalID)
		}
		if seenInBatch[item.ExternalID] {
			return nil, fmt.Errorf("external_id %q is duplicated in the request", item.ExternalID)
		}
		seenInBatch[item.ExternalID] = true
	}

	record := &model.Record{
		ID:         uuid.New().String(),
		Fields:     item.Fields,
		Metadata:   item.Metadata,
		ExternalID: item.ExternalID,
		Status:     model.RecordPending,
		DatasetID:  dataset.ID,
	}

	for name, value := range item.Vectors {
		settings := dataset.VectorSettingsByName(name)
		if settings == nil {
			return nil, fmt.Errorf("vector settings %q not found", name)
		}
		if len(value) != settings.Dimensions {
			return nil, fmt.Errorf("vector %q has %d dimensions, expected %d", name, len(value), settings.Dimensions)
		}
		record.Vectors = append(record.Vectors, model.Vector{
			ID:               uuid.New().String(),
			Value:            model.VectorValue(value),
			RecordID:         record.ID,
			VectorSettingsID: settings.ID,
		})
	}

	for _, sg := range item.Suggestions {
		question := dataset.QuestionByName(sg.QuestionName)
		if question == nil {
			return nil, fmt.Errorf("question %q not found", sg.QuestionName)
		}
		if err := question.Settings.ValidateAnswer(sg.Value); err != nil {
			return nil, fmt.Errorf("invalid suggestion for question %q: %w", sg.QuestionName, err)
		}
		sgType := model.SuggestionType(sg.Type)
		if sgType == "" {
			sgType = model.SuggestionModel
		}
		record.Suggestions = append(record.Suggestions, model.Suggestion{
			ID:         uuid.New().String(),
			Value:      model.SuggestionValue{V: sg.Value},
			Score:      sg.Score,
			Agent:      sg.Agent,
			Type:       sgType,
			RecordID:   record.ID,
			QuestionID: question.ID,
		})
	}

	return record, nil
}

// validateFields 校验字段值：必填字段齐全，没有未定义字段，类型与字段配置一致
func validateFields(dataset *model.Dataset, fields model.JSONMap) error {
	for _, f := range dataset.Fields {
		value, ok := fields[f.Name]
		if !ok || value == nil {
			if f.Required {
				return fmt.Errorf("missing required field %q", f.Name)
			}
			continue
		}
		switch f.Settings.Type {
		case model.FieldText, model.FieldImage:
			if _, ok := value.(string); !ok {
				return fmt.Errorf("field %q must be a string", f.Name)
			}
		case model.FieldChat:
			if _, ok := value.([]interface{}); !ok {
				return fmt.Errorf("field %q must be a list of messages", f.Name)
			}
		}
	}
	for name := range fields {
		if dataset.FieldByName(name) == nil {
			return fmt.Errorf("field %q is not defined in the dataset", name)
		}
	}
	return nil
}

// validateMetadata 校验元数据：已定义属性按其配置校验，
// 未定义键仅在 allow_extra_metadata 开启时接受
func validateMetadata(dataset *model.Dataset, metadata model.JSONMap) error {
	for name, value := range metadata {
		property := dataset.MetadataPropertyByName(name)
		if property == nil {
			if !dataset.AllowExtraMetadata {
				return fmt.Errorf("metadata property %q is not defined and extra metadata is not allowed", name)
			}
			continue
		}
		if err := property.Settings.ValidateValue(value); err != nil {
			return fmt.Errorf("invalid metadata value for %q: %w", name, err)
		}
	}
	return nil
}

// ========== 查询与维护 ==========

// Get 获取记录
func (s *Service) Get(ctx context.Context, id string) (*model.Record, error) {
	return s.repo.Record.GetByID(id)
}

// List 按插入顺序分页列出数据集记录
func (s *Service) List(ctx context.Context, datasetID string, offset, limit int) ([]*model.Record, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if _, err := s.repo.Dataset.GetByID(datasetID); err != nil {
		return nil, 0, err
	}

	records, err := s.repo.Record.List(datasetID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list records: %w", err)
	}
	total, err := s.repo.Record.Count(datasetID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count records: %w", err)
	}
	return records, total, nil
}

// UpdateMetadata 替换记录元数据并同步索引
func (s *Service) UpdateMetadata(ctx context.Context, recordID string, metadata model.JSONMap) (*model.Record, error) {
	record, err := s.repo.Record.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	dataset, err := s.repo.Dataset.GetByID(record.DatasetID)
	if err != nil {
		return nil, err
	}
	if err := validateMetadata(dataset, metadata); err != nil {
		return nil, err
	}

	record.Metadata = metadata
	if err := s.repo.Record.Update(record); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if err := s.reindex(ctx, dataset, record); err != nil {
		log.Printf("Failed to reindex record %s: %v", recordID, err)
	}

	if err := s.events.Enqueue(ctx, webhook.NewEvent(model.EventRecordUpdated, map[string]interface{}{
		"dataset_id": dataset.ID,
		"record_id":  record.ID,
	})); err != nil {
		log.Printf("Failed to enqueue record.updated event: %v", err)
	}
	return record, nil
}

// UpsertVector 写入或替换记录在某向量配置下的向量
func (s *Service) UpsertVector(ctx context.Context, recordID, vectorName string, value []float64) (*model.Vector, error) {
	record, err := s.repo.Record.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	dataset, err := s.repo.Dataset.GetByID(record.DatasetID)
	if err != nil {
		return nil, err
	}
	settings := dataset.VectorSettingsByName(vectorName)
	if settings == nil {
		return nil, &search.VectorSettingsNotFoundError{Name: vectorName, DatasetID: dataset.ID}
	}
	if len(value) != settings.Dimensions {
		return nil, fmt.Errorf("vector %q has %d dimensions, expected %d", vectorName, len(value), settings.Dimensions)
	}

	vector := &model.Vector{
		ID:               uuid.New().String(),
		Value:            model.VectorValue(value),
		RecordID:         record.ID,
		VectorSettingsID: settings.ID,
	}
	if err := s.repo.Record.UpsertVector(vector); err != nil {
		return nil, fmt.Errorf("failed to upsert vector: %w", err)
	}

	if err := s.reindex(ctx, dataset, record); err != nil {
		log.Printf("Failed to reindex record %s: %v", recordID, err)
	}
	return vector, nil
}

// Delete 删除记录、其附属数据和索引文档
func (s *Service) Delete(ctx context.Context, recordID string) error {
	record, err := s.repo.Record.GetByID(recordID)
	if err != nil {
		return err
	}
	dataset, err := s.repo.Dataset.GetByID(record.DatasetID)
	if err != nil {
		return err
	}

	if err := s.repo.Record.Delete(recordID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if err := s.backend.DeleteRecords(ctx, dataset, []string{recordID}); err != nil {
		log.Printf("Failed to delete record %s from index: %v", recordID, err)
	}

	if err := s.events.Enqueue(ctx, webhook.NewEvent(model.EventRecordDeleted, map[string]interface{}{
		"dataset_id": dataset.ID,
		"record_id":  recordID,
	})); err != nil {
		log.Printf("Failed to enqueue record.deleted event: %v", err)
	}
	return nil
}

// reindex 重建单条记录的索引文档，附带当前全部向量和响应
func (s *Service) reindex(ctx context.Context, dataset *model.Dataset, record *model.Record) error {
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
