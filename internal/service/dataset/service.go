// Package dataset 提供数据集生命周期管理：结构配置、发布、删除、进度聚合。
// 发布时创建检索索引，删除时销毁索引。
package dataset

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

// Service 数据集服务
type Service struct {
	repo    *repository.Repositories
	backend search.Backend
	events  webhook.Sink
}

// NewService 创建数据集服务
func NewService(repo *repository.Repositories, backend search.Backend, events webhook.Sink) *Service {
	if events == nil {
		events = webhook.NopSink{}
	}
	return &Service{repo: repo, backend: backend, events: events}
}

// ========== 数据集 CRUD ==========

// CreateDatasetRequest 创建数据集请求
type CreateDatasetRequest struct {
	Name                     string `json:"name" binding:"required,min=1,max=200"`
	Guidelines               string `json:"guidelines"`
	WorkspaceID              string `json:"workspace_id" binding:"required"`
	AllowExtraMetadata       *bool  `json:"allow_extra_metadata"`
	DistributionMinSubmitted int    `json:"distribution_min_submitted"`
}

// Create 创建草稿态数据集
func (s *Service) Create(ctx context.Context, req *CreateDatasetRequest) (*model.Dataset, error) {
	if _, err := s.repo.Workspace.GetByID(req.WorkspaceID); err != nil {
		return nil, fmt.Errorf("workspace not found: %w", err)
	}

	minSubmitted := req.DistributionMinSubmitted
	if minSubmitted < 1 {
		minSubmitted = 1
	}
	allowExtra := true
	if req.AllowExtraMetadata != nil {
		allowExtra = *req.AllowExtraMetadata
	}

	dataset := &model.Dataset{
		ID:                       uuid.New().String(),
		Name:                     req.Name,
		Guidelines:               req.Guidelines,
		Status:                   model.DatasetDraft,
		WorkspaceID:              req.WorkspaceID,
		DistributionStrategy:     model.DistributionOverlap,
		DistributionMinSubmitted: minSubmitted,
		AllowExtraMetadata:       allowExtra,
	}
	if err := s.repo.Dataset.Create(dataset); err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}
	return dataset, nil
}

// Get 获取数据集及其结构定义
func (s *Service) Get(ctx context.Context, id string) (*model.Dataset, error) {
	return s.repo.Dataset.GetByID(id)
}

// List 列出数据集
func (s *Service) List(ctx context.Context, workspaceID string, offset, limit int) ([]*model.Dataset, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	datasets, err := s.repo.Dataset.List(workspaceID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list datasets: %w", err)
	}
	total, err := s.repo.Dataset.Count(workspaceID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count datasets: %w", err)
	}
	return datasets, total, nil
}

// UpdateDatasetRequest 更新数据集请求
type UpdateDatasetRequest struct {
	Name                     string `json:"name"`
	Guidelines               string `json:"guidelines"`
	DistributionMinSubmitted int    `json:"distribution_min_submitted"`
}

// Update 更新数据集。发布后分发策略冻结
func (s *Service) Update(ctx context.Context, id string, req *UpdateDatasetRequest) (*model.Dataset, error) {
	dataset, err := s.repo.Dataset.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		dataset.Name = req.Name
	}
	if req.Guidelines != "" {
		dataset.Guidelines = req.Guidelines
	}
	if req.DistributionMinSubmitted > 0 {
		if dataset.IsReady() && req.DistributionMinSubmitted != dataset.DistributionMinSubmitted {
			return nil, fmt.Errorf("distribution settings cannot be changed once the dataset is published")
		}
		dataset.DistributionMinSubmitted = req.DistributionMinSubmitted
	}

	if err := s.repo.Dataset.Update(dataset); err != nil {
		return nil, fmt.Errorf("failed to update dataset: %w", err)
	}
	return dataset, nil
}

// Publish 发布数据集：校验结构完整后创建检索索引并置为 ready
func (s *Service) Publish(ctx context.Context, id string) (*model.Dataset, error) {
	dataset, err := s.repo.Dataset.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataset.IsReady() {
		return nil, fmt.Errorf("dataset is already published")
	}
	if len(dataset.Fields) == 0 {
		return nil, fmt.Errorf("cannot publish a dataset without fields")
	}
	hasRequired := false
	for _, q := range dataset.Questions {
		if q.Required {
			hasRequired = true
			break
		}
	}
	if !hasRequired {
		return nil, fmt.Errorf("cannot publish a dataset without at least one required question")
	}

	if err := s.backend.CreateIndex(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	dataset.Status = model.DatasetReady
	if err := s.repo.Dataset.Update(dataset); err != nil {
		return nil, fmt.Errorf("failed to publish dataset: %w", err)
	}

	if err := s.events.Enqueue(ctx, webhook.NewEvent(model.EventDatasetPublished, map[string]interface{}{
		"dataset_id": dataset.ID,
	})); err != nil {
		log.Printf("Failed to enqueue dataset.published event: %v", err)
	}
	return dataset, nil
}

// Delete 删除数据集及其检索索引
func (s *Service) Delete(ctx context.Context, id string) error {
	dataset, err := s.repo.Dataset.GetByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Dataset.Delete(id); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	if dataset.IsReady() {
		if err := s.backend.DeleteIndex(ctx, dataset); err != nil {
			// 主存储已删除，索引删除失败只影响存储占用，记录即可
			log.Printf("Failed to delete search index for dataset %s: %v", id, err)
		}
	}

	if err := s.events.Enqueue(ctx, webhook.NewEvent(model.EventDatasetDeleted, map[string]interface{}{
		"dataset_id": id,
	})); err != nil {
		log.Printf("Failed to enqueue dataset.deleted event: %v", err)
	}
	return nil
}

// ========== 结构配置 ==========

// CreateFieldRequest 创建字段请求
type CreateFieldRequest struct {
	Name     string              `json:"name" binding:"required,min=1,max=100"`
	Title    string              `json:"title"`
	Required bool                `json:"required"`
	Settings model.FieldSettings `json:"settings"`
}

// CreateField 给草稿态数据集添加字段
func (s *Service) CreateField(ctx context.Context, datasetID string, req *CreateFieldRequest) (*model.Field, error) {
	dataset, err := s.repo.Dataset.GetByID(datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.IsReady() {
		return nil, fmt.Errorf("fields cannot be added once the dataset is published")
	}
	if dataset.FieldByName(req.Name) != nil {
		return nil, fmt.Errorf("field with name %q already exists", req.Name)
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}

	field := &model.Field{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Title:     req.Title,
		Required:  req.Required,
		Settings:  req.Settings,
		DatasetID: datasetID,
	}
	if err := s.repo.Dataset.CreateField(field); err != nil {
		return nil, fmt.Errorf("failed to create field: %w", err)
	}
	return field, nil
}

// CreateQuestionRequest 创建问题请求
type CreateQuestionRequest struct {
	Name        string                 `json:"name" binding:"required,min=1,max=100"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Required    bool                   `json:"required"`
	Settings    model.QuestionSettings `json:"settings"`
}

// CreateQuestion 给草稿态数据集添加问题
func (s *Service) CreateQuestion(ctx context.Context, datasetID string, req *CreateQuestionRequest) (*model.Question, error) {
	dataset, err := s.repo.Dataset.GetByID(datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.IsReady() {
		return nil, fmt.Errorf("questions cannot be added once the dataset is published")
	}
	if dataset.QuestionByName(req.Name) != nil {
		return nil, fmt.Errorf("question with name %q already exists", req.Name)
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}
	if req.Settings.Type == model.QuestionSpan {
		if dataset.FieldByName(req.Settings.Span.Field) == nil {
			return nil, fmt.Errorf("span question references unknown field %q", req.Settings.Span.Field)
		}
	}

	question := &model.Question{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		Required:    req.Required,
		Settings:    req.Settings,
		DatasetID:   datasetID,
	}
	if err := s.repo.Dataset.CreateQuestion(question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

// GetQuestion 获取问题
func (s *Service) GetQuestion(ctx context.Context, id string) (*model.Question, error) {
	return s.repo.Dataset.GetQuestionByID(id)
}

// UpdateQuestionRequest 更新问题请求
type UpdateQuestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// VisibleOptions 只允许增大；AllowOverlapping 只允许 false -> true
	VisibleOptions   *int  `json:"visible_options"`
	AllowOverlapping *bool `json:"allow_overlapping"`
}

// UpdateQuestion 更新问题。
// 发布后 name、required 和选项集合不可变，只允许描述性字段和放宽方向的设置变化。
func (s *Service) UpdateQuestion(ctx context.Context, questionID string, req *UpdateQuestionRequest) (*model.Question, error) {
	question, err := s.repo.Dataset.GetQuestionByID(questionID)
	if err != nil {
		return nil, err
	}
	dataset, err := s.repo.Dataset.GetByID(question.DatasetID)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		question.Title = req.Title
	}
	if req.Description != "" {
		question.Description = req.Description
	}

	if req.VisibleOptions != nil {
		if err := applyVisibleOptions(question, *req.VisibleOptions, dataset.IsReady()); err != nil {
			return nil, err
		}
	}
	if req.AllowOverlapping != nil {
		if question.Settings.Type != model.QuestionSpan {
			return nil, fmt.Errorf("allow_overlapping only applies to span questions")
		}
		if dataset.IsReady() && question.Settings.Span.AllowOverlapping && !*req.AllowOverlapping {
			return nil, fmt.Errorf("allow_overlapping cannot be disabled once the dataset is published")
		}
		question.Settings.Span.AllowOverlapping = *req.AllowOverlapping
	}

	if err := s.repo.Dataset.UpdateQuestion(question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// applyVisibleOptions 发布后 visible_options 只允许变大
func applyVisibleOptions(question *model.Question, value int, published bool) error {
	var target **int
	switch question.Settings.Type {
	case model.QuestionLabelSelection:
		target = &question.Settings.LabelSelection.VisibleOptions
	case model.QuestionMultiLabelSelection:
		target = &question.Settings.MultiLabelSelection.VisibleOptions
	case model.QuestionSpan:
		target = &question.Settings.Span.VisibleOptions
	default:
		return fmt.Errorf("visible_options does not apply to %s questions", question.Settings.Type)
	}

	if published && *target != nil && value < **target {
		return fmt.Errorf("visible_options can only be increased once the dataset is published")
	}
	*target = &value
	return nil
}

// DeleteQuestion 删除问题，仅限草稿态
func (s *Service) DeleteQuestion(ctx context.Context, questionID string) error {
	question, err := s.repo.Dataset.GetQuestionByID(questionID)
	if err != nil {
		return err
	}
	dataset, err := s.repo.Dataset.GetByID(question.DatasetID)
	if err != nil {
		return err
	}
	if dataset.IsReady() {
		return fmt.Errorf("questions cannot be deleted once the dataset is published")
	}
	return s.repo.Dataset.DeleteQuestion(questionID)
}

// CreateMetadataPropertyRequest 创建元数据属性请求
type CreateMetadataPropertyRequest struct {
	Name     string                         `json:"name" binding:"required,min=1,max=100"`
	Title    string                         `json:"title"`
	Settings model.MetadataPropertySettings `json:"settings"`
}

// CreateMetadataProperty 添加元数据属性
func (s *Service) CreateMetadataProperty(ctx context.Context, datasetID string, req *CreateMetadataPropertyRequest) (*model.MetadataProperty, error) {
	dataset, err := s.repo.Dataset.GetByID(datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.MetadataPropertyByName(req.Name) != nil {
		return nil, fmt.Errorf("metadata property with name %q already exists", req.Name)
	}
	if err := req.Settings.Validate(); err != nil {
		return nil, err
	}

	property := &model.MetadataProperty{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Title:     req.Title,
		Settings:  req.Settings,
		DatasetID: datasetID,
	}
	if err := s.repo.Dataset.CreateMetadataProperty(property); err != nil {
		return nil, fmt.Errorf("failed to create metadata property: %w", err)
	}
	return property, nil
}

// CreateVectorSettingsRequest 创建向量配置请求
type CreateVectorSettingsRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Title      string `json:"title"`
	Dimensions int    `json:"dimensions" binding:"required,min=1"`
}

// CreateVectorSettings 添加向量配置，仅限草稿态（索引 mapping 发布时生成）
func (s *Service) CreateVectorSettings(ctx context.Context, datasetID string, req *CreateVectorSettingsRequest) (*model.VectorSettings, error) {
	dataset, err := s.repo.Dataset.GetByID(datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.IsReady() {
		return nil, fmt.Errorf("vector settings cannot be added once the dataset is published")
	}
	if dataset.VectorSettingsByName(req.Name) != nil {
		return nil, fmt.Errorf("vector settings with name %q already exists", req.Name)
	}

	settings := &model.VectorSettings{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Title:      req.Title,
		Dimensions: req.Dimensions,
		DatasetID:  datasetID,
	}
	if err := s.repo.Dataset.CreateVectorSettings(settings); err != nil {
		return nil, fmt.Errorf("failed to create vector settings: %w", err)
	}
	return settings, nil
}

// ========== 进度与指标 ==========

// Progress 数据集进度聚合
type Progress struct {
	Total       int64 `json:"total"`
	Submitted   int64 `json:"submitted"`
	Discarded   int64 `json:"discarded"`
	Conflicting int64 `json:"conflicting"`
	Pending     int64 `json:"pending"`
}

// GetProgress 计算数据集进度。
// 每条记录恰好归入一个桶，桶语义见 model.ComputeProgressBucket。
func (s *Service) GetProgress(ctx context.Context, datasetID string) (*Progress, error) {
	if _, err := s.repo.Dataset.GetByID(datasetID); err != nil {
		return nil, err
	}

	total, err := s.repo.Record.Count(datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	responses, err := s.repo.Response.ListByDataset(datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	return computeProgress(total, responses), nil
}

// computeProgress 把数据集内全部响应按记录聚合进唯一的进度桶
func computeProgress(total int64, responses []*model.Response) *Progress {
	byRecord := make(map[string][]*model.Response)
	for _, r := range responses {
		byRecord[r.RecordID] = append(byRecord[r.RecordID], r)
	}

	progress := &Progress{Total: total}
	for _, rs := range byRecord {
		switch model.ComputeProgressBucket(rs) {
		case model.BucketSubmitted:
			progress.Submitted++
		case model.BucketDiscarded:
			progress.Discarded++
		case model.BucketConflicting:
			progress.Conflicting++
		case model.BucketPending:
			progress.Pending++
		}
	}
	// 没有任何响应的记录也属于 pending
	progress.Pending += total - int64(len(byRecord))
	return progress
}

// UserMetrics 某用户在数据集内的响应统计
type UserMetrics struct {
	Total     int64 `json:"total"`
	Draft     int64 `json:"draft"`
	Submitted int64 `json:"submitted"`
	Discarded int64 `json:"discarded"`
}

// GetUserMetrics 统计某用户的响应分布，状态语义与检索过滤一致
func (s *Service) GetUserMetrics(ctx context.Context, datasetID, userID string) (*UserMetrics, error) {
	if _, err := s.repo.Dataset.GetByID(datasetID); err != nil {
		return nil, err
	}
	if _, err := s.repo.User.GetByID(userID); err != nil {
		return nil, err
	}

	counts, err := s.repo.Response.CountByDatasetUserAndStatus(datasetID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count responses: %w", err)
	}

	metrics := &UserMetrics{
		Draft:     counts[model.ResponseDraft],
		Submitted: counts[model.ResponseSubmitted],
		Discarded: counts[model.ResponseDiscarded],
	}
	metrics.Total = metrics.Draft + metrics.Submitted + metrics.Discarded
	return metrics, nil
}
