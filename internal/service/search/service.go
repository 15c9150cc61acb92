// Package search 是检索执行层：校验查询、翻译为引擎请求、执行，
// 再用主存储的记录本体对账命中结果。
package search

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/repository"
	"github.com/argilla-io/argilla-server/internal/search"
)

// DatasetStore 检索需要的数据集读取接口
type DatasetStore interface {
	GetByID(id string) (*model.Dataset, error)
}

// RecordStore 检索需要的记录读取接口
type RecordStore interface {
	ListByIDs(datasetID string, ids []string) ([]*model.Record, error)
	GetVector(recordID, vectorSettingsID string) (*model.Vector, error)
	ListVectors(recordIDs []string, vectorSettingsIDs []string) ([]*model.Vector, error)
}

// ResponseStore 检索需要的响应读取接口
type ResponseStore interface {
	ListByRecordIDs(recordIDs []string) ([]*model.Response, error)
	ListByRecordIDsAndUser(recordIDs []string, userID string) ([]*model.Response, error)
}

// SuggestionStore 检索需要的建议读取接口
type SuggestionStore interface {
	ListByRecordIDs(recordIDs []string) ([]*model.Suggestion, error)
}

// Service 检索服务
type Service struct {
	datasets    DatasetStore
	records     RecordStore
	responses   ResponseStore
	suggestions SuggestionStore
	backend     search.Backend
	limitMax    int
}

// NewService 创建检索服务
func NewService(repo *repository.Repositories, backend search.Backend, limitMax int) *Service {
	return NewServiceWithStores(repo.Dataset, repo.Record, repo.Response, repo.Suggestion, backend, limitMax)
}

// NewServiceWithStores 用显式依赖创建检索服务，测试用
func NewServiceWithStores(datasets DatasetStore, records RecordStore, responses ResponseStore, suggestions SuggestionStore, backend search.Backend, limitMax int) *Service {
	if limitMax <= 0 {
		limitMax = 500
	}
	return &Service{
		datasets:    datasets,
		records:     records,
		responses:   responses,
		suggestions: suggestions,
		backend:     backend,
		limitMax:    limitMax,
	}
}

// Options 检索选项
type Options struct {
	Offset int
	Limit  int
	// WithResponses 返回记录时附带响应；ResponsesUser 非空时只附带该用户的
	WithResponses bool
	ResponsesUser *model.User
	// WithSuggestions 附带建议
	WithSuggestions bool
	// WithVectors 附带向量，VectorNames 非空时只附带指定名字的
	WithVectors bool
	VectorNames []string
}

// Item 一条命中及其记录本体
type Item struct {
	Record *model.Record `json:"record"`
	Score  float64       `json:"score"`
}

// Result 检索结果。Total 是全部命中数，Items 只是当前页
type Result struct {
	Items []Item `json:"items"`
	Total int64  `json:"total"`
}

// SearchRecords 执行一次记录检索。
// 命中顺序以引擎返回为准；引擎里有而主存储里没有的记录
// 被静默跳过，视为删除尚未同步到索引。
func (s *Service) SearchRecords(ctx context.Context, datasetID string, q *search.Query, opts Options) (*Result, error) {
	if opts.Offset < 0 {
		return nil, &search.InvalidFilterError{Reason: "offset must be greater than or equal to 0"}
	}
	if opts.Limit < 1 || opts.Limit > s.limitMax {
		return nil, &search.InvalidFilterError{Reason: fmt.Sprintf("limit must be between 1 and %d", s.limitMax)}
	}

	dataset, err := s.datasets.GetByID(datasetID)
	if err != nil {
		return nil, err
	}
	if !dataset.IsReady() {
		return nil, fmt.Errorf("records can only be searched on a published dataset")
	}

	if err := search.Validate(q, dataset); err != nil {
		return nil, err
	}

	body, err := s.translate(q)
	if err != nil {
		return nil, err
	}

	hits, err := s.backend.Search(ctx, dataset, body, opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if hits.Total == 0 {
		log.Printf("Search on dataset %s returned no results", datasetID)
	}

	items, err := s.reconcile(dataset, hits)
	if err != nil {
		return nil, err
	}
	if err := s.attachIncludes(dataset, items, &opts); err != nil {
		return nil, err
	}
	return &Result{Items: items, Total: hits.Total}, nil
}

// translate 把查询翻译为引擎请求体，向量查询先解析出具体向量值
func (s *Service) translate(q *search.Query) (map[string]interface{}, error) {
	if q == nil || q.Vector == nil {
		return search.Translate(q)
	}

	value := q.Vector.Value
	if len(value) == 0 {
		vector, err := s.records.GetVector(q.Vector.RecordID, q.Vector.Entity.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &search.MissingVectorError{RecordID: q.Vector.RecordID, VectorName: q.Vector.Name}
			}
			return nil, err
		}
		value = []float64(vector.Value)
	}
	return search.TranslateSimilarity(q, value)
}

// reconcile 把引擎命中对账为带记录本体的结果，保持引擎返回的顺序
func (s *Service) reconcile(dataset *model.Dataset, hits *search.Result) ([]Item, error) {
	ids := make([]string, 0, len(hits.Hits))
	for _, h := range hits.Hits {
		ids = append(ids, h.RecordID)
	}

	records, err := s.records.ListByIDs(dataset.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	byID := make(map[string]*model.Record, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	items := make([]Item, 0, len(hits.Hits))
	for _, h := range hits.Hits {
		record, ok := byID[h.RecordID]
		if !ok {
			continue
		}
		items = append(items, Item{Record: record, Score: h.Score})
	}
	return items, nil
}

// attachIncludes 按选项给命中记录附带响应、建议和向量
func (s *Service) attachIncludes(dataset *model.Dataset, items []Item, opts *Options) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, 0, len(items))
	byID := make(map[string]*model.Record, len(items))
	for _, item := range items {
		ids = append(ids, item.Record.ID)
		byID[item.Record.ID] = item.Record
	}

	if opts.WithResponses {
		var responses []*model.Response
		var err error
		if opts.ResponsesUser != nil {
			responses, err = s.responses.ListByRecordIDsAndUser(ids, opts.ResponsesUser.ID)
		} else {
			responses, err = s.responses.ListByRecordIDs(ids)
		}
		if err != nil {
			return fmt.Errorf("failed to load responses: %w", err)
		}
		for _, r := range responses {
			record := byID[r.RecordID]
			record.Responses = append(record.Responses, *r)
		}
	}

	if opts.WithSuggestions {
		suggestions, err := s.suggestions.ListByRecordIDs(ids)
		if err != nil {
			return fmt.Errorf("failed to load suggestions: %w", err)
		}
		for _, sg := range suggestions {
			record := byID[sg.RecordID]
			record.Suggestions = append(record.Suggestions, *sg)
		}
	}

	if opts.WithVectors {
		var settingsIDs []string
		for _, name := range opts.VectorNames {
			settings := dataset.VectorSettingsByName(name)
			if settings == nil {
				return &search.VectorSettingsNotFoundError{Name: name, DatasetID: dataset.ID}
			}
			settingsIDs = append(settingsIDs, settings.ID)
		}
		vectors, err := s.records.ListVectors(ids, settingsIDs)
		if err != nil {
			return fmt.Errorf("failed to load vectors: %w", err)
		}
		for _, v := range vectors {
			record := byID[v.RecordID]
			record.Vectors = append(record.Vectors, *v)
		}
	}
	return nil
}
