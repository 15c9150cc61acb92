package testutil

import (
	"context"

	"github.com/argilla-io/argilla-server/internal/model"
	"github.com/argilla-io/argilla-server/internal/search"
)

// FakeBackend 内存假搜索后端，记录全部调用并返回预置命中
type FakeBackend struct {
	// SearchResult 预置的检索结果
	SearchResult *search.Result
	// SearchErr 预置的检索错误
	SearchErr error

	// SearchCalls 实际发生的检索调用
	SearchCalls []FakeSearchCall
	// Indexed 经 IndexRecords 写入的全部记录
	Indexed []*model.Record
	// Deleted 经 DeleteRecords 删除的全部记录 id
	Deleted []string
	// CreatedIndexes 创建过索引的数据集 id
	CreatedIndexes []string
	// DeletedIndexes 删除过索引的数据集 id
	DeletedIndexes []string
	// ResponseUpdates 响应同步调用 (recordID, username)
	ResponseUpdates [][2]string
	// ResponseDeletes 响应删除调用 (recordID, username)
	ResponseDeletes [][2]string
}

// FakeSearchCall 一次检索调用的参数
type FakeSearchCall struct {
	DatasetID string
	Body      map[string]interface{}
	Offset    int
	Limit     int
}

// CreateIndex 记录调用
func (b *FakeBackend) CreateIndex(ctx context.Context, ds *model.Dataset) error {
	b.CreatedIndexes = append(b.CreatedIndexes, ds.ID)
	return nil
}

// DeleteIndex 记录调用
func (b *FakeBackend) DeleteIndex(ctx context.Context, ds *model.Dataset) error {
	b.DeletedIndexes = append(b.DeletedIndexes, ds.ID)
	return nil
}

// IndexRecords 记录调用
func (b *FakeBackend) IndexRecords(ctx context.Context, ds *model.Dataset, records []*model.Record, usernames map[string]string) error {
	b.Indexed = append(b.Indexed, records...)
	return nil
}

// DeleteRecords 记录调用
func (b *FakeBackend) DeleteRecords(ctx context.Context, ds *model.Dataset, recordIDs []string) error {
	b.Deleted = append(b.Deleted, recordIDs...)
	return nil
}

// UpdateRecordResponse 记录调用
func (b *FakeBackend) UpdateRecordResponse(ctx context.Context, ds *model.Dataset, recordID, username string, values model.JSONMap, status model.ResponseStatus) error {
	b.ResponseUpdates = append(b.ResponseUpdates, [2]string{recordID, username})
	return nil
}

// DeleteRecordResponse 记录调用
func (b *FakeBackend) DeleteRecordResponse(ctx context.Context, ds *model.Dataset, recordID, username string) error {
	b.ResponseDeletes = append(b.ResponseDeletes, [2]string{recordID, username})
	return nil
}

// Search 记录调用并返回预置结果
func (b *FakeBackend) Search(ctx context.Context, ds *model.Dataset, body map[string]interface{}, offset, limit int) (*search.Result, error) {
	b.SearchCalls = append(b.SearchCalls, FakeSearchCall{
		DatasetID: ds.ID,
		Body:      body,
		Offset:    offset,
		Limit:     limit,
	})
	if b.SearchErr != nil {
		return nil, b.SearchErr
	}
	if b.SearchResult != nil {
		return b.SearchResult, nil
	}
	return &search.Result{}, nil
}
