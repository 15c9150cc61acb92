package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/argilla-io/argilla-server/internal/model"
)

// ESBackend go-elasticsearch 实现的搜索后端
type ESBackend struct {
	client *elasticsearch.Client
	prefix string
}

// NewESBackend 创建 Elasticsearch 后端
func NewESBackend(addresses []string, username, password, prefix string) (*ESBackend, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return &ESBackend{client: client, prefix: prefix}, nil
}

// NewESBackendWithClient 用现有客户端创建后端，测试用
func NewESBackendWithClient(client *elasticsearch.Client, prefix string) *ESBackend {
	return &ESBackend{client: client, prefix: prefix}
}

func (b *ESBackend) indexName(ds *model.Dataset) string {
	return IndexName(b.prefix, ds.ID)
}

// CreateIndex 按数据集结构创建索引
func (b *ESBackend) CreateIndex(ctx context.Context, ds *model.Dataset) error {
	mapping, err := json.Marshal(BuildIndexMapping(ds))
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	req := esapi.IndicesCreateRequest{
		Index: b.indexName(ds),
		Body:  bytes.NewReader(mapping),
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to create index %s: %s", b.indexName(ds), res.String())
	}
	return nil
}

// DeleteIndex 删除数据集索引，索引不存在时忽略
func (b *ESBackend) DeleteIndex(ctx context.Context, ds *model.Dataset) error {
	ignoreUnavailable := true
	req := esapi.IndicesDeleteRequest{
		Index:             []string{b.indexName(ds)},
		IgnoreUnavailable: &ignoreUnavailable,
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to delete index %s: %s", b.indexName(ds), res.String())
	}
	return nil
}

// IndexRecords 用 bulk API 批量写入记录文档
func (b *ESBackend) IndexRecords(ctx context.Context, ds *model.Dataset, records []*model.Record, usernames map[string]string) error {
	if len(records) == 0 {
		return nil
	}

	var buf bytes.Buffer
	index := b.indexName(ds)
	for _, record := range records {
		action, err := json.Marshal(map[string]interface{}{
			"index": map[string]interface{}{"_index": index, "_id": record.ID},
		})
		if err != nil {
			return err
		}
		doc, err := json.Marshal(BuildRecordDocument(ds, record, usernames))
		if err != nil {
			return err
		}
		buf.Write(action)
		buf.WriteByte('\n')
		buf.Write(doc)
		buf.WriteByte('\n')
	}

	refresh := "true"
	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: refresh,
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return fmt.Errorf("failed to bulk index records: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to bulk index records: %s", res.String())
	}
	return nil
}

// DeleteRecords 按 id 批量删除记录文档
func (b *ESBackend) DeleteRecords(ctx context.Context, ds *model.Dataset, recordIDs []string) error {
	if len(recordIDs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	index := b.indexName(ds)
	for _, id := range recordIDs {
		action, err := json.Marshal(map[string]interface{}{
			"delete": map[string]interface{}{"_index": index, "_id": id},
		})
		if err != nil {
			return err
		}
		buf.Write(action)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{
		Body:    &buf,
		Refresh: "true",
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return fmt.Errorf("failed to bulk delete records: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to bulk delete records: %s", res.String())
	}
	return nil
}

// updateResponseScript 移除该用户的旧响应条目后追加新条目
const updateResponseScript = `
ctx._source.responses.removeIf(r -> r.user == params.entry.user);
ctx._source.responses.add(params.entry);
`

// deleteResponseScript 移除该用户的响应条目
const deleteResponseScript = `
ctx._source.responses.removeIf(r -> r.user == params.user);
`

// UpdateRecordResponse 写入或替换某用户在记录文档上的响应条目
func (b *ESBackend) UpdateRecordResponse(ctx context.Context, ds *model.Dataset, recordID, username string, values model.JSONMap, status model.ResponseStatus) error {
	body, err := json.Marshal(map[string]interface{}{
		"script": map[string]interface{}{
			"source": strings.TrimSpace(updateResponseScript),
			"params": map[string]interface{}{
				"entry": map[string]interface{}{
					"user":   username,
					"status": string(status),
					"values": map[string]interface{}(values),
				},
			},
		},
	})
	if err != nil {
		return err
	}
	return b.updateDocument(ctx, ds, recordID, body)
}

// DeleteRecordResponse 删除某用户在记录文档上的响应条目
func (b *ESBackend) DeleteRecordResponse(ctx context.Context, ds *model.Dataset, recordID, username string) error {
	body, err := json.Marshal(map[string]interface{}{
		"script": map[string]interface{}{
			"source": strings.TrimSpace(deleteResponseScript),
			"params": map[string]interface{}{"user": username},
		},
	})
	if err != nil {
		return err
	}
	return b.updateDocument(ctx, ds, recordID, body)
}

func (b *ESBackend) updateDocument(ctx context.Context, ds *model.Dataset, recordID string, body []byte) error {
	req := esapi.UpdateRequest{
		Index:      b.indexName(ds),
		DocumentID: recordID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return fmt.Errorf("failed to update record document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("failed to update record %s: %s", recordID, res.String())
	}
	return nil
}

// esSearchResponse 检索响应中本层关心的部分
type esSearchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID    string   `json:"_id"`
			Score *float64 `json:"_score"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search 执行检索并返回 (record_id, score) 命中分页
func (b *ESBackend) Search(ctx context.Context, ds *model.Dataset, body map[string]interface{}, offset, limit int) (*Result, error) {
	request := map[string]interface{}{
		"from":             offset,
		"size":             limit,
		"_source":          false,
		"track_total_hits": true,
	}
	for k, v := range body {
		request[k] = v
	}

	data, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	res, err := b.client.Search(
		b.client.Search.WithContext(ctx),
		b.client.Search.WithIndex(b.indexName(ds)),
		b.client.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search failed on index %s: %s", b.indexName(ds), res.String())
	}

	var parsed esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		score := 0.0
		if h.Score != nil {
			score = *h.Score
		}
		hits = append(hits, Hit{RecordID: h.ID, Score: score})
	}

	return &Result{Hits: hits, Total: parsed.Hits.Total.Value}, nil
}
