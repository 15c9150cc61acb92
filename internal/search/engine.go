package search

import (
	"context"
	"time"

	"github.com/argilla-io/argilla-server/internal/model"
)

// Hit 一条命中，按后端返回顺序排列
type Hit struct {
	RecordID string
	Score    float64
}

// Result 检索结果。Total 是全部命中数，不只是当前页
type Result struct {
	Hits  []Hit
	Total int64
}

// Backend 搜索引擎抽象。实现按数据集维护一个索引，索引名由
// IndexName 推导；Search 只返回 (record_id, score) 和总数，
// 记录本体由调用方从主存储加载。
type Backend interface {
	// CreateIndex 按数据集结构创建索引
	CreateIndex(ctx context.Context, ds *model.Dataset) error
	// DeleteIndex 删除数据集索引
	DeleteIndex(ctx context.Context, ds *model.Dataset) error
	// IndexRecords 批量写入记录文档，usernames 提供 user_id 到用户名的映射
	IndexRecords(ctx context.Context, ds *model.Dataset, records []*model.Record, usernames map[string]string) error
	// DeleteRecords 按 id 删除记录文档
	DeleteRecords(ctx context.Context, ds *model.Dataset, recordIDs []string) error
	// UpdateRecordResponse 写入或替换某用户在某记录文档上的响应条目
	UpdateRecordResponse(ctx context.Context, ds *model.Dataset, recordID, username string, values model.JSONMap, status model.ResponseStatus) error
	// DeleteRecordResponse 删除某用户在某记录文档上的响应条目
	DeleteRecordResponse(ctx context.Context, ds *model.Dataset, recordID, username string) error
	// Search 执行检索，返回按相关度排序的命中分页
	Search(ctx context.Context, ds *model.Dataset, body map[string]interface{}, offset, limit int) (*Result, error)
}

// IndexName 数据集索引名，数据集 id 的确定性函数
func IndexName(prefix, datasetID string) string {
	return prefix + "." + datasetID
}

// BuildIndexMapping 按数据集结构生成索引 mapping。
// 字段为 text，元数据按类型映射，响应为 nested，向量为 dense_vector。
func BuildIndexMapping(ds *model.Dataset) map[string]interface{} {
	fieldProps := map[string]interface{}{}
	for _, f := range ds.Fields {
		fieldProps[f.Name] = map[string]interface{}{"type": "text"}
	}

	metadataProps := map[string]interface{}{}
	for _, p := range ds.MetadataProperties {
		var esType string
		switch p.Settings.Type {
		case model.MetadataInteger:
			esType = "long"
		case model.MetadataFloat:
			esType = "float"
		default:
			esType = "keyword"
		}
		metadataProps[p.Name] = map[string]interface{}{"type": esType}
	}

	valueProps := map[string]interface{}{}
	suggestionProps := map[string]interface{}{}
	for _, q := range ds.Questions {
		var esType string
		switch q.Settings.Type {
		case model.QuestionRating:
			esType = "long"
		case model.QuestionText:
			esType = "text"
		default:
			esType = "keyword"
		}
		valueProps[q.Name] = map[string]interface{}{"type": esType}
		suggestionProps[q.Name] = map[string]interface{}{
			"properties": map[string]interface{}{
				"value": map[string]interface{}{"type": esType},
				"score": map[string]interface{}{"type": "float"},
				"agent": map[string]interface{}{"type": "keyword"},
				"type":  map[string]interface{}{"type": "keyword"},
			},
		}
	}

	properties := map[string]interface{}{
		"id":          map[string]interface{}{"type": "keyword"},
		"status":      map[string]interface{}{"type": "keyword"},
		"inserted_at": map[string]interface{}{"type": "date"},
		"updated_at":  map[string]interface{}{"type": "date"},
		"fields":      map[string]interface{}{"properties": fieldProps},
		"responses": map[string]interface{}{
			"type": "nested",
			"properties": map[string]interface{}{
				"user":   map[string]interface{}{"type": "keyword"},
				"status": map[string]interface{}{"type": "keyword"},
				"values": map[string]interface{}{"properties": valueProps},
			},
		},
	}
	if len(metadataProps) > 0 {
		properties["metadata"] = map[string]interface{}{"properties": metadataProps}
	}
	if len(suggestionProps) > 0 {
		properties["suggestions"] = map[string]interface{}{"properties": suggestionProps}
	}
	if len(ds.VectorSettings) > 0 {
		vectorProps := map[string]interface{}{}
		for _, vs := range ds.VectorSettings {
			vectorProps[vs.Name] = map[string]interface{}{
				"type":       "dense_vector",
				"dims":       vs.Dimensions,
				"index":      true,
				"similarity": "cosine",
			}
		}
		properties["vectors"] = map[string]interface{}{"properties": vectorProps}
	}

	return map[string]interface{}{
		"mappings": map[string]interface{}{
			"dynamic":    "strict",
			"properties": properties,
		},
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
		},
	}
}

// BuildRecordDocument 把记录转换为索引文档。
// 响应条目以用户名为键，usernames 提供 user_id 到用户名的映射；
// 新建记录时没有响应，后续由 UpdateRecordResponse 增量维护。
func BuildRecordDocument(ds *model.Dataset, record *model.Record, usernames map[string]string) map[string]interface{} {
	doc := map[string]interface{}{
		"id":          record.ID,
		"status":      string(record.Status),
		"inserted_at": record.InsertedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":  record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"fields":      map[string]interface{}(record.Fields),
		"responses":   []interface{}{},
	}

	if len(record.Metadata) > 0 {
		doc["metadata"] = map[string]interface{}(record.Metadata)
	}

	if len(record.Responses) > 0 {
		responses := make([]interface{}, 0, len(record.Responses))
		for i := range record.Responses {
			r := &record.Responses[i]
			username := usernames[r.UserID]
			if username == "" {
				username = r.UserID
			}
			responses = append(responses, map[string]interface{}{
				"user":   username,
				"status": string(r.Status),
				"values": map[string]interface{}(r.Values),
			})
		}
		doc["responses"] = responses
	}

	if len(record.Suggestions) > 0 {
		suggestions := map[string]interface{}{}
		questionNames := map[string]string{}
		for _, q := range ds.Questions {
			questionNames[q.ID] = q.Name
		}
		for i := range record.Suggestions {
			s := &record.Suggestions[i]
			name, ok := questionNames[s.QuestionID]
			if !ok {
				continue
			}
			entry := map[string]interface{}{
				"value": s.Value.V,
				"agent": s.Agent,
				"type":  string(s.Type),
			}
			if s.Score != nil {
				entry["score"] = *s.Score
			}
			suggestions[name] = entry
		}
		doc["suggestions"] = suggestions
	}

	if len(record.Vectors) > 0 {
		vectors := map[string]interface{}{}
		settingsNames := map[string]string{}
		for _, vs := range ds.VectorSettings {
			settingsNames[vs.ID] = vs.Name
		}
		for i := range record.Vectors {
			v := &record.Vectors[i]
			name, ok := settingsNames[v.VectorSettingsID]
			if !ok {
				continue
			}
			vectors[name] = []float64(v.Value)
		}
		doc["vectors"] = vectors
	}

	return doc
}
