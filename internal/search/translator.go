package search

import (
	"fmt"
)

// Translate 把已校验的查询翻译成搜索引擎的原生请求体。
// 纯函数，不做任何 I/O；分页、_source 等执行参数由执行器补充。
func Translate(q *Query) (map[string]interface{}, error) {
	body := map[string]interface{}{}

	boolQuery := map[string]interface{}{}

	if q != nil && q.Text != nil && q.Text.Q != "" {
		boolQuery["must"] = []interface{}{textClause(q.Text)}
	}

	var filters []interface{}
	if q != nil {
		if q.Filter != nil {
			for _, f := range q.Filter.Filters {
				clause, err := filterClause(f)
				if err != nil {
					return nil, err
				}
				filters = append(filters, clause)
			}
		}
		if q.ResponseStatus != nil && len(q.ResponseStatus.Statuses) > 0 {
			filters = append(filters, responseStatusClause(q.ResponseStatus))
		}
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	if len(boolQuery) == 0 {
		body["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		body["query"] = map[string]interface{}{"bool": boolQuery}
	}

	var sorts []interface{}
	if q != nil {
		for _, order := range q.Sort {
			sorts = append(sorts, sortClause(order))
		}
	}
	if len(sorts) == 0 {
		sorts = append(sorts, map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}})
	}
	// id 升序兜底，保证分页顺序确定
	sorts = append(sorts, map[string]interface{}{"id": map[string]interface{}{"order": "asc"}})
	body["sort"] = sorts

	return body, nil
}

// TranslateSimilarity 翻译向量相似检索请求体。
// 过滤条件与普通检索一致，评分用 cosineSimilarity 脚本改写。
func TranslateSimilarity(q *Query, vector []float64) (map[string]interface{}, error) {
	if q == nil || q.Vector == nil {
		return nil, &InvalidFilterError{Reason: "similarity search requires a vector query"}
	}

	inner, err := Translate(q)
	if err != nil {
		return nil, err
	}

	field := "vectors." + q.Vector.Name
	script := fmt.Sprintf("cosineSimilarity(params.query_vector, '%s') + 1.0", field)
	if q.Vector.Order == LeastSimilar {
		script = fmt.Sprintf("2.0 - cosineSimilarity(params.query_vector, '%s')", field)
	}

	body := map[string]interface{}{
		"query": map[string]interface{}{
			"script_score": map[string]interface{}{
				"query": inner["query"],
				"script": map[string]interface{}{
					"source": script,
					"params": map[string]interface{}{"query_vector": vector},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
	}
	return body, nil
}

// textClause 全文查询子句：无字段时跨全部字段匹配，有字段时只查该字段
func textClause(t *TextQuery) map[string]interface{} {
	if t.Field == "" {
		return map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":    t.Q,
				"type":     "cross_fields",
				"fields":   []interface{}{"fields.*"},
				"operator": "and",
			},
		}
	}
	return map[string]interface{}{
		"match": map[string]interface{}{
			"fields." + t.Field: map[string]interface{}{
				"query":    t.Q,
				"operator": "and",
			},
		},
	}
}

func filterClause(f Filter) (map[string]interface{}, error) {
	switch filter := f.(type) {
	case *AndFilter:
		var clauses []interface{}
		for _, inner := range filter.Filters {
			clause, err := filterClause(inner)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		return map[string]interface{}{
			"bool": map[string]interface{}{"filter": clauses},
		}, nil
	case *TermsFilter:
		values := make([]interface{}, 0, len(filter.Values))
		for _, v := range filter.Values {
			values = append(values, v)
		}
		return scopedClause(filter.Scope, func(path string) map[string]interface{} {
			return map[string]interface{}{"terms": map[string]interface{}{path: values}}
		})
	case *RangeFilter:
		bounds := map[string]interface{}{}
		if filter.Ge != nil {
			bounds["gte"] = *filter.Ge
		}
		if filter.Le != nil {
			bounds["lte"] = *filter.Le
		}
		return scopedClause(filter.Scope, func(path string) map[string]interface{} {
			return map[string]interface{}{"range": map[string]interface{}{path: bounds}}
		})
	default:
		return nil, &InvalidFilterError{Reason: fmt.Sprintf("unsupported filter type %T", f)}
	}
}

// scopedClause 按作用域生成路径，响应作用域需要 nested 包装
func scopedClause(scope FilterScope, build func(path string) map[string]interface{}) (map[string]interface{}, error) {
	switch s := scope.(type) {
	case *ResponseScope:
		return map[string]interface{}{
			"nested": map[string]interface{}{
				"path":  "responses",
				"query": build("responses.values." + s.Question),
			},
		}, nil
	case *SuggestionScope:
		property := s.Property
		if property == "" {
			property = suggestionPropertyValue
		}
		return build("suggestions." + s.Question + "." + property), nil
	case *MetadataScope:
		return build("metadata." + s.Property), nil
	case *RecordScope:
		return build(s.Property), nil
	default:
		return nil, &InvalidFilterError{Reason: fmt.Sprintf("unsupported filter scope %T", scope)}
	}
}

// responseStatusClause 按用户响应状态过滤。
// missing 表示该用户在记录上没有任何响应条目；其余状态是嵌套状态字段的等值匹配。
func responseStatusClause(f *UserResponseStatusFilter) map[string]interface{} {
	username := ""
	if f.User != nil {
		username = f.User.Username
	}

	var wantMissing bool
	var concrete []interface{}
	seen := map[ResponseStatusFilter]bool{}
	for _, status := range f.Statuses {
		normalized := status.Normalize()
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		if normalized == StatusMissing {
			wantMissing = true
			continue
		}
		concrete = append(concrete, string(normalized))
	}

	userTerm := map[string]interface{}{
		"term": map[string]interface{}{
			"responses.user": map[string]interface{}{"value": username},
		},
	}

	missingClause := map[string]interface{}{
		"bool": map[string]interface{}{
			"must_not": []interface{}{
				map[string]interface{}{
					"nested": map[string]interface{}{
						"path":  "responses",
						"query": userTerm,
					},
				},
			},
		},
	}

	concreteClause := map[string]interface{}{
		"nested": map[string]interface{}{
			"path": "responses",
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []interface{}{
						userTerm,
						map[string]interface{}{
							"terms": map[string]interface{}{"responses.status": concrete},
						},
					},
				},
			},
		},
	}

	switch {
	case wantMissing && len(concrete) > 0:
		return map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               []interface{}{missingClause, concreteClause},
				"minimum_should_match": 1,
			},
		}
	case wantMissing:
		return missingClause
	default:
		return concreteClause
	}
}

func sortClause(order Order) map[string]interface{} {
	direction := string(order.Order)
	if direction == "" {
		direction = string(SortAsc)
	}
	path := sortScopeField(order.Scope)
	return map[string]interface{}{path: map[string]interface{}{"order": direction}}
}
