// Package search 查询翻译单元测试
package search

import (
	"reflect"
	"testing"

	"github.com/argilla-io/argilla-server/internal/model"
)

// ========== 基础翻译 ==========

func TestTranslate_EmptyQuery(t *testing.T) {
	body, err := Translate(nil)
	if err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}

	want := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
			map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
		},
	}
	if !reflect.DeepEqual(body, want) {
		t.Errorf("Translate() = %#v, want %#v", body, want)
	}
}

func TestTranslate_TextQuery(t *testing.T) {
	tests := []struct {
		name string
		text *TextQuery
		want map[string]interface{}
	}{
		{
			name: "all fields",
			text: &TextQuery{Q: "hello world"},
			want: map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":    "hello world",
					"type":     "cross_fields",
					"fields":   []interface{}{"fields.*"},
					"operator": "and",
				},
			},
		},
		{
			name: "single field",
			text: &TextQuery{Q: "hello", Field: "prompt"},
			want: map[string]interface{}{
				"match": map[string]interface{}{
					"fields.prompt": map[string]interface{}{
						"query":    "hello",
						"operator": "and",
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Translate(&Query{Text: tt.text})
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}

			boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
			must := boolQuery["must"].([]interface{})
			if len(must) != 1 {
				t.Fatalf("expected 1 must clause, got %d", len(must))
			}
			if !reflect.DeepEqual(must[0], tt.want) {
				t.Errorf("text clause = %#v, want %#v", must[0], tt.want)
			}
		})
	}
}

// ========== 过滤器 ==========

func TestTranslate_ResponseScopeTermsFilter(t *testing.T) {
	q := &Query{
		Filter: &AndFilter{Filters: []Filter{
			&TermsFilter{
				Scope:  &ResponseScope{Question: "quality"},
				Values: []string{"1", "2"},
			},
		}},
	}

	body, err := Translate(q)
	if err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}

	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	want := map[string]interface{}{
		"nested": map[string]interface{}{
			"path": "responses",
			"query": map[string]interface{}{
				"terms": map[string]interface{}{
					"responses.values.quality": []interface{}{"1", "2"},
				},
			},
		},
	}
	if !reflect.DeepEqual(filters[0], want) {
		t.Errorf("response terms clause = %#v, want %#v", filters[0], want)
	}
}

func TestTranslate_MetadataRangeFilter(t *testing.T) {
	ge := 10.0
	le := 100.0

	tests := []struct {
		name   string
		filter *RangeFilter
		want   map[string]interface{}
	}{
		{
			name:   "both bounds",
			filter: &RangeFilter{Scope: &MetadataScope{Property: "tokens"}, Ge: &ge, Le: &le},
			want: map[string]interface{}{
				"range": map[string]interface{}{
					"metadata.tokens": map[string]interface{}{"gte": 10.0, "lte": 100.0},
				},
			},
		},
		{
			name:   "lower bound only",
			filter: &RangeFilter{Scope: &MetadataScope{Property: "tokens"}, Ge: &ge},
			want: map[string]interface{}{
				"range": map[string]interface{}{
					"metadata.tokens": map[string]interface{}{"gte": 10.0},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Translate(&Query{Filter: &AndFilter{Filters: []Filter{tt.filter}}})
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}
			filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
			if !reflect.DeepEqual(filters[0], tt.want) {
				t.Errorf("range clause = %#v, want %#v", filters[0], tt.want)
			}
		})
	}
}

func TestTranslate_SuggestionScopeDefaultsToValue(t *testing.T) {
	q := &Query{
		Filter: &AndFilter{Filters: []Filter{
			&TermsFilter{
				Scope:  &SuggestionScope{Question: "category", Property: "agent"},
				Values: []string{"gpt"},
			},
		}},
	}

	body, err := Translate(q)
	if err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}

	filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	want := map[string]interface{}{
		"terms": map[string]interface{}{
			"suggestions.category.agent": []interface{}{"gpt"},
		},
	}
	if !reflect.DeepEqual(filters[0], want) {
		t.Errorf("suggestion clause = %#v, want %#v", filters[0], want)
	}
}

// ========== 响应状态过滤 ==========

func userTermClause(username string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{
			"responses.user": map[string]interface{}{"value": username},
		},
	}
}

func missingStatusClause(username string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must_not": []interface{}{
				map[string]interface{}{
					"nested": map[string]interface{}{
						"path":  "responses",
						"query": userTermClause(username),
					},
				},
			},
		},
	}
}

func concreteStatusClause(username string, statuses ...interface{}) map[string]interface{} {
	return map[string]interface{}{
		"nested": map[string]interface{}{
			"path": "responses",
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []interface{}{
						userTermClause(username),
						map[string]interface{}{
							"terms": map[string]interface{}{"responses.status": statuses},
						},
					},
				},
			},
		},
	}
}

func TestTranslate_ResponseStatusFilter(t *testing.T) {
	user := &model.User{ID: "u1", Username: "alice"}

	tests := []struct {
		name     string
		statuses []ResponseStatusFilter
		want     map[string]interface{}
	}{
		{
			name:     "missing only",
			statuses: []ResponseStatusFilter{StatusMissing},
			want:     missingStatusClause("alice"),
		},
		{
			name:     "pending normalizes to missing",
			statuses: []ResponseStatusFilter{StatusPending},
			want:     missingStatusClause("alice"),
		},
		{
			name:     "concrete statuses",
			statuses: []ResponseStatusFilter{StatusDraft, StatusSubmitted},
			want:     concreteStatusClause("alice", "draft", "submitted"),
		},
		{
			name:     "missing and concrete mixed",
			statuses: []ResponseStatusFilter{StatusMissing, StatusDiscarded},
			want: map[string]interface{}{
				"bool": map[string]interface{}{
					"should": []interface{}{
						missingStatusClause("alice"),
						concreteStatusClause("alice", "discarded"),
					},
					"minimum_should_match": 1,
				},
			},
		},
		{
			name:     "missing and pending collapse into one",
			statuses: []ResponseStatusFilter{StatusMissing, StatusPending},
			want:     missingStatusClause("alice"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Query{ResponseStatus: &UserResponseStatusFilter{User: user, Statuses: tt.statuses}}
			body, err := Translate(q)
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}
			filters := body["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
			if len(filters) != 1 {
				t.Fatalf("expected 1 filter clause, got %d", len(filters))
			}
			if !reflect.DeepEqual(filters[0], tt.want) {
				t.Errorf("status clause = %#v, want %#v", filters[0], tt.want)
			}
		})
	}
}

// ========== 排序 ==========

func TestTranslate_SortAlwaysEndsWithIDAsc(t *testing.T) {
	tests := []struct {
		name string
		sort []Order
		want []interface{}
	}{
		{
			name: "no sort defaults to score",
			sort: nil,
			want: []interface{}{
				map[string]interface{}{"_score": map[string]interface{}{"order": "desc"}},
				map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
			},
		},
		{
			name: "record field sort",
			sort: []Order{{Scope: &RecordScope{Property: "inserted_at"}, Order: SortDesc}},
			want: []interface{}{
				map[string]interface{}{"inserted_at": map[string]interface{}{"order": "desc"}},
				map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
			},
		},
		{
			name: "metadata sort",
			sort: []Order{
				{Scope: &MetadataScope{Property: "tokens"}, Order: SortAsc},
				{Scope: &RecordScope{Property: "updated_at"}, Order: SortDesc},
			},
			want: []interface{}{
				map[string]interface{}{"metadata.tokens": map[string]interface{}{"order": "asc"}},
				map[string]interface{}{"updated_at": map[string]interface{}{"order": "desc"}},
				map[string]interface{}{"id": map[string]interface{}{"order": "asc"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Translate(&Query{Sort: tt.sort})
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(body["sort"], tt.want) {
				t.Errorf("sort = %#v, want %#v", body["sort"], tt.want)
			}
		})
	}
}

// ========== 相似检索 ==========

func TestTranslateSimilarity(t *testing.T) {
	vector := []float64{0.1, 0.2, 0.3, 0.4}

	tests := []struct {
		name       string
		order      SimilarityOrder
		wantScript string
	}{
		{
			name:       "most similar",
			order:      MostSimilar,
			wantScript: "cosineSimilarity(params.query_vector, 'vectors.embedding') + 1.0",
		},
		{
			name:       "least similar",
			order:      LeastSimilar,
			wantScript: "2.0 - cosineSimilarity(params.query_vector, 'vectors.embedding')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Query{Vector: &VectorQuery{Name: "embedding", Order: tt.order}}
			body, err := TranslateSimilarity(q, vector)
			if err != nil {
				t.Fatalf("TranslateSimilarity() unexpected error: %v", err)
			}

			scriptScore := body["query"].(map[string]interface{})["script_score"].(map[string]interface{})
			script := scriptScore["script"].(map[string]interface{})
			if script["source"] != tt.wantScript {
				t.Errorf("script = %q, want %q", script["source"], tt.wantScript)
			}

			params := script["params"].(map[string]interface{})
			if !reflect.DeepEqual(params["query_vector"], vector) {
				t.Errorf("query_vector = %v, want %v", params["query_vector"], vector)
			}

			// 内层查询仍是 match_all
			inner := scriptScore["query"].(map[string]interface{})
			if _, ok := inner["match_all"]; !ok {
				t.Errorf("inner query = %#v, want match_all", inner)
			}
		})
	}
}

func TestTranslateSimilarity_NoVectorQuery(t *testing.T) {
	if _, err := TranslateSimilarity(&Query{}, []float64{0.1}); err == nil {
		t.Error("TranslateSimilarity() expected error for query without vector")
	}
}
