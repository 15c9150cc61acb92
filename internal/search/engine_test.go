package search

import (
	"reflect"
	"testing"

	"github.com/argilla-io/argilla-server/internal/model"
)

func engineDataset() *model.Dataset {
	return &model.Dataset{
		ID: "ds-1",
		Fields: []model.Field{
			{Name: "prompt", Settings: model.FieldSettings{Type: model.FieldText}},
		},
		Questions: []model.Question{
			{ID: "q-1", Name: "quality", Settings: model.QuestionSettings{Type: model.QuestionRating}},
			{ID: "q-2", Name: "category", Settings: model.QuestionSettings{Type: model.QuestionLabelSelection}},
		},
		MetadataProperties: []model.MetadataProperty{
			{Name: "tokens", Settings: model.MetadataPropertySettings{Type: model.MetadataInteger}},
			{Name: "source", Settings: model.MetadataPropertySettings{Type: model.MetadataTerms}},
		},
		VectorSettings: []model.VectorSettings{
			{ID: "vs-1", Name: "embedding", Dimensions: 4},
		},
	}
}

// ========== 索引名与 mapping ==========

func TestIndexName(t *testing.T) {
	if got := IndexName("rg", "ds-1"); got != "rg.ds-1" {
		t.Errorf("IndexName() = %q, want %q", got, "rg.ds-1")
	}
}

func TestBuildIndexMapping(t *testing.T) {
	mapping := BuildIndexMapping(engineDataset())

	mappings := mapping["mappings"].(map[string]interface{})
	if mappings["dynamic"] != "strict" {
		t.Errorf("dynamic = %v, want strict", mappings["dynamic"])
	}
	props := mappings["properties"].(map[string]interface{})

	metadata := props["metadata"].(map[string]interface{})["properties"].(map[string]interface{})
	if got := metadata["tokens"].(map[string]interface{})["type"]; got != "long" {
		t.Errorf("integer metadata mapped to %v, want long", got)
	}
	if got := metadata["source"].(map[string]interface{})["type"]; got != "keyword" {
		t.Errorf("terms metadata mapped to %v, want keyword", got)
	}

	responses := props["responses"].(map[string]interface{})
	if responses["type"] != "nested" {
		t.Errorf("responses type = %v, want nested", responses["type"])
	}
	values := responses["properties"].(map[string]interface{})["values"].(map[string]interface{})["properties"].(map[string]interface{})
	if got := values["quality"].(map[string]interface{})["type"]; got != "long" {
		t.Errorf("rating response value mapped to %v, want long", got)
	}

	vectors := props["vectors"].(map[string]interface{})["properties"].(map[string]interface{})
	embedding := vectors["embedding"].(map[string]interface{})
	if embedding["type"] != "dense_vector" || embedding["dims"] != 4 || embedding["similarity"] != "cosine" {
		t.Errorf("vector mapping = %#v", embedding)
	}
}

// ========== 文档构建 ==========

func TestBuildRecordDocument_ResponsesKeyedByUsername(t *testing.T) {
	ds := engineDataset()
	record := &model.Record{
		ID:     "r-1",
		Status: model.RecordCompleted,
		Fields: model.JSONMap{"prompt": "hello"},
		Responses: []model.Response{
			{UserID: "u-1", Status: model.ResponseSubmitted, Values: model.JSONMap{"quality": 5}},
			{UserID: "u-unknown", Status: model.ResponseDraft, Values: model.JSONMap{}},
		},
	}

	doc := BuildRecordDocument(ds, record, map[string]string{"u-1": "alice"})

	responses := doc["responses"].([]interface{})
	if len(responses) != 2 {
		t.Fatalf("got %d response entries, want 2", len(responses))
	}
	first := responses[0].(map[string]interface{})
	if first["user"] != "alice" {
		t.Errorf("entry user = %v, want alice", first["user"])
	}
	if first["status"] != "submitted" {
		t.Errorf("entry status = %v, want submitted", first["status"])
	}
	// 映射里查不到的用户退回 user_id
	second := responses[1].(map[string]interface{})
	if second["user"] != "u-unknown" {
		t.Errorf("fallback user = %v, want u-unknown", second["user"])
	}
}

func TestBuildRecordDocument_NoResponses(t *testing.T) {
	ds := engineDataset()
	record := &model.Record{ID: "r-1", Status: model.RecordPending, Fields: model.JSONMap{"prompt": "hi"}}

	doc := BuildRecordDocument(ds, record, nil)

	if doc["status"] != "pending" {
		t.Errorf("status = %v, want pending", doc["status"])
	}
	// 响应字段始终存在，空时是空数组，增量脚本才有操作目标
	responses, ok := doc["responses"].([]interface{})
	if !ok || len(responses) != 0 {
		t.Errorf("responses = %#v, want empty array", doc["responses"])
	}
	if _, ok := doc["metadata"]; ok {
		t.Error("empty metadata should be omitted")
	}
}

func TestBuildRecordDocument_SuggestionsAndVectors(t *testing.T) {
	ds := engineDataset()
	score := 0.9
	record := &model.Record{
		ID:     "r-1",
		Fields: model.JSONMap{"prompt": "hello"},
		Suggestions: []model.Suggestion{
			{
				QuestionID: "q-2",
				Value:      model.SuggestionValue{V: "good"},
				Score:      &score,
				Agent:      "gpt-4",
				Type:       model.SuggestionModel,
			},
			// 未知问题的建议被跳过
			{QuestionID: "q-gone", Value: model.SuggestionValue{V: "x"}},
		},
		Vectors: []model.Vector{
			{VectorSettingsID: "vs-1", Value: model.VectorValue{0.1, 0.2, 0.3, 0.4}},
			{VectorSettingsID: "vs-gone", Value: model.VectorValue{1}},
		},
	}

	doc := BuildRecordDocument(ds, record, nil)

	suggestions := doc["suggestions"].(map[string]interface{})
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestion entries, want 1", len(suggestions))
	}
	entry := suggestions["category"].(map[string]interface{})
	want := map[string]interface{}{"value": "good", "agent": "gpt-4", "type": "model", "score": 0.9}
	if !reflect.DeepEqual(entry, want) {
		t.Errorf("suggestion entry = %#v, want %#v", entry, want)
	}

	vectors := doc["vectors"].(map[string]interface{})
	if len(vectors) != 1 {
		t.Fatalf("got %d vector entries, want 1", len(vectors))
	}
	if !reflect.DeepEqual(vectors["embedding"], []float64{0.1, 0.2, 0.3, 0.4}) {
		t.Errorf("vector value = %v", vectors["embedding"])
	}
}
