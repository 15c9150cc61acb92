package search

import (
	"errors"
	"fmt"
	"testing"

	"github.com/argilla-io/argilla-server/internal/model"
)

func validatorDataset() *model.Dataset {
	return &model.Dataset{
		ID: "ds-1",
		Fields: []model.Field{
			{Name: "prompt", Settings: model.FieldSettings{Type: model.FieldText}},
		},
		Questions: []model.Question{
			{Name: "quality", Settings: model.QuestionSettings{Type: model.QuestionRating}},
			{Name: "category", Settings: model.QuestionSettings{Type: model.QuestionLabelSelection}},
		},
		MetadataProperties: []model.MetadataProperty{
			{Name: "tokens", Settings: model.MetadataPropertySettings{Type: model.MetadataInteger}},
		},
		VectorSettings: []model.VectorSettings{
			{ID: "vs-1", Name: "embedding", Dimensions: 4},
		},
	}
}

// ========== 名称解析 ==========

func TestValidate_ResolvesScopeEntities(t *testing.T) {
	ds := validatorDataset()
	scope := &ResponseScope{Question: "quality"}
	q := &Query{
		Filter: &AndFilter{Filters: []Filter{
			&TermsFilter{Scope: scope, Values: []string{"1"}},
		}},
	}

	if err := Validate(q, ds); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if scope.Entity == nil || scope.Entity.Name != "quality" {
		t.Errorf("response scope entity not resolved: %+v", scope.Entity)
	}

	// 已解析的查询重复校验结果不变
	if err := Validate(q, ds); err != nil {
		t.Fatalf("Validate() second call unexpected error: %v", err)
	}
	if scope.Entity == nil || scope.Entity.Name != "quality" {
		t.Errorf("entity lost after second validation: %+v", scope.Entity)
	}
}

func TestValidate_UnknownNames(t *testing.T) {
	ds := validatorDataset()

	tests := []struct {
		name    string
		query   *Query
		wantMsg string
	}{
		{
			name:    "unknown text field",
			query:   &Query{Text: &TextQuery{Q: "x", Field: "nope"}},
			wantMsg: "Field not found querying by name=nope, dataset_id=ds-1",
		},
		{
			name: "unknown question",
			query: &Query{Filter: &AndFilter{Filters: []Filter{
				&TermsFilter{Scope: &ResponseScope{Question: "nope"}, Values: []string{"1"}},
			}}},
			wantMsg: "Question not found filtering by name=nope, dataset_id=ds-1",
		},
		{
			name: "unknown metadata property",
			query: &Query{Filter: &AndFilter{Filters: []Filter{
				&TermsFilter{Scope: &MetadataScope{Property: "nope"}, Values: []string{"1"}},
			}}},
			wantMsg: "Metadata property not found filtering by name=nope, dataset_id=ds-1",
		},
		{
			name:    "unknown vector settings",
			query:   &Query{Vector: &VectorQuery{Name: "nope", Value: []float64{0.1}}},
			wantMsg: "Vector settings not found by name=nope, dataset_id=ds-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query, ds)
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantMsg)
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("error %T does not implement ValidationError", err)
			}
		})
	}
}

// ========== 过滤器本身 ==========

func TestValidate_FilterShape(t *testing.T) {
	ds := validatorDataset()
	ge := 1.0
	le := 10.0

	tests := []struct {
		name    string
		filter  Filter
		wantErr bool
	}{
		{
			name:    "terms empty values",
			filter:  &TermsFilter{Scope: &MetadataScope{Property: "tokens"}},
			wantErr: true,
		},
		{
			name:    "range no bounds",
			filter:  &RangeFilter{Scope: &MetadataScope{Property: "tokens"}},
			wantErr: true,
		},
		{
			name:   "range one bound",
			filter: &RangeFilter{Scope: &MetadataScope{Property: "tokens"}, Ge: &ge},
		},
		{
			// ge > le 不在校验范围内，空结果由执行决定
			name:   "range inverted bounds allowed",
			filter: &RangeFilter{Scope: &MetadataScope{Property: "tokens"}, Ge: &le, Le: &ge},
		},
		{
			name:   "record scope status",
			filter: &TermsFilter{Scope: &RecordScope{Property: "status"}, Values: []string{"completed"}},
		},
		{
			name:    "record scope unknown property",
			filter:  &TermsFilter{Scope: &RecordScope{Property: "external_id"}, Values: []string{"x"}},
			wantErr: true,
		},
		{
			name:   "suggestion scope score property",
			filter: &RangeFilter{Scope: &SuggestionScope{Question: "quality", Property: "score"}, Ge: &ge},
		},
		{
			name:    "suggestion scope invalid property",
			filter:  &TermsFilter{Scope: &SuggestionScope{Question: "quality", Property: "rank"}, Values: []string{"1"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Query{Filter: &AndFilter{Filters: []Filter{tt.filter}}}
			err := Validate(q, ds)
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestValidate_SuggestionPropertyDefaultsToValue(t *testing.T) {
	ds := validatorDataset()
	scope := &SuggestionScope{Question: "category"}
	q := &Query{Filter: &AndFilter{Filters: []Filter{
		&TermsFilter{Scope: scope, Values: []string{"good"}},
	}}}

	if err := Validate(q, ds); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}
	if scope.Property != "value" {
		t.Errorf("suggestion property = %q, want %q", scope.Property, "value")
	}
}

// ========== 排序与响应状态 ==========

func TestValidate_Sort(t *testing.T) {
	ds := validatorDataset()

	tests := []struct {
		name    string
		order   Order
		wantErr bool
	}{
		{name: "inserted_at", order: Order{Scope: &RecordScope{Property: "inserted_at"}, Order: SortDesc}},
		{name: "metadata property", order: Order{Scope: &MetadataScope{Property: "tokens"}, Order: SortAsc}},
		{name: "empty order defaults to asc", order: Order{Scope: &RecordScope{Property: "updated_at"}}},
		{name: "status not sortable", order: Order{Scope: &RecordScope{Property: "status"}}, wantErr: true},
		{name: "unknown metadata property", order: Order{Scope: &MetadataScope{Property: "nope"}}, wantErr: true},
		{name: "bad order token", order: Order{Scope: &RecordScope{Property: "inserted_at"}, Order: "descending"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Query{Sort: []Order{tt.order}}
			err := Validate(q, ds)
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
			if !tt.wantErr && err == nil && q.Sort[0].Order == "" {
				t.Error("empty order not normalized to asc")
			}
		})
	}
}

func TestValidate_ResponseStatus(t *testing.T) {
	ds := validatorDataset()
	user := &model.User{ID: "u1", Username: "alice"}

	q := &Query{ResponseStatus: &UserResponseStatusFilter{
		User:     user,
		Statuses: []ResponseStatusFilter{StatusMissing, StatusSubmitted},
	}}
	if err := Validate(q, ds); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	q = &Query{ResponseStatus: &UserResponseStatusFilter{
		User:     user,
		Statuses: []ResponseStatusFilter{"archived"},
	}}
	err := Validate(q, ds)
	if err == nil {
		t.Fatal("Validate() expected error for invalid status")
	}
	want := fmt.Sprintf("invalid response status %q", "archived")
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

// ========== 向量校验 ==========

func TestValidate_Vector(t *testing.T) {
	ds := validatorDataset()

	tests := []struct {
		name    string
		vector  *VectorQuery
		wantErr string
	}{
		{
			name:   "value with matching dimensions",
			vector: &VectorQuery{Name: "embedding", Value: []float64{0.1, 0.2, 0.3, 0.4}},
		},
		{
			name:   "record reference without value",
			vector: &VectorQuery{Name: "embedding", RecordID: "r1"},
		},
		{
			name:    "dimension mismatch",
			vector:  &VectorQuery{Name: "embedding", Value: []float64{0.1, 0.2}},
			wantErr: `vector "embedding" has 2 dimensions, expected 4`,
		},
		{
			name:    "neither value nor record",
			vector:  &VectorQuery{Name: "embedding"},
			wantErr: "vector query requires a value or a record reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Query{Vector: tt.vector}
			err := Validate(q, ds)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				if tt.vector.Entity == nil || tt.vector.Entity.Name != "embedding" {
					t.Errorf("vector entity not resolved: %+v", tt.vector.Entity)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() expected error, got nil")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
			}
		})
	}
}
