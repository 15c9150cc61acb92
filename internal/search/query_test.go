package search

import (
	"testing"
)

// ========== 排序解析 ==========

func TestParseSort(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		order     string
		wantScope FilterScope
		wantOrder SortOrder
		wantErr   string
	}{
		{
			name:      "inserted_at desc",
			field:     "inserted_at",
			order:     "desc",
			wantScope: &RecordScope{Property: "inserted_at"},
			wantOrder: SortDesc,
		},
		{
			name:      "updated_at asc",
			field:     "updated_at",
			order:     "asc",
			wantScope: &RecordScope{Property: "updated_at"},
			wantOrder: SortAsc,
		},
		{
			name:      "empty order defaults to asc",
			field:     "inserted_at",
			order:     "",
			wantScope: &RecordScope{Property: "inserted_at"},
			wantOrder: SortAsc,
		},
		{
			name:      "metadata property",
			field:     "metadata.tokens",
			order:     "desc",
			wantScope: &MetadataScope{Property: "tokens"},
			wantOrder: SortDesc,
		},
		{
			name:    "unknown field",
			field:   "external_id",
			order:   "asc",
			wantErr: `"external_id" is not a valid sort field, it must be one of: inserted_at, updated_at, metadata.<metadata-property-name>`,
		},
		{
			name:    "bare metadata prefix",
			field:   "metadata.",
			order:   "asc",
			wantErr: `"metadata." is not a valid sort field, it must be one of: inserted_at, updated_at, metadata.<metadata-property-name>`,
		},
		{
			name:    "bad order token",
			field:   "inserted_at",
			order:   "descending",
			wantErr: `invalid sort order "descending" for field "inserted_at", it must be asc or desc`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSort(tt.field, tt.order)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatal("ParseSort() expected error, got nil")
				}
				if err.Error() != tt.wantErr {
					t.Errorf("error = %q, want %q", err.Error(), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSort() unexpected error: %v", err)
			}
			if got.Order != tt.wantOrder {
				t.Errorf("order = %q, want %q", got.Order, tt.wantOrder)
			}
			switch want := tt.wantScope.(type) {
			case *RecordScope:
				scope, ok := got.Scope.(*RecordScope)
				if !ok || scope.Property != want.Property {
					t.Errorf("scope = %#v, want %#v", got.Scope, want)
				}
			case *MetadataScope:
				scope, ok := got.Scope.(*MetadataScope)
				if !ok || scope.Property != want.Property {
					t.Errorf("scope = %#v, want %#v", got.Scope, want)
				}
			}
		})
	}
}

// ========== 状态归一化 ==========

func TestResponseStatusFilter_Normalize(t *testing.T) {
	if got := StatusPending.Normalize(); got != StatusMissing {
		t.Errorf("pending normalized to %q, want %q", got, StatusMissing)
	}
	for _, s := range []ResponseStatusFilter{StatusMissing, StatusDraft, StatusSubmitted, StatusDiscarded} {
		if got := s.Normalize(); got != s {
			t.Errorf("%q normalized to %q, want unchanged", s, got)
		}
	}
}

func TestResponseStatusFilter_Valid(t *testing.T) {
	for _, s := range []ResponseStatusFilter{StatusMissing, StatusPending, StatusDraft, StatusSubmitted, StatusDiscarded} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if ResponseStatusFilter("archived").Valid() {
		t.Error(`"archived" should not be valid`)
	}
}
