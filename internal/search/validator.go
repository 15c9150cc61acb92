package search

import (
	"fmt"

	"github.com/argilla-io/argilla-server/internal/model"
)

// Validate 校验查询并把作用域中的名称解析为数据集上的实体引用。
// 纯同步校验，不访问任何后端；对已解析的查询重复调用结果不变。
func Validate(q *Query, ds *model.Dataset) error {
	if q == nil {
		return nil
	}

	if q.Text != nil && q.Text.Field != "" {
		if ds.FieldByName(q.Text.Field) == nil {
			return &FieldNotFoundError{Name: q.Text.Field, DatasetID: ds.ID}
		}
	}

	if q.Filter != nil {
		if err := validateFilter(q.Filter, ds); err != nil {
			return err
		}
	}

	for i := range q.Sort {
		if err := resolveSortScope(&q.Sort[i], ds); err != nil {
			return err
		}
	}

	if q.ResponseStatus != nil {
		for _, status := range q.ResponseStatus.Statuses {
			if !status.Valid() {
				return &InvalidFilterError{Reason: fmt.Sprintf("invalid response status %q", status)}
			}
		}
	}

	if q.Vector != nil {
		settings := ds.VectorSettingsByName(q.Vector.Name)
		if settings == nil {
			return &VectorSettingsNotFoundError{Name: q.Vector.Name, DatasetID: ds.ID}
		}
		if len(q.Vector.Value) > 0 && len(q.Vector.Value) != settings.Dimensions {
			return &InvalidFilterError{Reason: fmt.Sprintf(
				"vector %q has %d dimensions, expected %d", q.Vector.Name, len(q.Vector.Value), settings.Dimensions)}
		}
		if len(q.Vector.Value) == 0 && q.Vector.RecordID == "" {
			return &InvalidFilterError{Reason: "vector query requires a value or a record reference"}
		}
		q.Vector.Entity = settings
	}

	return nil
}

func validateFilter(f Filter, ds *model.Dataset) error {
	switch filter := f.(type) {
	case *AndFilter:
		for _, inner := range filter.Filters {
			if err := validateFilter(inner, ds); err != nil {
				return err
			}
		}
	case *TermsFilter:
		if len(filter.Values) == 0 {
			return &InvalidFilterError{Reason: "terms filter requires at least one value"}
		}
		return resolveScope(filter.Scope, ds)
	case *RangeFilter:
		if filter.Ge == nil && filter.Le == nil {
			return &InvalidFilterError{Reason: "range filter requires at least one of ge or le"}
		}
		return resolveScope(filter.Scope, ds)
	default:
		return &InvalidFilterError{Reason: fmt.Sprintf("unsupported filter type %T", f)}
	}
	return nil
}

func resolveScope(scope FilterScope, ds *model.Dataset) error {
	switch s := scope.(type) {
	case *ResponseScope:
		question := ds.QuestionByName(s.Question)
		if question == nil {
			return &QuestionNotFoundError{Name: s.Question, DatasetID: ds.ID}
		}
		s.Entity = question
	case *SuggestionScope:
		question := ds.QuestionByName(s.Question)
		if question == nil {
			return &QuestionNotFoundError{Name: s.Question, DatasetID: ds.ID}
		}
		if s.Property == "" {
			s.Property = suggestionPropertyValue
		}
		switch s.Property {
		case "value", "score", "agent", "type":
		default:
			return &InvalidFilterError{Reason: fmt.Sprintf("invalid suggestion property %q", s.Property)}
		}
		s.Entity = question
	case *MetadataScope:
		property := ds.MetadataPropertyByName(s.Property)
		if property == nil {
			return &MetadataPropertyNotFoundError{Name: s.Property, DatasetID: ds.ID}
		}
		s.Entity = property
	case *RecordScope:
		switch s.Property {
		case "inserted_at", "updated_at", "status":
		default:
			return &InvalidFilterError{Reason: fmt.Sprintf("invalid record property %q", s.Property)}
		}
	default:
		return &InvalidFilterError{Reason: fmt.Sprintf("unsupported filter scope %T", scope)}
	}
	return nil
}

func resolveSortScope(order *Order, ds *model.Dataset) error {
	switch s := order.Scope.(type) {
	case *RecordScope:
		switch s.Property {
		case sortFieldInsertedAt, sortFieldUpdatedAt:
		default:
			return &InvalidSortFieldError{Field: s.Property}
		}
	case *MetadataScope:
		property := ds.MetadataPropertyByName(s.Property)
		if property == nil {
			return &MetadataPropertyNotFoundError{Name: s.Property, DatasetID: ds.ID}
		}
		s.Entity = property
	default:
		return &InvalidSortFieldError{Field: fmt.Sprintf("%v", order.Scope)}
	}

	switch order.Order {
	case SortAsc, SortDesc:
	case "":
		order.Order = SortAsc
	default:
		return &InvalidSortOrderError{Field: sortScopeField(order.Scope), Token: string(order.Order)}
	}
	return nil
}

func sortScopeField(scope FilterScope) string {
	switch s := scope.(type) {
	case *RecordScope:
		return s.Property
	case *MetadataScope:
		return sortMetadataPrefix + s.Property
	}
	return ""
}
