package search

import (
	"strings"

	"github.com/argilla-io/argilla-server/internal/model"
)

// TextQuery 全文查询，Field 为空时匹配全部字段
type TextQuery struct {
	Q     string `json:"q"`
	Field string `json:"field,omitempty"`
}

// SortOrder 排序方向
type SortOrder string

const (
	// SortAsc 升序
	SortAsc SortOrder = "asc"
	// SortDesc 降序
	SortDesc SortOrder = "desc"
)

// ResponseStatusFilter 响应状态过滤值。
// missing 与 pending 是同一个含义：该用户在这条记录上没有任何响应。
// pending 是历史遗留别名，解析时统一归一化为 missing；两者是否应长期
// 并存待产品确认。
type ResponseStatusFilter string

const (
	// StatusMissing 用户没有响应
	StatusMissing ResponseStatusFilter = "missing"
	// StatusPending missing 的别名
	StatusPending ResponseStatusFilter = "pending"
	// StatusDraft 用户有草稿响应
	StatusDraft ResponseStatusFilter = "draft"
	// StatusSubmitted 用户有已提交响应
	StatusSubmitted ResponseStatusFilter = "submitted"
	// StatusDiscarded 用户有已丢弃响应
	StatusDiscarded ResponseStatusFilter = "discarded"
)

// Normalize 把别名归一化为规范值
func (s ResponseStatusFilter) Normalize() ResponseStatusFilter {
	if s == StatusPending {
		return StatusMissing
	}
	return s
}

// Valid 校验取值
func (s ResponseStatusFilter) Valid() bool {
	switch s {
	case StatusMissing, StatusPending, StatusDraft, StatusSubmitted, StatusDiscarded:
		return true
	}
	return false
}

// FilterScope 过滤/排序作用域：引用响应、建议或元数据的某个名字。
// 名称在 Validator 中解析为实体引用，之后 Entity 字段非空。
type FilterScope interface {
	isFilterScope()
}

// ResponseScope 按问题名过滤响应值
type ResponseScope struct {
	Question string
	Entity   *model.Question
}

func (*ResponseScope) isFilterScope() {}

// SuggestionScope 按问题名过滤建议，Property 可为 value/score/agent/type，默认 value
type SuggestionScope struct {
	Question string
	Property string
	Entity   *model.Question
}

func (*SuggestionScope) isFilterScope() {}

// MetadataScope 按元数据属性名过滤
type MetadataScope struct {
	Property string
	Entity   *model.MetadataProperty
}

func (*MetadataScope) isFilterScope() {}

// RecordScope 按记录自身属性过滤/排序：inserted_at、updated_at、status
type RecordScope struct {
	Property string
}

func (*RecordScope) isFilterScope() {}

// Filter 过滤器，顶层多个过滤器为 AND 语义
type Filter interface {
	isFilter()
}

// TermsFilter 集合成员过滤
type TermsFilter struct {
	Scope  FilterScope
	Values []string
}

func (*TermsFilter) isFilter() {}

// RangeFilter 数值区间过滤，Ge/Le 各自可选但至少要有一个。
// 不校验 Ge <= Le，Ge == Le 表示精确匹配。
type RangeFilter struct {
	Scope FilterScope
	Ge    *float64
	Le    *float64
}

func (*RangeFilter) isFilter() {}

// AndFilter 合取过滤器
type AndFilter struct {
	Filters []Filter
}

func (*AndFilter) isFilter() {}

// Order 排序项。作用域只允许 RecordScope(inserted_at/updated_at) 和 MetadataScope
type Order struct {
	Scope FilterScope
	Order SortOrder
}

// UserResponseStatusFilter 按某用户的响应状态过滤记录
type UserResponseStatusFilter struct {
	User     *model.User
	Statuses []ResponseStatusFilter
}

// SimilarityOrder 相似检索方向
type SimilarityOrder string

const (
	// MostSimilar 最相似优先
	MostSimilar SimilarityOrder = "most_similar"
	// LeastSimilar 最不相似优先
	LeastSimilar SimilarityOrder = "least_similar"
)

// VectorQuery 向量相似检索：给定向量值，或引用某条记录的已有向量
type VectorQuery struct {
	Name     string
	Value    []float64
	RecordID string
	Order    SimilarityOrder
	Entity   *model.VectorSettings
}

// Query 后端无关的检索请求
type Query struct {
	Text           *TextQuery
	Filter         *AndFilter
	Sort           []Order
	ResponseStatus *UserResponseStatusFilter
	Vector         *VectorQuery
}

// 排序字段的三种允许形式
const (
	sortFieldInsertedAt     = "inserted_at"
	sortFieldUpdatedAt      = "updated_at"
	sortMetadataPrefix      = "metadata."
	suggestionPropertyValue = "value"
)

// ParseSort 把 wire 形式的排序字段解析为 Order。
// 允许的形式：inserted_at、updated_at、metadata.<name>。
func ParseSort(field, order string) (Order, error) {
	var sortOrder SortOrder
	switch order {
	case "", string(SortAsc):
		sortOrder = SortAsc
	case string(SortDesc):
		sortOrder = SortDesc
	default:
		return Order{}, &InvalidSortOrderError{Field: field, Token: order}
	}

	switch {
	case field == sortFieldInsertedAt, field == sortFieldUpdatedAt:
		return Order{Scope: &RecordScope{Property: field}, Order: sortOrder}, nil
	case strings.HasPrefix(field, sortMetadataPrefix) && len(field) > len(sortMetadataPrefix):
		name := strings.TrimPrefix(field, sortMetadataPrefix)
		return Order{Scope: &MetadataScope{Property: name}, Order: sortOrder}, nil
	default:
		return Order{}, &InvalidSortFieldError{Field: field}
	}
}
