// Package search 定义后端无关的查询模型，并负责把它翻译成搜索引擎的原生请求
package search

import "fmt"

// ValidationError 查询校验错误，handler 层映射为 422
type ValidationError interface {
	error
	// Code 错误码，写入 422 响应体
	Code() string
}

// QuestionNotFoundError 过滤或排序引用了数据集上不存在的问题
type QuestionNotFoundError struct {
	Name      string
	DatasetID string
}

// Error 实现 error 接口
func (e *QuestionNotFoundError) Error() string {
	return fmt.Sprintf("Question not found filtering by name=%s, dataset_id=%s", e.Name, e.DatasetID)
}

// Code 实现 ValidationError 接口
func (e *QuestionNotFoundError) Code() string { return "validation_error" }

// MetadataPropertyNotFoundError 过滤或排序引用了数据集上不存在的元数据属性
type MetadataPropertyNotFoundError struct {
	Name      string
	DatasetID string
}

// Error 实现 error 接口
func (e *MetadataPropertyNotFoundError) Error() string {
	return fmt.Sprintf("Metadata property not found filtering by name=%s, dataset_id=%s", e.Name, e.DatasetID)
}

// Code 实现 ValidationError 接口
func (e *MetadataPropertyNotFoundError) Code() string { return "validation_error" }

// FieldNotFoundError 文本查询指定了数据集上不存在的字段
type FieldNotFoundError struct {
	Name      string
	DatasetID string
}

// Error 实现 error 接口
func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("Field not found querying by name=%s, dataset_id=%s", e.Name, e.DatasetID)
}

// Code 实现 ValidationError 接口
func (e *FieldNotFoundError) Code() string { return "validation_error" }

// InvalidSortFieldError 排序字段不在允许的三种形式内
type InvalidSortFieldError struct {
	Field string
}

// Error 实现 error 接口
func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("%q is not a valid sort field, it must be one of: inserted_at, updated_at, metadata.<metadata-property-name>", e.Field)
}

// Code 实现 ValidationError 接口
func (e *InvalidSortFieldError) Code() string { return "validation_error" }

// InvalidSortOrderError 排序方向不是 asc/desc
type InvalidSortOrderError struct {
	Field string
	Token string
}

// Error 实现 error 接口
func (e *InvalidSortOrderError) Error() string {
	return fmt.Sprintf("invalid sort order %q for field %q, it must be asc or desc", e.Token, e.Field)
}

// Code 实现 ValidationError 接口
func (e *InvalidSortOrderError) Code() string { return "validation_error" }

// MissingVectorError 相似检索引用的记录缺少指定向量
type MissingVectorError struct {
	RecordID   string
	VectorName string
}

// Error 实现 error 接口
func (e *MissingVectorError) Error() string {
	return fmt.Sprintf("record %s does not have a vector named %q", e.RecordID, e.VectorName)
}

// Code 实现 ValidationError 接口
func (e *MissingVectorError) Code() string { return "missing_vector" }

// VectorSettingsNotFoundError 相似检索引用了不存在的向量配置
type VectorSettingsNotFoundError struct {
	Name      string
	DatasetID string
}

// Error 实现 error 接口
func (e *VectorSettingsNotFoundError) Error() string {
	return fmt.Sprintf("Vector settings not found by name=%s, dataset_id=%s", e.Name, e.DatasetID)
}

// Code 实现 ValidationError 接口
func (e *VectorSettingsNotFoundError) Code() string { return "validation_error" }

// InvalidFilterError 过滤器本身不合法（例如区间两端都为空）
type InvalidFilterError struct {
	Reason string
}

// Error 实现 error 接口
func (e *InvalidFilterError) Error() string {
	return e.Reason
}

// Code 实现 ValidationError 接口
func (e *InvalidFilterError) Code() string { return "validation_error" }
