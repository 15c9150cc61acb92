package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/argilla-io/argilla-server/internal/search"
	"github.com/argilla-io/argilla-server/internal/service/policy"
)

// ========== API 响应格式 ==========

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success 成功响应 (200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 创建成功响应 (201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 无内容响应 (204)
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest 400 错误响应
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: msg})
}

// Unauthorized 401 错误响应
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "unauthorized", Message: msg})
}

// Forbidden 403 错误响应
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, ErrorResponse{Code: "forbidden", Message: msg})
}

// NotFound 404 错误响应
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Code: "not_found", Message: msg})
}

// UnprocessableEntity 422 错误响应，Code 来自校验错误本身
func UnprocessableEntity(c *gin.Context, code, msg string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Code: code, Message: msg})
}

// InternalServerError 500 错误响应
func InternalServerError(c *gin.Context, msg string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Code: "internal_server_error", Message: msg})
}

// Error 根据错误类型返回相应的错误响应。
// 查询校验错误映射为 422 并透传错误码，找不到实体映射为 404。
func Error(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var validation search.ValidationError
	switch {
	case errors.As(err, &validation):
		UnprocessableEntity(c, validation.Code(), validation.Error())
	case errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, policy.ErrForbidden):
		Forbidden(c, err.Error())
	default:
		InternalServerError(c, err.Error())
	}
}

// PaginationData 分页响应数据结构
type PaginationData struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
}

// SuccessWithPagination 分页成功响应
func SuccessWithPagination(c *gin.Context, items interface{}, total int64) {
	c.JSON(http.StatusOK, PaginationData{Items: items, Total: total})
}
