package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

const (
	errorTypeValidation        = "validation_error"
	errorTypeRequestValidation = "request_validation_error"
	errorTypeDuplicate         = "duplicate_error"
	errorTypeNotFound          = "not_found"
	errorTypeConflict          = "conflict"
	errorTypeServer            = "server_error"
)

type errorResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	ErrorType    string    `json:"error_type"`
	Field        string    `json:"field,omitempty"`
	Value        string    `json:"value,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	Identifier   string    `json:"identifier,omitempty"`
	RequestID    string    `json:"request_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// bindError はリクエストボディの形式不備を表します。
type bindError struct {
	err error
}

func (e *bindError) Error() string {
	return e.err.Error()
}

func (e *bindError) Unwrap() error {
	return e.err
}

// respondError はドメインエラーを HTTP ステータスとエラーエンベロープに変換します。
// 分類できないエラーは詳細を隠して 500 を返し、ログにのみ内容を残します。
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	resp := errorResponse{Timestamp: time.Now().UTC()}
	status := http.StatusInternalServerError

	var (
		validationErr *apperr.ValidationError
		duplicateErr  *apperr.DuplicateError
		notFoundErr   *apperr.NotFoundError
		bindErr       *bindError
	)

	switch {
	case errors.As(err, &bindErr):
		status = http.StatusUnprocessableEntity
		resp.ErrorType = errorTypeRequestValidation
		resp.Message = "Validation error: " + bindErr.Error()
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp.ErrorType = errorTypeValidation
		resp.Message = validationErr.Error()
		resp.Field = validationErr.Field
		resp.Value = validationErr.Value
	case errors.As(err, &duplicateErr):
		status = http.StatusBadRequest
		resp.ErrorType = errorTypeDuplicate
		resp.Message = duplicateErr.Error()
		resp.Field = duplicateErr.Field
		resp.Value = duplicateErr.Value
		resp.ResourceType = duplicateErr.Resource
	case errors.As(err, &notFoundErr):
		status = http.StatusNotFound
		resp.ErrorType = errorTypeNotFound
		resp.Message = notFoundErr.Error()
		resp.ResourceType = notFoundErr.Resource
		resp.Identifier = notFoundErr.Identifier
	case errors.Is(err, employee.ErrEmployeeHasAttendance):
		status = http.StatusConflict
		resp.ErrorType = errorTypeConflict
		resp.Message = "Employee still has attendance records"
	default:
		resp.ErrorType = errorTypeServer
		resp.Message = "Internal server error"
		resp.RequestID = requestIDFrom(c)
	}

	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", status,
		"request_id", requestIDFrom(c),
		"error", err,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	c.AbortWithStatusJSON(status, resp)
}
