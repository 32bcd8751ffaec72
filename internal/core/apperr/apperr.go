package apperr

import (
	"errors"
	"fmt"
)

// 呼び出し側が errors.Is で分類に使う番兵エラーです。
var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate")
	ErrValidation = errors.New("validation failed")
)

// NotFoundError は参照先のリソースが存在しないことを表します。
type NotFoundError struct {
	Resource   string
	Identifier string
}

// NotFound は NotFoundError を生成します。
func NotFound(resource, identifier string) *NotFoundError {
	return &NotFoundError{Resource: resource, Identifier: identifier}
}

func (e *NotFoundError) Error() string {
	if e.Identifier == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with identifier '%s' not found", e.Resource, e.Identifier)
}

// Is は ErrNotFound と同一視させます。
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// DuplicateError は一意制約違反を表します。
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

// Duplicate は DuplicateError を生成します。
func Duplicate(resource, field, value string) *DuplicateError {
	return &DuplicateError{Resource: resource, Field: field, Value: value}
}

func (e *DuplicateError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s with the same %s already exists", e.Resource, e.Field)
	}
	return fmt.Sprintf("%s with %s '%s' already exists", e.Resource, e.Field, e.Value)
}

// Is は ErrDuplicate と同一視させます。
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// ValidationError は入力値の検証エラーです。Value は不正だった入力値で、不明なら空です。
type ValidationError struct {
	Field   string
	Message string
	Value   string
}

// Validation は ValidationError を生成します。
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// WithValue は入力値を付与した複製を返します。元のエラーは変更しません。
func (e *ValidationError) WithValue(value string) *ValidationError {
	clone := *e
	clone.Value = value
	return &clone
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// Is は ErrValidation、および Field と Message が一致する ValidationError と同一視させます。
// WithValue で作った複製も元の番兵エラーに一致します。
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	t, ok := target.(*ValidationError)
	return ok && t.Field == e.Field && t.Message == e.Message
}
