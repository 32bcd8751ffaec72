package employee

import (
	"errors"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
)

const resourceName = "Employee"

var (
	ErrInvalidID             = apperr.Validation("id", "must be a valid identifier")
	ErrInvalidEmployeeCode   = apperr.Validation("employee_id", "must be EMP followed by 1-6 digits (e.g. EMP1, EMP001)")
	ErrInvalidEmail          = apperr.Validation("email", "invalid email format or domain")
	ErrInvalidFullName       = apperr.Validation("full_name", "must be between 2 and 100 characters")
	ErrInvalidDepartment     = apperr.Validation("department", "is required")
	ErrInvalidPageSize       = apperr.Validation("limit", "must be between 1 and 100")
	ErrInvalidSkip           = apperr.Validation("skip", "must not be negative")
	ErrEmployeeHasAttendance = errors.New("employee: attendance records still reference this employee")
)

// NotFound は社員が見つからない場合のエラーを生成します。
func NotFound(identifier string) error {
	return apperr.NotFound(resourceName, identifier)
}

// DuplicateCode は社員コード重複エラーを生成します。
func DuplicateCode(code string) error {
	return apperr.Duplicate(resourceName, "employee_id", code)
}

// DuplicateEmail はメールアドレス重複エラーを生成します。
func DuplicateEmail(email string) error {
	return apperr.Duplicate(resourceName, "email", email)
}
