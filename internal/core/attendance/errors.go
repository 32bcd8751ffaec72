package attendance

import (
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
)

const resourceName = "Attendance"

var (
	ErrInvalidID          = apperr.Validation("id", "must be a valid attendance identifier")
	ErrInvalidEmployeeRef = apperr.Validation("employee_id", "must be an employee code (e.g. EMP001) or an internal identifier")
	ErrMissingEmployeeRef = apperr.Validation("employee_id", "is required")
	ErrInvalidStatus      = apperr.Validation("status", "must be one of present, absent, half-day, leave")
	ErrFutureDate         = apperr.Validation("date", "attendance date cannot be in the future")
	ErrMissingDate        = apperr.Validation("date", "is required")
	ErrInvalidDateRange   = apperr.Validation("start_date", "must not be after end_date")
	ErrInvalidPageSize    = apperr.Validation("limit", "must be between 1 and 100")
	ErrInvalidSkip        = apperr.Validation("skip", "must not be negative")
)

// NotFound は勤怠記録が見つからない場合のエラーを生成します。
func NotFound(id string) error {
	return apperr.NotFound(resourceName, id)
}

// DuplicateRecord は同一社員・同一日の勤怠重複エラーを生成します。値には解決済みの社員 ID を使います。
func DuplicateRecord(employeeID string, date time.Time) error {
	return apperr.Duplicate(resourceName, "date", employeeID+" on "+date.Format(DateLayout))
}
