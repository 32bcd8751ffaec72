package attendance

import (
	"strings"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

// DateLayout は勤怠日付の入出力フォーマットです。
const DateLayout = "2006-01-02"

// DefaultMarkedBy は記録者が未指定の場合の値です。
const DefaultMarkedBy = "Admin"

// Status は勤怠状態を表します。
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half-day"
	StatusLeave   Status = "leave"
)

// ParseStatus は文字列を Status に変換します。空文字は present として扱います。
func ParseStatus(raw string) (Status, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return StatusPresent, nil
	}
	status := Status(trimmed)
	if !status.Valid() {
		return "", ErrInvalidStatus.WithValue(strings.TrimSpace(raw))
	}
	return status, nil
}

// Valid は定義済みの状態かを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusHalfDay, StatusLeave:
		return true
	default:
		return false
	}
}

// Record は社員 1 名 1 日分の勤怠記録です。
type Record struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Status     Status
	Notes      *string
	MarkedBy   string
	MarkedAt   time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StatusCounts は状態ごとの件数です。
type StatusCounts struct {
	Present int
	Absent  int
	HalfDay int
	Leave   int
}

// Add は status の件数に n を加算します。未知の状態は無視されます。
func (c *StatusCounts) Add(status Status, n int) {
	switch status {
	case StatusPresent:
		c.Present += n
	case StatusAbsent:
		c.Absent += n
	case StatusHalfDay:
		c.HalfDay += n
	case StatusLeave:
		c.Leave += n
	}
}

// Total は全状態の合計件数です。
func (c StatusCounts) Total() int {
	return c.Present + c.Absent + c.HalfDay + c.Leave
}

// DateStats は特定日の勤怠集計です。
type DateStats struct {
	Date    time.Time
	Total   int
	Present int
	Absent  int
	HalfDay int
	Leave   int
	Rate    float64
}

// EmployeeStats は社員 1 名の期間内勤怠集計です。
// TotalDays は期間内の平日数で、記録件数ではありません。
type EmployeeStats struct {
	EmployeeID  string
	StartDate   time.Time
	EndDate     time.Time
	TotalDays   int
	PresentDays int
	AbsentDays  int
	HalfDays    int
	LeaveDays   int
	Rate        float64
}

// EmployeeSummary は社員の氏名付き出勤レポートです。
type EmployeeSummary struct {
	EmployeeCode employee.Code
	EmployeeName string
	Stats        *EmployeeStats
}

// RangeStats は全社員の期間内勤怠集計です。
type RangeStats struct {
	StartDate    time.Time
	EndDate      time.Time
	TotalRecords int
	Present      int
	Absent       int
	HalfDay      int
	Leave        int
	Rate         float64
}
