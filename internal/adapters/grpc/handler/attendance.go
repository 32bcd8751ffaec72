package handler

import (
	"context"
	"strings"
	"time"

	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
	"google.golang.org/protobuf/types/known/structpb"
)

// StatsUseCase は gRPC から参照する勤怠集計ユースケースです。
type StatsUseCase interface {
	StatsByDate(ctx context.Context, date time.Time) (*attendance.DateStats, error)
	StatsForEmployee(ctx context.Context, employeeRef string, start, end time.Time) (*attendance.EmployeeStats, error)
	DefaultStatsWindow() (time.Time, time.Time)
}

// AttendanceHandler は勤怠集計を gRPC で公開するアダプタです。
// ドメインエラーはそのまま返し、ステータスへの変換はインターセプタに任せます。
type AttendanceHandler struct {
	stats StatsUseCase
}

// NewAttendanceHandler は AttendanceHandler を生成します。
func NewAttendanceHandler(stats StatsUseCase) *AttendanceHandler {
	return &AttendanceHandler{stats: stats}
}

// GetEmployeeStats は employee_id と任意の start_date / end_date を受け取り、社員の出勤率を返します。
// 期間を省略した場合は当月 1 日から今日までです。
func (h *AttendanceHandler) GetEmployeeStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	start, err := optionalDate(req, "start_date")
	if err != nil {
		return nil, err
	}
	end, err := optionalDate(req, "end_date")
	if err != nil {
		return nil, err
	}

	defaultStart, defaultEnd := h.stats.DefaultStatsWindow()
	if start.IsZero() {
		start = defaultStart
	}
	if end.IsZero() {
		end = defaultEnd
	}

	stats, err := h.stats.StatsForEmployee(ctx, stringField(req, "employee_id"), start, end)
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(map[string]any{
		"employee_id":     stats.EmployeeID,
		"start_date":      stats.StartDate.Format(attendance.DateLayout),
		"end_date":        stats.EndDate.Format(attendance.DateLayout),
		"total_days":      stats.TotalDays,
		"present_days":    stats.PresentDays,
		"absent_days":     stats.AbsentDays,
		"half_days":       stats.HalfDays,
		"leave_days":      stats.LeaveDays,
		"attendance_rate": stats.Rate,
	})
}

// GetDateStats は date (YYYY-MM-DD) の状態別集計を返します。
func (h *AttendanceHandler) GetDateStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	date, err := optionalDate(req, "date")
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, attendance.ErrMissingDate
	}

	stats, err := h.stats.StatsByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	return structpb.NewStruct(map[string]any{
		"date":            stats.Date.Format(attendance.DateLayout),
		"total_records":   stats.Total,
		"present_count":   stats.Present,
		"absent_count":    stats.Absent,
		"half_day_count":  stats.HalfDay,
		"leave_count":     stats.Leave,
		"attendance_rate": stats.Rate,
	})
}

func stringField(req *structpb.Struct, name string) string {
	return strings.TrimSpace(req.GetFields()[name].GetStringValue())
}

func optionalDate(req *structpb.Struct, name string) (time.Time, error) {
	raw := stringField(req, name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(attendance.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation(name, "must be a date in YYYY-MM-DD format").WithValue(raw)
	}
	return t, nil
}
