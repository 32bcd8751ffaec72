package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

type envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type listEnvelope struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
	Data       any `json:"data"`
}

func respondData(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}

func respondOK(c *gin.Context, data any) {
	respondData(c, http.StatusOK, "Success", data)
}

// newListEnvelope は skip / limit から 1 始まりのページ番号と総ページ数を算出します。
func newListEnvelope(total, skip, limit int, data any) listEnvelope {
	if limit <= 0 {
		limit = 1
	}
	return listEnvelope{
		Total:      total,
		Page:       skip/limit + 1,
		PageSize:   limit,
		TotalPages: (total + limit - 1) / limit,
		Data:       data,
	}
}

type employeeResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	Position   *string   `json:"position"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toEmployeeResponse(emp *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:         emp.ID,
		EmployeeID: emp.Code.String(),
		FullName:   emp.FullName,
		Email:      emp.Email.String(),
		Department: emp.Department,
		Position:   emp.Position,
		Status:     emp.Status,
		CreatedAt:  emp.CreatedAt,
		UpdatedAt:  emp.UpdatedAt,
	}
}

func toEmployeeResponses(list []*employee.Employee) []employeeResponse {
	out := make([]employeeResponse, 0, len(list))
	for _, emp := range list {
		out = append(out, toEmployeeResponse(emp))
	}
	return out
}

type attendanceResponse struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employee_id"`
	Date       string    `json:"date"`
	Status     string    `json:"status"`
	Notes      *string   `json:"notes"`
	MarkedBy   string    `json:"marked_by"`
	MarkedAt   time.Time `json:"marked_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toAttendanceResponse(rec *attendance.Record) attendanceResponse {
	return attendanceResponse{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date.Format(attendance.DateLayout),
		Status:     string(rec.Status),
		Notes:      rec.Notes,
		MarkedBy:   rec.MarkedBy,
		MarkedAt:   rec.MarkedAt,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func toAttendanceResponses(list []*attendance.Record) []attendanceResponse {
	out := make([]attendanceResponse, 0, len(list))
	for _, rec := range list {
		out = append(out, toAttendanceResponse(rec))
	}
	return out
}

type dateStatsResponse struct {
	Date           string  `json:"date"`
	TotalEmployees int     `json:"total_employees"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	HalfDay        int     `json:"half_day"`
	Leave          int     `json:"leave"`
	AttendanceRate float64 `json:"attendance_rate"`
}

func toDateStatsResponse(s *attendance.DateStats) dateStatsResponse {
	return dateStatsResponse{
		Date:           s.Date.Format(attendance.DateLayout),
		TotalEmployees: s.Total,
		Present:        s.Present,
		Absent:         s.Absent,
		HalfDay:        s.HalfDay,
		Leave:          s.Leave,
		AttendanceRate: s.Rate,
	}
}

type employeeStatsResponse struct {
	EmployeeID     string  `json:"employee_id"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	TotalDays      int     `json:"total_days"`
	PresentDays    int     `json:"present_days"`
	AbsentDays     int     `json:"absent_days"`
	HalfDays       int     `json:"half_days"`
	LeaveDays      int     `json:"leave_days"`
	AttendanceRate float64 `json:"attendance_rate"`
}

func toEmployeeStatsResponse(s *attendance.EmployeeStats) employeeStatsResponse {
	return employeeStatsResponse{
		EmployeeID:     s.EmployeeID,
		StartDate:      s.StartDate.Format(attendance.DateLayout),
		EndDate:        s.EndDate.Format(attendance.DateLayout),
		TotalDays:      s.TotalDays,
		PresentDays:    s.PresentDays,
		AbsentDays:     s.AbsentDays,
		HalfDays:       s.HalfDays,
		LeaveDays:      s.LeaveDays,
		AttendanceRate: s.Rate,
	}
}

type employeeSummaryResponse struct {
	EmployeeID     string  `json:"employee_id"`
	EmployeeName   string  `json:"employee_name"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	TotalDays      int     `json:"total_days"`
	PresentDays    int     `json:"present_days"`
	AbsentDays     int     `json:"absent_days"`
	HalfDays       int     `json:"half_days"`
	LeaveDays      int     `json:"leave_days"`
	AttendanceRate float64 `json:"attendance_percentage"`
}

func toEmployeeSummaryResponse(s *attendance.EmployeeSummary) employeeSummaryResponse {
	return employeeSummaryResponse{
		EmployeeID:     s.EmployeeCode.String(),
		EmployeeName:   s.EmployeeName,
		StartDate:      s.Stats.StartDate.Format(attendance.DateLayout),
		EndDate:        s.Stats.EndDate.Format(attendance.DateLayout),
		TotalDays:      s.Stats.TotalDays,
		PresentDays:    s.Stats.PresentDays,
		AbsentDays:     s.Stats.AbsentDays,
		HalfDays:       s.Stats.HalfDays,
		LeaveDays:      s.Stats.LeaveDays,
		AttendanceRate: s.Stats.Rate,
	}
}

type rangeStatsResponse struct {
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	TotalRecords   int     `json:"total_records"`
	Present        int     `json:"present"`
	Absent         int     `json:"absent"`
	HalfDay        int     `json:"half_day"`
	Leave          int     `json:"leave"`
	AttendanceRate float64 `json:"attendance_rate"`
}

func toRangeStatsResponse(s *attendance.RangeStats) rangeStatsResponse {
	return rangeStatsResponse{
		StartDate:      s.StartDate.Format(attendance.DateLayout),
		EndDate:        s.EndDate.Format(attendance.DateLayout),
		TotalRecords:   s.TotalRecords,
		Present:        s.Present,
		Absent:         s.Absent,
		HalfDay:        s.HalfDay,
		Leave:          s.Leave,
		AttendanceRate: s.Rate,
	}
}
