package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-attendance/internal/core/apperr"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
)

// AttendanceHandler は勤怠記録と集計の HTTP ハンドラです。
type AttendanceHandler struct {
	svc    attendance.UseCase
	logger *slog.Logger
}

// NewAttendanceHandler は AttendanceHandler を生成します。
func NewAttendanceHandler(svc attendance.UseCase, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{svc: svc, logger: logger}
}

// Register は /attendance 配下のルートを登録します。
func (h *AttendanceHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/attendance")
	g.POST("", h.MarkAttendance)
	g.GET("", h.ListAttendance)
	g.GET("/employee/:employee_id", h.ListEmployeeAttendance)
	g.GET("/employee/:employee_id/stats", h.EmployeeStats)
	g.GET("/employee/:employee_id/summary", h.EmployeeSummary)
	g.GET("/date/:date", h.ListDailyAttendance)
	g.GET("/stats/date/:date", h.DateStats)
	g.GET("/stats/range", h.RangeStats)
	g.GET("/:id", h.GetAttendance)
	g.PUT("/:id", h.UpdateAttendance)
	g.DELETE("/:id", h.DeleteAttendance)
}

type markAttendanceRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required"`
	Date       string  `json:"date" binding:"required"`
	Status     string  `json:"status"`
	Notes      *string `json:"notes"`
	MarkedBy   string  `json:"marked_by"`
}

type updateAttendanceRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// MarkAttendance は勤怠を登録します。
func (h *AttendanceHandler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &bindError{err: err})
		return
	}

	date, err := parseDate("date", req.Date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.svc.MarkAttendance(c.Request.Context(), attendance.MarkAttendanceInput{
		EmployeeRef: req.EmployeeID,
		Date:        date,
		Status:      req.Status,
		Notes:       req.Notes,
		MarkedBy:    req.MarkedBy,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, "Attendance marked successfully", toAttendanceResponse(created))
}

// ListAttendance は勤怠一覧を返します。
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	in, err := listInputFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	in.EmployeeRef = c.Query("employee_id")
	in.Status = c.Query("status")

	result, err := h.svc.ListAttendance(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondList(c, result)
}

// ListEmployeeAttendance は社員 1 名の勤怠一覧を返します。
func (h *AttendanceHandler) ListEmployeeAttendance(c *gin.Context) {
	in, err := listInputFromQuery(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	in.EmployeeRef = c.Param("employee_id")

	result, err := h.svc.ListEmployeeAttendance(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondList(c, result)
}

// ListDailyAttendance は指定日の勤怠一覧を返します。
func (h *AttendanceHandler) ListDailyAttendance(c *gin.Context) {
	date, err := parseDate("date", c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	skip, limit, err := paging(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.svc.ListAttendance(c.Request.Context(), attendance.ListAttendanceInput{
		StartDate: &date,
		EndDate:   &date,
		Skip:      skip,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.respondList(c, result)
}

// GetAttendance は勤怠記録を 1 件返します。
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	found, err := h.svc.GetAttendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, toAttendanceResponse(found))
}

// UpdateAttendance は状態とメモを部分更新します。
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	var req updateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &bindError{err: err})
		return
	}

	updated, err := h.svc.UpdateAttendance(c.Request.Context(), attendance.UpdateAttendanceInput{
		ID:     c.Param("id"),
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Attendance updated successfully", toAttendanceResponse(updated))
}

// DeleteAttendance は勤怠記録を削除します。
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.svc.DeleteAttendance(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if !deleted {
		respondError(c, h.logger, attendance.NotFound(id))
		return
	}
	respondData(c, http.StatusOK, "Attendance deleted successfully", nil)
}

// DateStats は指定日の状態別集計を返します。
func (h *AttendanceHandler) DateStats(c *gin.Context) {
	date, err := parseDate("date", c.Param("date"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	stats, err := h.svc.StatsByDate(c.Request.Context(), date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, toDateStatsResponse(stats))
}

// EmployeeStats は社員の期間内出勤率を返します。期間を省略した場合は当月 1 日から今日までです。
func (h *AttendanceHandler) EmployeeStats(c *gin.Context) {
	start, end, err := queryRange(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	defaultStart, defaultEnd := h.svc.DefaultStatsWindow()
	if start == nil {
		start = &defaultStart
	}
	if end == nil {
		end = &defaultEnd
	}

	stats, err := h.svc.StatsForEmployee(c.Request.Context(), c.Param("employee_id"), *start, *end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, toEmployeeStatsResponse(stats))
}

// EmployeeSummary は社員の氏名付き出勤レポートを返します。
// end_date の既定は今日、start_date の既定は end_date の月の 1 日です。
func (h *AttendanceHandler) EmployeeSummary(c *gin.Context) {
	start, end, err := queryRange(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if end == nil {
		_, today := h.svc.DefaultStatsWindow()
		end = &today
	}
	if start == nil {
		first := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
		start = &first
	}

	summary, err := h.svc.EmployeeSummary(c.Request.Context(), c.Param("employee_id"), *start, *end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Attendance summary retrieved successfully", toEmployeeSummaryResponse(summary))
}

// RangeStats は全社員の期間内集計を返します。start_date と end_date は必須です。
func (h *AttendanceHandler) RangeStats(c *gin.Context) {
	start, end, err := queryRange(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if start == nil {
		respondError(c, h.logger, apperr.Validation("start_date", "is required"))
		return
	}
	if end == nil {
		respondError(c, h.logger, apperr.Validation("end_date", "is required"))
		return
	}

	stats, err := h.svc.StatsForRange(c.Request.Context(), *start, *end)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, toRangeStatsResponse(stats))
}

func (h *AttendanceHandler) respondList(c *gin.Context, result *attendance.ListAttendanceResult) {
	c.JSON(http.StatusOK, newListEnvelope(result.Total, result.Skip, result.Limit, toAttendanceResponses(result.Records)))
}

func listInputFromQuery(c *gin.Context) (attendance.ListAttendanceInput, error) {
	skip, limit, err := paging(c)
	if err != nil {
		return attendance.ListAttendanceInput{}, err
	}
	start, end, err := queryRange(c)
	if err != nil {
		return attendance.ListAttendanceInput{}, err
	}
	return attendance.ListAttendanceInput{
		StartDate: start,
		EndDate:   end,
		Skip:      skip,
		Limit:     limit,
	}, nil
}

func queryRange(c *gin.Context) (start, end *time.Time, err error) {
	if start, err = queryDate(c, "start_date"); err != nil {
		return nil, nil, err
	}
	if end, err = queryDate(c, "end_date"); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
