package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
)

// EmployeeHandler は社員ディレクトリの HTTP ハンドラです。
type EmployeeHandler struct {
	svc    employee.UseCase
	logger *slog.Logger
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase, logger *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{svc: svc, logger: logger}
}

// Register は /employees 配下のルートを登録します。
func (h *EmployeeHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/employees")
	g.POST("", h.CreateEmployee)
	g.GET("", h.ListEmployees)
	g.GET("/department/:department", h.ListByDepartment)
	g.GET("/:code", h.GetEmployee)
	g.DELETE("/:code", h.DeleteEmployee)
	g.DELETE("/:code/purge", h.PurgeEmployee)
}

type createEmployeeRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required"`
	FullName   string  `json:"full_name" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Department string  `json:"department" binding:"required"`
	Position   *string `json:"position"`
	Status     string  `json:"status"`
}

// CreateEmployee は社員を作成します。
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, &bindError{err: err})
		return
	}

	created, err := h.svc.CreateEmployee(c.Request.Context(), employee.CreateEmployeeInput{
		Code:       req.EmployeeID,
		FullName:   req.FullName,
		Email:      req.Email,
		Department: req.Department,
		Position:   req.Position,
		Status:     req.Status,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondData(c, http.StatusCreated, "Employee created successfully", toEmployeeResponse(created))
}

// ListEmployees は社員の一覧を返します。search と department で絞り込めます。
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	h.list(c, c.Query("department"))
}

// ListByDepartment は部署で絞り込んだ社員一覧を返します。
func (h *EmployeeHandler) ListByDepartment(c *gin.Context) {
	h.list(c, c.Param("department"))
}

func (h *EmployeeHandler) list(c *gin.Context, department string) {
	skip, limit, err := paging(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	result, err := h.svc.ListEmployees(c.Request.Context(), employee.ListEmployeesInput{
		Search:     c.Query("search"),
		Department: department,
		Skip:       skip,
		Limit:      limit,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newListEnvelope(result.Total, result.Skip, result.Limit, toEmployeeResponses(result.Employees)))
}

// GetEmployee は社員コードで社員を取得します。
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	found, err := h.svc.GetEmployee(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, toEmployeeResponse(found))
}

// DeleteEmployee は社員を論理削除します。
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.svc.DeleteEmployee(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Employee deleted successfully", nil)
}

// PurgeEmployee は勤怠記録のない社員を物理削除します。
func (h *EmployeeHandler) PurgeEmployee(c *gin.Context) {
	if err := h.svc.PurgeEmployee(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondData(c, http.StatusOK, "Employee purged successfully", nil)
}
