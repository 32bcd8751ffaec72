package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/hrms-attendance/internal/core/attendance"
	"github.com/ogurasousui/hrms-attendance/internal/core/employee"
	"github.com/ogurasousui/hrms-attendance/internal/platform/config"
)

// RouterDeps は HTTP ルーターの依存関係です。
type RouterDeps struct {
	Employees   employee.UseCase
	Attendance  attendance.UseCase
	DB          Pinger
	Logger      *slog.Logger
	CORS        config.CORSConfig
	SlowRequest time.Duration
}

// NewRouter はミドルウェアと /api/v1 配下のルートを登録した gin.Engine を返します。
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		RequestID(),
		Timing(logger, deps.SlowRequest),
		AccessLog(logger),
		Recovery(logger),
		CORS(deps.CORS),
	)
	r.NoRoute(notFoundRoute(logger))

	r.GET("/healthz", NewHealthHandler(deps.DB, logger).Healthz)

	v1 := r.Group("/api/v1")
	NewEmployeeHandler(deps.Employees, logger).Register(v1)
	NewAttendanceHandler(deps.Attendance, logger).Register(v1)

	return r
}
