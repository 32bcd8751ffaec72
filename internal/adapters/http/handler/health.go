package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger はデータベースの疎通確認を行います。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler は稼働確認用のハンドラです。
type HealthHandler struct {
	db      Pinger
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler は HealthHandler を生成します。
func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, timeout: 2 * time.Second, logger: logger}
}

// Healthz はプロセスとデータベースの状態を返します。DB に到達できない場合は 503 です。
func (h *HealthHandler) Healthz(c *gin.Context) {
	body := gin.H{"status": "ok", "database": "ok", "timestamp": time.Now().UTC()}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("health check failed", "error", err, "request_id", requestIDFrom(c))
			body["status"] = "degraded"
			body["database"] = "unreachable"
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}

	c.JSON(http.StatusOK, body)
}
