package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ogurasousui/hrms-attendance/internal/platform/config"
)

const (
	HeaderRequestID   = "X-Request-ID"
	HeaderProcessTime = "X-Process-Time"

	requestIDKey = "request_id"
)

// RequestID はリクエスト ID を採番し、コンテキストとレスポンスヘッダに設定します。
// クライアントが X-Request-ID を送った場合はその値を引き継ぎます。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Timing は処理時間を X-Process-Time に書き込み、閾値を超えたリクエストを警告します。
// ヘッダはレスポンスの最初の書き込み時点の経過時間です。
func Timing(logger *slog.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Writer = &timingWriter{ResponseWriter: c.Writer, start: start}
		c.Next()

		elapsed := time.Since(start)
		if slow > 0 && elapsed > slow {
			logger.Warn("slow request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"duration", elapsed,
				"request_id", requestIDFrom(c),
			)
		}
	}
}

type timingWriter struct {
	gin.ResponseWriter
	start   time.Time
	stamped bool
}

func (w *timingWriter) stamp() {
	if w.stamped {
		return
	}
	w.stamped = true
	w.Header().Set(HeaderProcessTime, fmt.Sprintf("%.4f", time.Since(w.start).Seconds()))
}

func (w *timingWriter) WriteHeader(code int) {
	w.stamp()
	w.ResponseWriter.WriteHeader(code)
}

func (w *timingWriter) WriteHeaderNow() {
	w.stamp()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *timingWriter) Write(b []byte) (int, error) {
	w.stamp()
	return w.ResponseWriter.Write(b)
}

func (w *timingWriter) WriteString(s string) (int, error) {
	w.stamp()
	return w.ResponseWriter.WriteString(s)
}

// AccessLog はリクエストごとに 1 行の構造化ログを出力します。
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", requestIDFrom(c),
		)
	}
}

// Recovery はパニックを 500 のエラーエンベロープに変換します。
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		respondError(c, logger, fmt.Errorf("panic: %v", recovered))
	})
}

// CORS は設定に従って gin-contrib/cors のミドルウェアを構築します。
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:  cfg.AllowedMethods,
		AllowHeaders:  cfg.AllowedHeaders,
		ExposeHeaders: []string{HeaderRequestID, HeaderProcessTime},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			break
		}
	}
	if !corsCfg.AllowAllOrigins {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	}

	return cors.New(corsCfg)
}

func notFoundRoute(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{
			Message:   "Route not found",
			ErrorType: errorTypeNotFound,
			Timestamp: time.Now().UTC(),
		})
		logger.Debug("route not found", "method", c.Request.Method, "path", c.Request.URL.Path)
	}
}
