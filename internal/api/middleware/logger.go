package middleware

import (
	"net/http"
	"time"

	"bento-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// healthRoutes 健康檢查路由，成功時只記 debug
var healthRoutes = map[string]bool{
	"/health": true,
	"/ready":  true,
	"/live":   true,
}

// Logger 日誌中間件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		fields := requestFields(c, path, time.Since(start))

		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		// 根據狀態碼記錄不同級別的日誌
		switch {
		case status >= 500:
			common.LogError("伺服器錯誤",
				append(fields, zap.String("error_type", "server_error"))...,
			)
		case status >= 400:
			common.LogWarn("用戶端錯誤",
				append(fields, zap.String("error_type", "client_error"))...,
			)
		case healthRoutes[c.FullPath()]:
			common.LogDebug("健康檢查", fields...)
		default:
			common.LogInfo("請求完成",
				fields...,
			)
		}
	}
}

// requestFields 組出請求日誌欄位；route 為註冊的路由樣板，pool_id 只在食譜池路由出現
func requestFields(c *gin.Context, path string, latency time.Duration) []zap.Field {
	// requestid 中間件在本中間件之後執行，完成後才讀得到
	fields := []zap.Field{
		zap.Int("status", c.Writer.Status()),
		zap.String("method", c.Request.Method),
		zap.String("path", path),
		zap.String("route", c.FullPath()),
		zap.String("ip", c.ClientIP()),
		zap.String("user-agent", c.Request.UserAgent()),
		zap.Duration("latency", latency),
		zap.Int("bytes", c.Writer.Size()),
		zap.String("request_id", requestid.Get(c)),
	}
	if poolID := c.Param("id"); poolID != "" {
		fields = append(fields, zap.String("pool_id", poolID))
	}
	return fields
}

// Recovery 恢復中間件
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				common.LogError("Panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("request_id", requestid.Get(c)),
				)

				c.AbortWithStatusJSON(http.StatusInternalServerError, common.ErrorResponse{
					Code:    common.ErrCodeInternalError,
					Message: common.ErrInternalError.Message,
				})
			}
		}()

		c.Next()
	}
}
