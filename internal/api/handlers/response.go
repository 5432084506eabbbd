// Package handlers HTTP 處理器共用的回應工具
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

// RequestID 取得請求 ID
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	return c.GetHeader("X-Request-ID")
}

// Error 將錯誤轉為統一的錯誤響應；開發模式附上原始錯誤
func Error(c *gin.Context, err error) {
	debug := false
	if v, ok := c.Get("config"); ok {
		if cfg, ok := v.(*config.Config); ok {
			debug = cfg.App.Debug
		}
	}

	status, resp := common.ToResponse(err, debug)
	fields := []zap.Field{
		zap.Error(err),
		zap.Int("status", status),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", RequestID(c)),
	}
	if status >= 500 {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求無法處理", fields...)
	}

	c.AbortWithStatusJSON(status, resp)
}

// BindJSON 解析請求內容，失敗時直接回應 400；超過 BodySizeLimit 時回應 413
func BindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(c, common.ErrRequestTooLarge.Wrap(err))
			return false
		}
		Error(c, common.NewValidationError("invalid request body: "+err.Error()))
		return false
	}
	return true
}
