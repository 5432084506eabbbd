package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"bento-planner/internal/core/planner"
	"bento-planner/internal/core/pool"
	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Pool      *pool.Stats            `json:"pool,omitempty"`
}

// readinessTimeout 就緒檢查時 ping 儲存的上限
const readinessTimeout = 2 * time.Second

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	cfg, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: "Configuration not found",
		})
		return
	}
	appConfig, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeInternalError,
			Message: "Invalid configuration type",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   appConfig.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	// 附上食譜池統計
	if svc, ok := plannerService(c); ok {
		stats := svc.PoolStats()
		response.Pool = &stats
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器：食譜池儲存可用才算就緒
func ReadinessCheck(c *gin.Context) {
	svc, ok := plannerService(c)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "planner service missing"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
	defer cancel()
	if err := svc.Ping(ctx); err != nil {
		common.LogWarn("食譜池儲存無法連線", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "reason": "pool store unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func plannerService(c *gin.Context) (*planner.Service, bool) {
	v, exists := c.Get("planner_service")
	if !exists {
		return nil, false
	}
	svc, ok := v.(*planner.Service)
	return svc, ok
}
