package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	bentoHandler "bento-planner/internal/api/handlers/bento"
	"bento-planner/internal/api/handlers/health"
	ingredientHandler "bento-planner/internal/api/handlers/ingredient"
	poolHandler "bento-planner/internal/api/handlers/pool"
	"bento-planner/internal/api/middleware"
	"bento-planner/internal/core/planner"
	"bento-planner/internal/core/pool"
	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, store pool.Store) (*gin.Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("pool store is required")
	}

	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	// 初始化服務
	plannerSvc := planner.NewService(store, cfg)

	timeout := cfg.Server.RequestTimeout

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("planner_service", plannerSvc)
		c.Set("pool_store", store)

		c.Next()

		// 檢查是否超時
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", requestid.Get(c)),
				zap.Duration("timeout", timeout),
			)
			if !c.Writer.Written() {
				status, resp := common.ToResponse(common.ErrGatewayTimeout, false)
				c.AbortWithStatusJSON(status, resp)
			}
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.DedupWindow > 0 {
		api.Use(middleware.Deduplication(cfg.DedupWindow))
	}
	{
		pools := poolHandler.NewHandler(plannerSvc)
		poolGroup := api.Group("/pools")
		{
			poolGroup.POST("", pools.Create)
			poolGroup.GET("/:id", pools.Get)
			poolGroup.DELETE("/:id", pools.Delete)
		}

		bentos := bentoHandler.NewHandler(plannerSvc)
		bentoGroup := api.Group("/bento")
		{
			bentoGroup.POST("/generate", bentos.Generate)
			bentoGroup.POST("/batch", bentos.Batch)
			bentoGroup.POST("/composition", bentos.Composition)
		}

		ingredients := ingredientHandler.NewHandler(plannerSvc)
		api.POST("/ingredients/scale", ingredients.Scale)
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("pool_backend", store.Stats().Backend),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, nil
}
