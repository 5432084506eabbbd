// Package bento 便當生成 API
package bento

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bento-planner/internal/api/handlers"
	engine "bento-planner/internal/core/bento"
	"bento-planner/internal/core/planner"
	"bento-planner/internal/pkg/common"
)

// GenerateRequest 生成單一便當；recipes 與 pool_id 擇一
type GenerateRequest struct {
	Recipes        []engine.RecipeRecord `json:"recipes,omitempty"`
	PoolID         string                `json:"pool_id,omitempty"`
	TargetCalories float64               `json:"target_calories,omitempty"`
	Style          engine.Style          `json:"style,omitempty"`
	Seed           int64                 `json:"seed,omitempty"` // 0 表示隨機
}

// GenerateResponse 單一便當
type GenerateResponse struct {
	Bento *engine.Bento `json:"bento"`
}

// BatchRequest 批次生成
type BatchRequest struct {
	Recipes []engine.RecipeRecord `json:"recipes,omitempty"`
	PoolID  string                `json:"pool_id,omitempty"`
	Count   int                   `json:"count,omitempty"`
	Seed    int64                 `json:"seed,omitempty"`
}

// BatchResponse 批次生成結果，Generated 可能少於 Requested
type BatchResponse struct {
	Bentos    []*engine.Bento `json:"bentos"`
	Requested int             `json:"requested"`
	Generated int             `json:"generated"`
}

// CompositionRequest 檢查食譜組合
type CompositionRequest struct {
	Recipes []engine.RecipeRecord `json:"recipes" binding:"required"`
}

// Handler 便當處理程序
type Handler struct {
	svc *planner.Service
}

// NewHandler 創建便當處理程序
func NewHandler(svc *planner.Service) *Handler {
	return &Handler{svc: svc}
}

// Generate POST /api/v1/bento/generate
func (h *Handler) Generate(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req GenerateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理便當生成請求",
		zap.String("request_id", requestID),
		zap.String("pool_id", req.PoolID),
		zap.Int("recipe_count", len(req.Recipes)),
	)

	b, err := h.svc.GenerateBento(c.Request.Context(), planner.GenerateRequest{
		Recipes:        req.Recipes,
		PoolID:         req.PoolID,
		TargetCalories: req.TargetCalories,
		Style:          req.Style,
		Seed:           req.Seed,
		RequestID:      requestID,
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{Bento: b})
}

// Batch POST /api/v1/bento/batch
func (h *Handler) Batch(c *gin.Context) {
	requestID := handlers.RequestID(c)

	var req BatchRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	bentos, err := h.svc.GenerateBatch(c.Request.Context(), planner.BatchRequest{
		Recipes:   req.Recipes,
		PoolID:    req.PoolID,
		Count:     req.Count,
		Seed:      req.Seed,
		RequestID: requestID,
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}

	requested := req.Count
	if requested == 0 {
		requested = h.svc.Config().DefaultBatchCount
	}
	c.JSON(http.StatusOK, BatchResponse{
		Bentos:    bentos,
		Requested: requested,
		Generated: len(bentos),
	})
}

// Composition POST /api/v1/bento/composition
func (h *Handler) Composition(c *gin.Context) {
	var req CompositionRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.Composition(req.Recipes)
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
