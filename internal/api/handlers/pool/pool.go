// Package pool 食譜池 API
package pool

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bento-planner/internal/api/handlers"
	"bento-planner/internal/core/bento"
	"bento-planner/internal/core/planner"
	"bento-planner/internal/pkg/common"
)

// CreateRequest 上傳食譜池
type CreateRequest struct {
	Recipes []bento.RecipeRecord `json:"recipes" binding:"required"`
}

// CreateResponse 食譜池建立結果
type CreateResponse struct {
	ID          string    `json:"id"`
	RecipeCount int       `json:"recipe_count"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Handler 食譜池處理程序
type Handler struct {
	svc *planner.Service
}

// NewHandler 創建食譜池處理程序
func NewHandler(svc *planner.Service) *Handler {
	return &Handler{svc: svc}
}

// Create POST /api/v1/pools
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.SavePool(c.Request.Context(), req.Recipes)
	if err != nil {
		handlers.Error(c, err)
		return
	}

	common.LogInfo("食譜池上傳完成",
		zap.String("pool_id", p.ID),
		zap.String("request_id", handlers.RequestID(c)),
	)
	c.JSON(http.StatusCreated, CreateResponse{
		ID:          p.ID,
		RecipeCount: len(p.Recipes),
		ExpiresAt:   p.ExpiresAt,
	})
}

// Get GET /api/v1/pools/:id
func (h *Handler) Get(c *gin.Context) {
	p, err := h.svc.GetPool(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Delete DELETE /api/v1/pools/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeletePool(c.Request.Context(), c.Param("id")); err != nil {
		handlers.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
