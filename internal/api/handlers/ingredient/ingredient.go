// Package ingredient 食材份量換算 API
package ingredient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bento-planner/internal/api/handlers"
	"bento-planner/internal/core/bento"
	"bento-planner/internal/core/planner"
)

// ScaleRequest 依便當盒容量或倍率換算食譜份量
type ScaleRequest struct {
	Recipe                bento.RecipeRecord `json:"recipe"`
	ContainerCapacitiesML []int              `json:"container_capacities_ml,omitempty"`
	BreakfastPortions     int                `json:"breakfast_portions,omitempty"`
	Multiplier            float64            `json:"multiplier,omitempty"` // 大於 0 時忽略便當盒容量
}

// Handler 份量換算處理程序
type Handler struct {
	svc *planner.Service
}

// NewHandler 創建份量換算處理程序
func NewHandler(svc *planner.Service) *Handler {
	return &Handler{svc: svc}
}

// Scale POST /api/v1/ingredients/scale
func (h *Handler) Scale(c *gin.Context) {
	var req ScaleRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	result, err := h.svc.ScaleRecipe(planner.ScaleRequest{
		Recipe:                req.Recipe,
		ContainerCapacitiesML: req.ContainerCapacitiesML,
		BreakfastPortions:     req.BreakfastPortions,
		Multiplier:            req.Multiplier,
	})
	if err != nil {
		handlers.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
