// Package planner 便當規劃服務：食譜池管理、便當生成與份量換算
package planner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"bento-planner/internal/core/bento"
	"bento-planner/internal/core/pool"
	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

// GenerateRequest 單一便當生成請求；Recipes 與 PoolID 擇一
type GenerateRequest struct {
	Recipes        []bento.RecipeRecord
	PoolID         string
	TargetCalories float64
	Style          bento.Style
	Seed           int64
	RequestID      string
}

// BatchRequest 批次生成請求；Count 為 0 時使用預設值
type BatchRequest struct {
	Recipes   []bento.RecipeRecord
	PoolID    string
	Count     int
	Seed      int64
	RequestID string
}

// ScaleRequest 份量換算請求；Multiplier > 0 時優先於便當盒容量
type ScaleRequest struct {
	Recipe                bento.RecipeRecord
	ContainerCapacitiesML []int
	BreakfastPortions     int
	Multiplier            float64
}

// ScaledIngredient 換算後的食材
type ScaledIngredient struct {
	Name     string `json:"name"`
	Original string `json:"original"`
	Amount   string `json:"amount"`
}

// ScaleResult 份量換算結果
type ScaleResult struct {
	RecipeID       string             `json:"recipe_id"`
	Multiplier     float64            `json:"multiplier"`
	BaseCalories   int                `json:"base_calories"`
	ScaledCalories int                `json:"scaled_calories"`
	Ingredients    []ScaledIngredient `json:"ingredients"`
}

// Service 便當規劃服務
type Service struct {
	store      pool.Store
	cfg        config.BentoConfig
	maxRecipes int
}

// NewService 建立服務
func NewService(store pool.Store, cfg *config.Config) *Service {
	return &Service{
		store:      store,
		cfg:        cfg.Bento,
		maxRecipes: cfg.Pool.MaxRecipes,
	}
}

// Config 便當生成設定
func (s *Service) Config() config.BentoConfig {
	return s.cfg
}

// SavePool 儲存食譜池
func (s *Service) SavePool(ctx context.Context, recipes []bento.RecipeRecord) (*pool.Pool, error) {
	if err := s.validateRecipes(recipes); err != nil {
		return nil, err
	}

	p := &pool.Pool{Recipes: recipes}
	if _, err := s.store.Save(ctx, p); err != nil {
		common.LogError("儲存食譜池失敗", zap.Error(err))
		return nil, err
	}

	common.LogInfo("食譜池已建立", zap.String("pool_id", p.ID), zap.Int("recipe_count", len(recipes)))
	return p, nil
}

// GetPool 取得食譜池
func (s *Service) GetPool(ctx context.Context, id string) (*pool.Pool, error) {
	return s.store.Get(ctx, id)
}

// DeletePool 刪除食譜池
func (s *Service) DeletePool(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// PoolStats 食譜池儲存統計
func (s *Service) PoolStats() pool.Stats {
	return s.store.Stats()
}

// Ping 檢查食譜池儲存是否可用
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// GenerateBento 生成一個便當
func (s *Service) GenerateBento(ctx context.Context, req GenerateRequest) (*bento.Bento, error) {
	start := time.Now()

	if req.Style != "" && !req.Style.Valid() {
		return nil, common.NewValidationError(fmt.Sprintf("unknown style %q", req.Style))
	}
	if req.TargetCalories < 0 {
		return nil, common.NewValidationError("target_calories must not be negative")
	}

	recipes, err := s.resolveRecipes(ctx, req.Recipes, req.PoolID)
	if err != nil {
		return nil, err
	}

	target := req.TargetCalories
	if target == 0 {
		target = float64(s.cfg.DefaultTargetCalories)
	}

	result := bento.NewAssembler(bento.NewRandomSource(req.Seed)).Assemble(recipes, target, req.Style)
	if result == nil {
		common.LogGeneration("single", 1, 0, time.Since(start), req.RequestID)
		return nil, common.ErrInsufficientRecipes
	}

	common.LogGeneration("single", 1, 1, time.Since(start), req.RequestID)
	return result, nil
}

// GenerateBatch 批次生成便當；結果可能少於要求數量
func (s *Service) GenerateBatch(ctx context.Context, req BatchRequest) ([]*bento.Bento, error) {
	start := time.Now()

	count := req.Count
	if count == 0 {
		count = s.cfg.DefaultBatchCount
	}
	if count < 0 || count > s.cfg.MaxBatchCount {
		return nil, common.NewValidationError(fmt.Sprintf("count must be between 1 and %d", s.cfg.MaxBatchCount))
	}

	recipes, err := s.resolveRecipes(ctx, req.Recipes, req.PoolID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, common.ErrRequestTimeout.Wrap(err)
	}

	bentos := bento.NewGenerator(bento.NewRandomSource(req.Seed)).GenerateBatch(recipes, count)
	common.LogGeneration("batch", count, len(bentos), time.Since(start), req.RequestID)
	if len(bentos) == 0 {
		return nil, common.ErrInsufficientRecipes
	}
	return bentos, nil
}

// Composition 回報食譜組合的角色與缺少的角色
func (s *Service) Composition(recipes []bento.RecipeRecord) (bento.CompositionReport, error) {
	if err := s.validateRecipes(recipes); err != nil {
		return bento.CompositionReport{}, err
	}
	return bento.Composition(recipes), nil
}

// ScaleRecipe 依便當盒容量或指定倍率換算食譜的卡路里與食材分量
func (s *Service) ScaleRecipe(req ScaleRequest) (*ScaleResult, error) {
	if req.Recipe.Title == "" {
		return nil, common.NewValidationError("recipe title is required")
	}
	if req.Multiplier < 0 || req.BreakfastPortions < 0 {
		return nil, common.NewValidationError("multiplier and breakfast_portions must not be negative")
	}
	for _, c := range req.ContainerCapacitiesML {
		if c <= 0 {
			return nil, common.NewValidationError("container capacities must be positive")
		}
	}

	multiplier := req.Multiplier
	if multiplier == 0 {
		multiplier = bento.ContainerMultiplierBase(s.cfg.BaseContainerML, req.ContainerCapacitiesML, req.BreakfastPortions)
	}

	base := bento.EstimateCaloriesPerServing(req.Recipe)
	result := &ScaleResult{
		RecipeID:       req.Recipe.ID,
		Multiplier:     multiplier,
		BaseCalories:   base,
		ScaledCalories: bento.ScaleCalories(base, multiplier),
		Ingredients:    make([]ScaledIngredient, 0, len(req.Recipe.Ingredients)),
	}
	for _, ing := range req.Recipe.Ingredients {
		result.Ingredients = append(result.Ingredients, ScaledIngredient{
			Name:     ing.Name,
			Original: ing.Amount,
			Amount:   bento.ScaleQuantityText(ing.Amount, multiplier, ing.Name),
		})
	}

	common.LogDebug("份量換算完成",
		zap.String("recipe_id", req.Recipe.ID),
		zap.Float64("multiplier", multiplier),
		zap.Int("scaled_calories", result.ScaledCalories),
	)
	return result, nil
}

// resolveRecipes 取得要生成的食譜：直接提供或由食譜池讀取
func (s *Service) resolveRecipes(ctx context.Context, recipes []bento.RecipeRecord, poolID string) ([]bento.RecipeRecord, error) {
	switch {
	case len(recipes) > 0 && poolID != "":
		return nil, common.NewValidationError("provide either recipes or pool_id, not both")
	case len(recipes) > 0:
		if err := s.validateRecipes(recipes); err != nil {
			return nil, err
		}
		return recipes, nil
	case poolID != "":
		p, err := s.store.Get(ctx, poolID)
		if err != nil {
			return nil, err
		}
		return p.Recipes, nil
	default:
		return nil, common.NewValidationError("recipes or pool_id is required")
	}
}

func (s *Service) validateRecipes(recipes []bento.RecipeRecord) error {
	if len(recipes) == 0 {
		return common.NewValidationError("recipes is required")
	}
	if s.maxRecipes > 0 && len(recipes) > s.maxRecipes {
		return common.NewValidationError(fmt.Sprintf("too many recipes (max %d)", s.maxRecipes))
	}
	return nil
}
