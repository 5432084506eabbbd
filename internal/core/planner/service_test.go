package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"bento-planner/internal/core/bento"
	"bento-planner/internal/core/pool"
	"bento-planner/internal/infrastructure/config"
	"bento-planner/internal/pkg/common"
)

func testConfig() *config.Config {
	return &config.Config{
		Pool: config.PoolConfig{Backend: "memory", MaxSize: 10, MaxRecipes: 5, TTL: time.Hour},
		Bento: config.BentoConfig{
			DefaultTargetCalories: 600,
			DefaultBatchCount:     3,
			MaxBatchCount:         5,
			BaseContainerML:       800,
		},
	}
}

func setupService(t *testing.T) *Service {
	t.Helper()
	cfg := testConfig()
	store := pool.NewMemoryStore(cfg.Pool)
	t.Cleanup(func() { store.Close() })
	return NewService(store, cfg)
}

func lunchRecipes() []bento.RecipeRecord {
	return []bento.RecipeRecord{
		{ID: "r1", Title: "Chicken Teriyaki"},
		{ID: "r2", Title: "Potato Salad"},
		{ID: "r3", Title: "Plain Rice"},
	}
}

func TestSaveAndGenerateFromPool(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	p, err := svc.SavePool(ctx, lunchRecipes())
	if err != nil {
		t.Fatalf("save pool: %v", err)
	}

	b, err := svc.GenerateBento(ctx, GenerateRequest{PoolID: p.ID, Seed: 7})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if b.Style != bento.StyleJapanese && b.Style != bento.StyleHealthy {
		t.Fatalf("unexpected inferred style %q", b.Style)
	}
	if main := b.MainItem(); main == nil || main.Source.Recipe().ID != "r1" {
		t.Fatalf("expected r1 as main, got %+v", main)
	}

	if err := svc.DeletePool(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GenerateBento(ctx, GenerateRequest{PoolID: p.ID}); !errors.Is(err, common.ErrPoolNotFound) {
		t.Fatalf("expected pool not found, got %v", err)
	}
}

func TestGenerateBentoValidation(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  GenerateRequest
	}{
		{"no source", GenerateRequest{}},
		{"both sources", GenerateRequest{Recipes: lunchRecipes(), PoolID: "pool-x"}},
		{"unknown style", GenerateRequest{Recipes: lunchRecipes(), Style: "french"}},
		{"negative target", GenerateRequest{Recipes: lunchRecipes(), TargetCalories: -1}},
		{"too many recipes", GenerateRequest{Recipes: make([]bento.RecipeRecord, 6)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.GenerateBento(ctx, tt.req); !common.IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGenerateBentoInsufficient(t *testing.T) {
	svc := setupService(t)
	recipes := []bento.RecipeRecord{{ID: "r1", Title: "Chicken Teriyaki"}}

	_, err := svc.GenerateBento(context.Background(), GenerateRequest{Recipes: recipes})
	if !errors.Is(err, common.ErrInsufficientRecipes) {
		t.Fatalf("expected insufficient recipes, got %v", err)
	}
}

func TestGenerateBatch(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	bentos, err := svc.GenerateBatch(ctx, BatchRequest{Recipes: lunchRecipes(), Seed: 3})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(bentos) == 0 || len(bentos) > 3 {
		t.Fatalf("expected 1..3 bentos with default count, got %d", len(bentos))
	}

	if _, err := svc.GenerateBatch(ctx, BatchRequest{Recipes: lunchRecipes(), Count: 6}); !common.IsValidationError(err) {
		t.Fatalf("expected validation error above max count, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := svc.GenerateBatch(cancelled, BatchRequest{Recipes: lunchRecipes()}); !errors.Is(err, common.ErrRequestTimeout) {
		t.Fatalf("expected timeout on cancelled context, got %v", err)
	}
}

func TestComposition(t *testing.T) {
	svc := setupService(t)

	report, err := svc.Composition([]bento.RecipeRecord{{ID: "r1", Title: "Chicken Teriyaki"}})
	if err != nil {
		t.Fatalf("composition: %v", err)
	}
	if report.Roles["r1"] != bento.RoleMain {
		t.Fatalf("expected r1 main, got %q", report.Roles["r1"])
	}
	if len(report.Missing) != 2 || report.Missing[0] != bento.RoleSide || report.Missing[1] != bento.RoleRice {
		t.Fatalf("unexpected missing roles %v", report.Missing)
	}

	if _, err := svc.Composition(nil); !common.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestScaleRecipe(t *testing.T) {
	svc := setupService(t)
	recipe := bento.RecipeRecord{
		ID:    "r1",
		Title: "Chicken Teriyaki",
		Ingredients: []bento.Ingredient{
			{Name: "chicken thigh", Amount: "200g"},
			{Name: "salt"},
		},
		Nutrition: &bento.NutritionProfile{Calories: 400},
	}

	t.Run("containers", func(t *testing.T) {
		got, err := svc.ScaleRecipe(ScaleRequest{Recipe: recipe, ContainerCapacitiesML: []int{800, 400}})
		if err != nil {
			t.Fatalf("scale: %v", err)
		}
		if got.Multiplier != 1.5 {
			t.Fatalf("expected multiplier 1.5, got %v", got.Multiplier)
		}
		if got.BaseCalories != 400 || got.ScaledCalories != 600 {
			t.Fatalf("unexpected calories %d -> %d", got.BaseCalories, got.ScaledCalories)
		}
		if got.Ingredients[0].Amount != "300g" || got.Ingredients[0].Original != "200g" {
			t.Fatalf("unexpected ingredient %+v", got.Ingredients[0])
		}
		if got.Ingredients[1].Amount != "" {
			t.Fatalf("expected empty amount kept, got %q", got.Ingredients[1].Amount)
		}
	})

	t.Run("explicit multiplier wins", func(t *testing.T) {
		got, err := svc.ScaleRecipe(ScaleRequest{Recipe: recipe, ContainerCapacitiesML: []int{800}, Multiplier: 2})
		if err != nil {
			t.Fatalf("scale: %v", err)
		}
		if got.Multiplier != 2 || got.Ingredients[0].Amount != "400g" {
			t.Fatalf("unexpected result %+v", got)
		}
	})

	t.Run("breakfast portions", func(t *testing.T) {
		got, err := svc.ScaleRecipe(ScaleRequest{Recipe: recipe, BreakfastPortions: 1})
		if err != nil {
			t.Fatalf("scale: %v", err)
		}
		if got.Multiplier != 2 {
			t.Fatalf("expected multiplier 2, got %v", got.Multiplier)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		bad := []ScaleRequest{
			{Recipe: bento.RecipeRecord{ID: "x"}},
			{Recipe: recipe, Multiplier: -1},
			{Recipe: recipe, ContainerCapacitiesML: []int{0}},
		}
		for _, req := range bad {
			if _, err := svc.ScaleRecipe(req); !common.IsValidationError(err) {
				t.Fatalf("expected validation error for %+v, got %v", req, err)
			}
		}
	})
}
