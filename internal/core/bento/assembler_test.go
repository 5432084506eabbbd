package bento

import (
	"strings"
	"testing"
)

func scenarioPool() []RecipeRecord {
	return []RecipeRecord{
		{ID: "r1", Title: "Chicken Teriyaki"},
		{ID: "r2", Title: "Potato Salad"},
		{ID: "r3", Title: "Plain Rice"},
	}
}

func sumItems(items []BentoItem) NutritionProfile {
	var total NutritionProfile
	for _, it := range items {
		total = total.Add(it.ScaledNutrition)
	}
	return total
}

func TestAssembleScenario(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		b := NewAssembler(NewRandomSource(seed)).Assemble(scenarioPool(), 600, StyleJapanese)
		if b == nil {
			t.Fatalf("seed %d: expected bento, got nil", seed)
		}

		var mains, sides, rice int
		for _, it := range b.Items {
			id := it.Source.Recipe().ID
			switch it.Role {
			case RoleMain:
				mains++
				if id != "r1" {
					t.Fatalf("seed %d: expected r1 as main, got %s", seed, id)
				}
				if it.Portion < 0.6 || it.Portion > 0.7 {
					t.Fatalf("seed %d: main portion %v out of range", seed, it.Portion)
				}
			case RoleSide:
				sides++
				if id != "r2" {
					t.Fatalf("seed %d: expected r2 as side, got %s", seed, id)
				}
			case RoleRice:
				rice++
				if id != "r3" && !it.Source.IsPlaceholder() {
					t.Fatalf("seed %d: unexpected rice item %s", seed, id)
				}
			}
		}
		if mains != 1 || sides < 1 || rice != 1 {
			t.Fatalf("seed %d: expected 1 main, >=1 side, 1 rice; got %d/%d/%d", seed, mains, sides, rice)
		}

		if b.TotalNutrition != sumItems(b.Items) {
			t.Fatalf("seed %d: total %+v does not match items %+v", seed, b.TotalNutrition, sumItems(b.Items))
		}
		if b.TotalNutrition.Calories <= 0 {
			t.Fatalf("seed %d: expected positive calories", seed)
		}
		if b.Name != "Chicken Teriyaki Japanese-style bento" {
			t.Fatalf("seed %d: unexpected name %q", seed, b.Name)
		}
		if !strings.HasPrefix(b.ID, "bento-") {
			t.Fatalf("seed %d: unexpected id %q", seed, b.ID)
		}
	}
}

func TestAssembleInsufficientInput(t *testing.T) {
	tests := []struct {
		name string
		pool []RecipeRecord
	}{
		{"empty", nil},
		{"single recipe", []RecipeRecord{{ID: "r1", Title: "Chicken Teriyaki"}}},
		{"invalid entries filtered", []RecipeRecord{
			{ID: "r1", Title: "Chicken Teriyaki"},
			{ID: "", Title: "No ID"},
			{ID: "r3"},
		}},
		{"duplicate ids", []RecipeRecord{
			{ID: "r1", Title: "Chicken Teriyaki"},
			{ID: "r1", Title: "Chicken Teriyaki"},
		}},
	}

	a := NewAssembler(NewRandomSource(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if b := a.Assemble(tt.pool, 600, ""); b != nil {
				t.Fatalf("expected nil, got %+v", b)
			}
		})
	}
}

func TestAssembleRiceAsMain(t *testing.T) {
	pool := []RecipeRecord{
		{ID: "o1", Title: "鮭おにぎり"},
		{ID: "s1", Title: "Potato Salad"},
	}
	for seed := int64(1); seed <= 20; seed++ {
		b := NewAssembler(NewRandomSource(seed)).Assemble(pool, 600, "")
		if b == nil {
			t.Fatalf("seed %d: expected bento", seed)
		}
		main := b.MainItem()
		if main == nil || main.Source.Recipe().ID != "o1" || main.Portion != 0.8 {
			t.Fatalf("seed %d: expected onigiri promoted to main, got %+v", seed, main)
		}
		for _, it := range b.Items {
			if it.Role == RoleRice {
				t.Fatalf("seed %d: staple added although main is a rice dish", seed)
			}
		}
	}
}

func TestAssembleWithoutMain(t *testing.T) {
	pool := []RecipeRecord{
		{ID: "v1", Title: "Garden Salad"},
		{ID: "t1", Title: "Tofu Steak"},
	}
	b := NewAssembler(NewRandomSource(7)).Assemble(pool, 600, StyleBalanced)
	if b == nil {
		t.Fatal("expected bento, got nil")
	}
	if b.MainItem() != nil {
		t.Fatal("expected no main item")
	}
	if b.Name != "Assorted balanced bento" {
		t.Fatalf("unexpected name %q", b.Name)
	}

	var placeholder *BentoItem
	for i := range b.Items {
		if b.Items[i].Source.IsPlaceholder() {
			placeholder = &b.Items[i]
		}
	}
	if placeholder == nil {
		t.Fatal("expected synthesized rice")
	}
	rice := placeholder.Source.Recipe()
	if !strings.HasPrefix(rice.ID, PlaceholderPrefix) || placeholder.Portion != 1.0 || placeholder.Role != RoleRice {
		t.Fatalf("unexpected placeholder %+v", placeholder)
	}
	n := placeholder.ScaledNutrition
	if n.Calories <= 150 || n.Calories > 200 || n.Protein != 4 || n.Fat != 0.5 {
		t.Fatalf("unexpected placeholder nutrition %+v", n)
	}
}

func TestAssembleStyle(t *testing.T) {
	a := NewAssembler(NewRandomSource(3))

	b := a.Assemble(scenarioPool(), 600, StyleWestern)
	if b.Style != StyleWestern || !strings.HasSuffix(b.Name, "Western-style bento") {
		t.Fatalf("expected western style, got %s / %q", b.Style, b.Name)
	}

	// 估算值加總約 400 kcal，推斷為 healthy
	b = a.Assemble(scenarioPool(), 600, "")
	if b.Style != StyleHealthy {
		t.Fatalf("expected inferred healthy style, got %s", b.Style)
	}

	heavy := []RecipeRecord{
		{ID: "m1", Title: "Beef Stew", Nutrition: &NutritionProfile{Calories: 900, Protein: 40, Carbs: 30, Fat: 50}},
		{ID: "s1", Title: "Rolled Egg"},
		{ID: "r1", Title: "Plain Rice", Nutrition: &NutritionProfile{Calories: 250, Protein: 4, Carbs: 55, Fat: 0.5}},
	}
	b = a.Assemble(heavy, 800, "")
	if b.Style != StyleJapanese {
		t.Fatalf("expected inferred japanese style, got %s (%v kcal)", b.Style, b.TotalNutrition.Calories)
	}
}

func TestAssembleNoDuplicateRecipes(t *testing.T) {
	pool := []RecipeRecord{
		{ID: "m1", Title: "Chicken Teriyaki"},
		{ID: "m2", Title: "Pork Ginger"},
		{ID: "s1", Title: "Rolled Egg"},
		{ID: "s2", Title: "Tofu Steak"},
		{ID: "v1", Title: "Potato Salad"},
		{ID: "v2", Title: "Cabbage Roll", Nutrition: &NutritionProfile{Calories: 250}},
		{ID: "x1", Title: "Curry", Nutrition: &NutritionProfile{Calories: 450}},
		{ID: "r1", Title: "Plain Rice"},
	}
	for seed := int64(1); seed <= 100; seed++ {
		b := NewAssembler(NewRandomSource(seed)).Assemble(pool, 600, "")
		if b == nil {
			t.Fatalf("seed %d: expected bento", seed)
		}
		seen := map[string]bool{}
		for _, it := range b.Items {
			if it.Source.IsPlaceholder() {
				continue
			}
			id := it.Source.Recipe().ID
			if seen[id] {
				t.Fatalf("seed %d: recipe %s used twice", seed, id)
			}
			seen[id] = true
		}
		if b.TotalNutrition != sumItems(b.Items) {
			t.Fatalf("seed %d: total mismatch", seed)
		}
	}
}
