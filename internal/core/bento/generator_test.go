package bento

import "testing"

type panicRandom struct{}

func (panicRandom) Float64() float64 { panic("rng exhausted") }
func (panicRandom) Intn(int) int     { panic("rng exhausted") }

func batchPool() []RecipeRecord {
	return []RecipeRecord{
		{ID: "m1", Title: "Chicken Teriyaki"},
		{ID: "m2", Title: "Pork Ginger"},
		{ID: "m3", Title: "Beef Stew"},
		{ID: "s1", Title: "Rolled Egg"},
		{ID: "s2", Title: "Tofu Steak"},
		{ID: "s3", Title: "Cold Noodles"},
		{ID: "r1", Title: "Plain Rice"},
		{ID: "r2", Title: "Salmon Onigiri"},
		{ID: "r3", Title: "Fried Rice"},
	}
}

func TestGenerateBatchDistinctMains(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		bentos := NewGenerator(NewRandomSource(seed)).GenerateBatch(batchPool(), 3)
		if len(bentos) != 3 {
			t.Fatalf("seed %d: expected 3 bentos, got %d", seed, len(bentos))
		}
		mains := map[string]bool{}
		for i, b := range bentos {
			main := b.MainItem()
			if main == nil {
				t.Fatalf("seed %d: bento %d has no main", seed, i)
			}
			id := main.Source.Recipe().ID
			if mains[id] {
				t.Fatalf("seed %d: main %s repeated", seed, id)
			}
			mains[id] = true
		}
	}
}

func TestGenerateBatchRotation(t *testing.T) {
	bentos := NewGenerator(NewRandomSource(42)).GenerateBatch(batchPool(), 4)
	want := []Style{StyleJapanese, StyleHealthy, StyleBalanced, StyleJapanese}
	if len(bentos) != len(want) {
		t.Fatalf("expected %d bentos, got %d", len(want), len(bentos))
	}
	for i, b := range bentos {
		if b.Style != want[i] {
			t.Fatalf("bento %d: expected style %s, got %s", i, want[i], b.Style)
		}
	}
}

func TestGenerateBatchResetsWhenExhausted(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		bentos := NewGenerator(NewRandomSource(seed)).GenerateBatch(scenarioPool(), 5)
		if len(bentos) != 5 {
			t.Fatalf("seed %d: expected 5 bentos after reuse, got %d", seed, len(bentos))
		}
		for i, b := range bentos {
			if b == nil || len(b.Items) < 2 {
				t.Fatalf("seed %d: bento %d incomplete", seed, i)
			}
		}
	}
}

func TestGenerateBatchEdgeCases(t *testing.T) {
	g := NewGenerator(NewRandomSource(1))

	if got := g.GenerateBatch(batchPool(), 0); len(got) != 0 {
		t.Fatalf("expected empty batch for count 0, got %d", len(got))
	}
	if got := g.GenerateBatch(batchPool(), -2); len(got) != 0 {
		t.Fatalf("expected empty batch for negative count, got %d", len(got))
	}
	if got := g.GenerateBatch([]RecipeRecord{{ID: "r1", Title: "Chicken Teriyaki"}}, 3); len(got) != 0 {
		t.Fatalf("expected empty batch for tiny pool, got %d", len(got))
	}
}

func TestGenerateBatchRecoversPerIteration(t *testing.T) {
	g := &Generator{rng: panicRandom{}, assembler: NewAssembler(panicRandom{})}
	got := g.GenerateBatch(batchPool(), 3)
	if len(got) != 0 {
		t.Fatalf("expected every iteration skipped, got %d", len(got))
	}
}
