package bento

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bento-planner/internal/pkg/common"
)

// DefaultTargetCalories 未指定目標卡路里時使用
const DefaultTargetCalories = 600

// 份量區間
const (
	mainPortionMin      = 0.6
	mainPortionMax      = 0.7
	promotedMainPortion = 0.8
	sidePortionMin      = 0.3
	sidePortionMax      = 0.5
	vegPortionMin       = 0.2
	vegPortionMax       = 0.4
	maxSides            = 2
)

// 白飯預算
const (
	minRemainingCalories = 100
	maxRiceCalories      = 200
	riceBudgetShare      = 0.4
	healthyCalorieLimit  = 500
)

var styleSuffixes = map[Style]string{
	StyleJapanese: "Japanese-style bento",
	StyleWestern:  "Western-style bento",
	StyleHealthy:  "healthy bento",
	StyleBalanced: "balanced bento",
}

// Assembler 從食譜池組出一個便當
type Assembler struct {
	rng RandomSource
}

// NewAssembler 建立組裝器；rng 為 nil 時以時間為種子
func NewAssembler(rng RandomSource) *Assembler {
	if rng == nil {
		rng = NewRandomSource(0)
	}
	return &Assembler{rng: rng}
}

// buckets 依角色分好的候選（米飯料理不進入其他分類，其餘分類可重疊）
type buckets struct {
	rice, main, side, vegetable, other []RecipeRecord
}

func partition(recipes []RecipeRecord) buckets {
	var b buckets
	for _, r := range recipes {
		if IsRice(r) {
			b.rice = append(b.rice, r)
			continue
		}
		main, side, veg := IsMain(r), IsSide(r), IsVegetable(r)
		if main {
			b.main = append(b.main, r)
		}
		if side {
			b.side = append(b.side, r)
		}
		if veg {
			b.vegetable = append(b.vegetable, r)
		}
		if !main && !side && !veg {
			b.other = append(b.other, r)
		}
	}
	return b
}

// plan 組裝中的狀態
type plan struct {
	items    []BentoItem
	used     map[string]bool
	calories float64
	riceMain bool
}

func (p *plan) add(src ItemSource, portion float64, role Role, base NutritionProfile) {
	scaled := Scale(base, portion)
	p.items = append(p.items, BentoItem{
		Source:          src,
		Portion:         portion,
		Role:            role,
		ScaledNutrition: scaled,
	})
	if !src.IsPlaceholder() {
		p.used[src.Recipe().ID] = true
	}
	p.calories += scaled.Calories
}

func (p *plan) unused(recipes []RecipeRecord) []RecipeRecord {
	out := make([]RecipeRecord, 0, len(recipes))
	for _, r := range recipes {
		if !p.used[r.ID] {
			out = append(out, r)
		}
	}
	return out
}

// Assemble 組出一個便當。有效食譜少於兩道時回傳 nil。
// targetCalories <= 0 時使用 DefaultTargetCalories；style 為空或未知時依總卡路里推斷
func (a *Assembler) Assemble(pool []RecipeRecord, targetCalories float64, style Style) *Bento {
	valid := make([]RecipeRecord, 0, len(pool))
	seen := make(map[string]bool, len(pool))
	for _, r := range pool {
		if !r.valid() {
			common.LogDebug("略過無效食譜", zap.String("id", r.ID), zap.String("title", r.Title))
			continue
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		valid = append(valid, r)
	}
	if len(valid) < 2 {
		common.LogDebug("有效食譜不足", zap.Int("valid", len(valid)), zap.Int("total", len(pool)))
		return nil
	}
	if targetCalories <= 0 {
		targetCalories = DefaultTargetCalories
	}

	b := partition(valid)
	p := &plan{used: make(map[string]bool)}

	a.pickMain(p, &b)
	a.pickSides(p, b)
	a.pickVegetable(p, b)
	a.pickRice(p, b, targetCalories)

	if len(p.items) < 2 {
		common.LogDebug("便當品項不足", zap.Int("items", len(p.items)))
		return nil
	}

	var total NutritionProfile
	for _, it := range p.items {
		total = total.Add(it.ScaledNutrition)
	}

	if !style.Valid() {
		style = StyleJapanese
		if total.Calories < healthyCalorieLimit {
			style = StyleHealthy
		}
	}

	bento := &Bento{
		ID:             "bento-" + uuid.NewString(),
		Items:          p.items,
		TotalNutrition: total,
		Style:          style,
	}
	bento.Name = bentoName(bento)
	bento.Description = bentoDescription(bento)
	return bento
}

// pickMain 主菜優先；沒有時由米飯料理或未分類料理頂替
func (a *Assembler) pickMain(p *plan, b *buckets) {
	switch {
	case len(b.main) > 0:
		r := b.main[pick(a.rng, b.main)]
		p.add(Real(r), uniform(a.rng, mainPortionMin, mainPortionMax), RoleMain, Estimate(r))
	case len(b.rice) > 0:
		i := pick(a.rng, b.rice)
		r := b.rice[i]
		b.rice = append(b.rice[:i:i], b.rice[i+1:]...)
		p.add(Real(r), promotedMainPortion, RoleMain, Estimate(r))
		p.riceMain = true
	case len(b.other) > 0:
		r := b.other[pick(a.rng, b.other)]
		p.add(Real(r), promotedMainPortion, RoleMain, Estimate(r))
	}
}

// pickSides 從副菜與未分類料理中挑 1 到 2 道（兩者互斥）
func (a *Assembler) pickSides(p *plan, b buckets) {
	candidates := p.unused(append(append([]RecipeRecord{}, b.side...), b.other...))
	for n := 0; n < maxSides && len(candidates) > 0; n++ {
		i := pick(a.rng, candidates)
		r := candidates[i]
		candidates = append(candidates[:i:i], candidates[i+1:]...)
		p.add(Real(r), uniform(a.rng, sidePortionMin, sidePortionMax), RoleSide, Estimate(r))
	}
}

// pickVegetable 最多一道野菜料理
func (a *Assembler) pickVegetable(p *plan, b buckets) {
	candidates := p.unused(b.vegetable)
	if len(candidates) == 0 {
		return
	}
	r := candidates[pick(a.rng, candidates)]
	p.add(Real(r), uniform(a.rng, vegPortionMin, vegPortionMax), RoleVegetable, Estimate(r))
}

// pickRice 補上主食；主菜已是米飯料理時略過
func (a *Assembler) pickRice(p *plan, b buckets, targetCalories float64) {
	if p.riceMain {
		return
	}
	remaining := math.Max(minRemainingCalories, targetCalories-p.calories)
	budget := math.Min(maxRiceCalories, remaining*riceBudgetShare)

	if candidates := p.unused(b.rice); len(candidates) > 0 {
		r := candidates[pick(a.rng, candidates)]
		base := Estimate(r)
		portion := 1.0
		if base.Calories > 0 {
			portion = math.Min(1.0, budget/base.Calories)
		}
		p.add(Real(r), portion, RoleRice, base)
		return
	}

	n := NutritionProfile{
		Calories: math.Round(budget),
		Protein:  math.Round(budget * 0.02),
		Carbs:    math.Round(budget * 0.23),
		Fat:      0.5,
	}
	p.add(SyntheticRice(uuid.NewString(), n), 1.0, RoleRice, n)
}

func bentoName(b *Bento) string {
	suffix := styleSuffixes[b.Style]
	if main := b.MainItem(); main != nil {
		return main.Source.Recipe().Title + " " + suffix
	}
	return "Assorted " + suffix
}

func bentoDescription(b *Bento) string {
	dishes := 0
	for _, it := range b.Items {
		if it.Role != RoleRice {
			dishes++
		}
	}
	return fmt.Sprintf("A balanced bento with %d dishes. %s kcal, %.1fg protein.",
		dishes, formatAmount(b.TotalNutrition.Calories), b.TotalNutrition.Protein)
}
