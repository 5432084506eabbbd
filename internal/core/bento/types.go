// Package bento 便當自動生成與份量換算引擎
package bento

import (
	"encoding/json"
	"math"
)

// Role 料理在便當中的角色
type Role string

const (
	RoleRice      Role = "rice"
	RoleMain      Role = "main"
	RoleSide      Role = "side"
	RoleVegetable Role = "vegetable"
	RoleUnknown   Role = "unknown"
)

// Style 便當風格（只影響命名）
type Style string

const (
	StyleJapanese Style = "japanese"
	StyleWestern  Style = "western"
	StyleHealthy  Style = "healthy"
	StyleBalanced Style = "balanced"
)

// Valid 檢查風格是否為已知值
func (s Style) Valid() bool {
	switch s {
	case StyleJapanese, StyleWestern, StyleHealthy, StyleBalanced:
		return true
	}
	return false
}

// Ingredient 食材
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
}

// NutritionProfile 營養資訊（每份或已換算）
type NutritionProfile struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Add 逐項相加
func (n NutritionProfile) Add(o NutritionProfile) NutritionProfile {
	return NutritionProfile{
		Calories: n.Calories + o.Calories,
		Protein:  round1(n.Protein + o.Protein),
		Carbs:    round1(n.Carbs + o.Carbs),
		Fat:      round1(n.Fat + o.Fat),
	}
}

// RecipeRecord 外部來源的食譜（唯讀）
type RecipeRecord struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Ingredients []Ingredient      `json:"ingredients,omitempty"`
	CostTier    string            `json:"cost_tier,omitempty"`
	CookingTime string            `json:"cooking_time,omitempty"`
	Servings    string            `json:"servings,omitempty"`
	Nutrition   *NutritionProfile `json:"nutrition,omitempty"`
}

// valid 是否具備 id 與 title
func (r RecipeRecord) valid() bool {
	return r.ID != "" && r.Title != ""
}

// PlaceholderPrefix 合成白飯的 id 前綴
const PlaceholderPrefix = "rice-"

// ItemSource 便當項目的來源：真實食譜或合成白飯
type ItemSource struct {
	recipe      RecipeRecord
	placeholder bool
}

// Real 以食譜建立來源
func Real(r RecipeRecord) ItemSource {
	return ItemSource{recipe: r}
}

// SyntheticRice 以營養值建立合成白飯
func SyntheticRice(id string, n NutritionProfile) ItemSource {
	grains := math.Round(n.Calories / 150)
	return ItemSource{
		recipe: RecipeRecord{
			ID:          PlaceholderPrefix + id,
			Title:       "ご飯",
			Description: "炊きたての白いご飯",
			CookingTime: "30分",
			Servings:    "1人分",
			CostTier:    "〜100円",
			Ingredients: []Ingredient{{Name: "白米", Amount: formatAmount(grains) + "合"}},
			Nutrition:   &n,
		},
		placeholder: true,
	}
}

// IsPlaceholder 是否為合成白飯（不屬於食譜池）
func (s ItemSource) IsPlaceholder() bool {
	return s.placeholder
}

// Recipe 取得顯示用食譜
func (s ItemSource) Recipe() RecipeRecord {
	return s.recipe
}

// BentoItem 便當中的一道菜
type BentoItem struct {
	Source          ItemSource       `json:"-"`
	Portion         float64          `json:"portion"`
	Role            Role             `json:"role"`
	ScaledNutrition NutritionProfile `json:"scaled_nutrition"`
}

// MarshalJSON 將來源攤平成 recipe 與 placeholder 欄位
func (it BentoItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Recipe          RecipeRecord     `json:"recipe"`
		Placeholder     bool             `json:"placeholder"`
		Portion         float64          `json:"portion"`
		Role            Role             `json:"role"`
		ScaledNutrition NutritionProfile `json:"scaled_nutrition"`
	}{
		Recipe:          it.Source.Recipe(),
		Placeholder:     it.Source.IsPlaceholder(),
		Portion:         it.Portion,
		Role:            it.Role,
		ScaledNutrition: it.ScaledNutrition,
	})
}

// Bento 生成的便當
type Bento struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Items          []BentoItem      `json:"items"`
	TotalNutrition NutritionProfile `json:"total_nutrition"`
	Style          Style            `json:"style"`
}

// MainItem 取得主菜，沒有時回傳 nil
func (b *Bento) MainItem() *BentoItem {
	for i := range b.Items {
		if b.Items[i].Role == RoleMain {
			return &b.Items[i]
		}
	}
	return nil
}
