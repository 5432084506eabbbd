package bento

import "math"

// estimateRule 標題關鍵字對應的預設營養值
type estimateRule struct {
	keywords keywordSet
	profile  NutritionProfile
}

// estimateRules 依優先順序比對，第一個命中者生效
var estimateRules = []estimateRule{
	{estimateMeatKeywords, NutritionProfile{Calories: 300, Protein: 25, Carbs: 10, Fat: 15}},
	{estimateFishKeywords, NutritionProfile{Calories: 200, Protein: 20, Carbs: 5, Fat: 8}},
	{estimateVegetableKeywords, NutritionProfile{Calories: 80, Protein: 3, Carbs: 15, Fat: 1}},
	{estimateEggKeywords, NutritionProfile{Calories: 150, Protein: 12, Carbs: 2, Fat: 10}},
}

// defaultEstimate 無法分類時的預設值
var defaultEstimate = NutritionProfile{Calories: 150, Protein: 8, Carbs: 20, Fat: 5}

// Estimate 推估食譜的每份營養。已有權威營養值（卡路里 > 0）時直接回傳
func Estimate(recipe RecipeRecord) NutritionProfile {
	if n := recipe.Nutrition; n != nil && n.Calories > 0 {
		return clampProfile(*n)
	}
	for _, rule := range estimateRules {
		if rule.keywords.in(recipe.Title) {
			return rule.profile
		}
	}
	return defaultEstimate
}

// Scale 依份量比例換算營養：卡路里取整數，其餘取到小數一位
func Scale(base NutritionProfile, portion float64) NutritionProfile {
	return NutritionProfile{
		Calories: math.Round(base.Calories * portion),
		Protein:  round1(base.Protein * portion),
		Carbs:    round1(base.Carbs * portion),
		Fat:      round1(base.Fat * portion),
	}
}

// EstimateCaloriesPerServing 以食材數、標題與價位推估一人份卡路里
// CookingTime 目前不影響結果
func EstimateCaloriesPerServing(recipe RecipeRecord) int {
	if n := recipe.Nutrition; n != nil && n.Calories > 0 {
		return int(math.Round(n.Calories))
	}

	count := len(recipe.Ingredients)
	if count == 0 {
		count = 5
	}

	var kcal int
	switch {
	case count <= 3:
		kcal = 150
	case count <= 5:
		kcal = 250
	case count <= 8:
		kcal = 350
	default:
		kcal = 450
	}

	switch {
	case friedKeywords.in(recipe.Title):
		kcal += 100
	case lightKeywords.in(recipe.Title):
		kcal -= 50
	case richMeatKeywords.in(recipe.Title):
		kcal += 50
	}

	switch {
	case recipe.CostTier == "":
	case expensiveCostTiers.in(recipe.CostTier):
		kcal += 50
	case cheapCostTiers.in(recipe.CostTier):
		kcal -= 30
	}

	return kcal
}

// clampProfile 確保所有欄位非負
func clampProfile(n NutritionProfile) NutritionProfile {
	return NutritionProfile{
		Calories: math.Max(0, n.Calories),
		Protein:  math.Max(0, n.Protein),
		Carbs:    math.Max(0, n.Carbs),
		Fat:      math.Max(0, n.Fat),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
