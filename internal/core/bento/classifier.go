package bento

// roleRule 一條角色判定規則
type roleRule struct {
	role  Role
	match func(r RecipeRecord) bool
}

// Classifier 依序套用規則判定料理角色，第一個命中者生效
type Classifier struct {
	rules []roleRule
}

// NewClassifier 建立預設規則的分類器
// 順序：ご飯類 → 主菜 → 副菜 → 野菜 → unknown
func NewClassifier() *Classifier {
	return &Classifier{
		rules: []roleRule{
			{RoleRice, IsRice},
			{RoleMain, IsMain},
			{RoleSide, IsSide},
			{RoleVegetable, IsVegetable},
		},
	}
}

var defaultClassifier = NewClassifier()

// Classify 以預設分類器判定角色
func Classify(recipe RecipeRecord) Role {
	return defaultClassifier.Classify(recipe)
}

// Classify 判定角色；同樣的輸入永遠得到同樣的結果
func (c *Classifier) Classify(recipe RecipeRecord) Role {
	for _, rule := range c.rules {
		if rule.match(recipe) {
			return rule.role
		}
	}
	return RoleUnknown
}

// IsRice 是否為米飯料理（標題判定）
func IsRice(r RecipeRecord) bool {
	if riceKeywords.in(r.Title) {
		return true
	}
	for _, c := range riceCompounds {
		if c.in(r.Title) {
			return true
		}
	}
	return false
}

// IsMain 標題或描述含肉/魚，且推估卡路里超過 200
func IsMain(r RecipeRecord) bool {
	if !mainKeywords.in(r.Title) && !mainKeywords.in(r.Description) {
		return false
	}
	return Estimate(r).Calories > 200
}

// IsSide 標題含蛋/豆腐/麵，或推估卡路里低於 200
func IsSide(r RecipeRecord) bool {
	return sideKeywords.in(r.Title) || Estimate(r).Calories < 200
}

// IsVegetable 標題含蔬菜類關鍵字
func IsVegetable(r RecipeRecord) bool {
	return vegetableKeywords.in(r.Title)
}

// CompositionReport 一組食譜的角色組成
type CompositionReport struct {
	Roles   map[string]Role `json:"roles"`
	Missing []Role          `json:"missing"`
}

// Composition 回報每道菜的角色，以及便當還缺的主菜/副菜/米飯
func Composition(recipes []RecipeRecord) CompositionReport {
	report := CompositionReport{Roles: make(map[string]Role, len(recipes))}
	has := make(map[Role]bool)
	for _, r := range recipes {
		role := Classify(r)
		report.Roles[r.ID] = role
		has[role] = true
	}
	// 野菜料理也算副菜
	if has[RoleVegetable] {
		has[RoleSide] = true
	}
	for _, role := range []Role{RoleMain, RoleSide, RoleRice} {
		if !has[role] {
			report.Missing = append(report.Missing, role)
		}
	}
	return report
}
