package bento

import "strings"

// keywordSet 關鍵字集合，比對時以小寫子字串判斷
type keywordSet []string

// in 文字是否包含任一關鍵字
func (k keywordSet) in(text string) bool {
	text = strings.ToLower(text)
	for _, kw := range k {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// compoundKeyword 主詞加上任一修飾詞才成立（例如「米」+「炊」）
type compoundKeyword struct {
	base string
	with keywordSet
}

func (c compoundKeyword) in(text string) bool {
	return strings.Contains(strings.ToLower(text), c.base) && c.with.in(text)
}

// 營養推估用的標題關鍵字
var (
	estimateMeatKeywords      = keywordSet{"肉", "鶏", "豚", "牛", "meat", "chicken", "pork", "beef"}
	estimateFishKeywords      = keywordSet{"魚", "サーモン", "サバ", "fish", "salmon", "mackerel", "seafood", "shrimp", "tuna"}
	estimateVegetableKeywords = keywordSet{"野菜", "サラダ", "vegetable", "veggie", "salad", "eggplant"}
	estimateEggKeywords       = keywordSet{"卵", "egg"}
)

// 角色判定用的關鍵字
var (
	riceKeywords = keywordSet{
		"ご飯", "御飯", "ごはん", "ライス", "チャーハン", "炒飯", "おにぎり", "おむすび", "丼",
		"赤飯", "炊き込みご飯", "混ぜご飯", "ちらし寿司", "散らし寿司", "海苔巻き", "巻き寿司", "寿司",
		"ピラフ", "リゾット", "雑炊", "お粥", "おかゆ",
		"rice", "onigiri", "donburi", "sushi", "porridge", "congee", "pilaf", "risotto", "paella",
	}
	riceCompounds = []compoundKeyword{
		{base: "米", with: keywordSet{"炊", "煮"}},
	}
	mainKeywords      = keywordSet{"肉", "魚", "鶏", "meat", "chicken", "pork", "beef", "fish", "salmon", "mackerel", "seafood", "shrimp"}
	sideKeywords      = keywordSet{"卵", "豆腐", "麺", "egg", "tofu", "noodle"}
	vegetableKeywords = keywordSet{"野菜", "サラダ", "きのこ", "キャベツ", "にんじん", "vegetable", "salad", "mushroom", "cabbage", "carrot"}
)

// 卡路里推估（菜單詳細頁）用的關鍵字
var (
	friedKeywords      = keywordSet{"揚げ", "フライ", "天ぷら", "とんかつ", "カツ", "唐揚げ", "fried", "fry", "tempura", "cutlet", "katsu", "karaage"}
	lightKeywords      = keywordSet{"サラダ", "野菜", "きのこ", "こんにゃく", "salad", "vegetable", "mushroom", "konjac"}
	richMeatKeywords   = keywordSet{"肉", "豚", "牛", "鶏", "meat", "pork", "beef", "chicken"}
	expensiveCostTiers = keywordSet{"300円以上", "500円"}
	cheapCostTiers     = keywordSet{"100円以下"}
)

// 食材名稱分類（份量換算用），判定順序與 percentCategories 一致
var (
	ingredientMeat      = keywordSet{"牛肉", "豚肉", "鶏肉", "肉", "ビーフ", "ポーク", "beef", "pork", "chicken", "meat", "lamb"}
	ingredientFish      = keywordSet{"サーモン", "鮭", "魚", "エビ", "タコ", "イカ", "salmon", "fish", "shrimp", "prawn", "octopus", "squid", "tuna", "cod"}
	ingredientStarch    = keywordSet{"米", "ご飯", "パン", "麺", "うどん", "そば", "rice", "bread", "noodle", "udon", "soba", "pasta"}
	ingredientLiquid    = keywordSet{"醤油", "みりん", "酒", "酢", "ソース", "soy sauce", "mirin", "sake", "vinegar", "sauce"}
	ingredientOil       = keywordSet{"油", "オイル", "オリーブ", "oil", "olive"}
	ingredientButter    = keywordSet{"バター", "マーガリン", "butter", "margarine"}
	ingredientOnion     = keywordSet{"玉ねぎ", "たまねぎ", "onion"}
	ingredientCarrot    = keywordSet{"にんじん", "人参", "carrot"}
	ingredientPotato    = keywordSet{"じゃがいも", "ジャガイモ", "potato"}
	ingredientAvocado   = keywordSet{"アボカド", "avocado"}
	ingredientCucumber  = keywordSet{"きゅうり", "cucumber"}
	ingredientSaltSpice = keywordSet{"塩", "胡椒", "こしょう", "salt", "pepper"}
	ingredientPowder    = keywordSet{"砂糖", "小麦粉", "片栗粉", "sugar", "flour", "starch"}

	// 無單位數字的推測
	bareRootVegetable  = keywordSet{"きゅうり", "にんじん", "人参", "大根", "ごぼう", "なす", "ピーマン", "トマト", "cucumber", "carrot", "daikon", "burdock", "eggplant", "bell pepper", "tomato"}
	bareBulbVegetable  = keywordSet{"玉ねぎ", "たまねぎ", "じゃがいも", "キャベツ", "レタス", "onion", "potato", "cabbage", "lettuce"}
	bareWeighed        = keywordSet{"もやし", "ひき肉", "挽肉", "肉", "魚", "豆腐", "チーズ", "bean sprout", "ground", "mince", "meat", "fish", "tofu", "cheese"}
	bareLiquid         = keywordSet{"水", "だし", "汁", "スープ", "牛乳", "酒", "みりん", "醤油", "酢", "油", "water", "dashi", "stock", "broth", "soup", "milk", "sake", "mirin", "soy sauce", "vinegar", "oil"}
	vagueLiquidSeasons = keywordSet{"水", "だし", "汁", "スープ", "牛乳", "酒", "みりん", "醤油", "酢", "water", "dashi", "stock", "broth", "soup", "milk", "sake", "mirin", "soy sauce", "vinegar"}
	vagueSalt          = keywordSet{"塩", "こしょう", "胡椒", "salt", "pepper"}
	vagueOil           = keywordSet{"油", "オイル", "oil"}
)
