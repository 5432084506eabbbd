package bento

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// BaseContainerML 食譜一人份對應的便當容量（ml）
const BaseContainerML = 800

type unitKind int

const (
	unitCount unitKind = iota
	unitGram
	unitKilogram
	unitMilliliter
	unitLiter
	unitTablespoon
	unitTeaspoon
	unitCup
)

// unitKinds 單位（小寫）對應的換算方式
var unitKinds = map[string]unitKind{
	"個": unitCount, "本": unitCount, "枚": unitCount, "切れ": unitCount, "片": unitCount,
	"玉": unitCount, "房": unitCount, "束": unitCount, "袋": unitCount, "缶": unitCount, "パック": unitCount,
	"piece": unitCount, "pieces": unitCount, "pcs": unitCount, "slice": unitCount, "slices": unitCount,
	"clove": unitCount, "cloves": unitCount, "bunch": unitCount, "bunches": unitCount,
	"can": unitCount, "cans": unitCount, "pack": unitCount, "packs": unitCount,
	"package": unitCount, "packages": unitCount, "sheet": unitCount, "sheets": unitCount,

	"g": unitGram, "グラム": unitGram,
	"kg": unitKilogram, "キログラム": unitKilogram,
	"ml": unitMilliliter, "cc": unitMilliliter,
	"l": unitLiter, "リットル": unitLiter,

	"大さじ": unitTablespoon, "おおさじ": unitTablespoon, "大匙": unitTablespoon,
	"tablespoon": unitTablespoon, "tablespoons": unitTablespoon, "tbsp": unitTablespoon, "tbsps": unitTablespoon,
	"小さじ": unitTeaspoon, "こさじ": unitTeaspoon, "小匙": unitTeaspoon,
	"teaspoon": unitTeaspoon, "teaspoons": unitTeaspoon, "tsp": unitTeaspoon, "tsps": unitTeaspoon,

	"カップ": unitCup, "cup": unitCup, "cups": unitCup, "c": unitCup,
}

// numberPattern 帶分數（1 1/2）優先，其次整數、小數與分數
const numberPattern = `(?:\d+\s+\d+/\d+|\d+(?:\.\d+)?(?:/\d+)?)`

var (
	// quantityRe 數字 + 分隔 + 單位。英文單位需以字界結尾，避免吃到 "2 green onions" 的 g
	quantityRe = regexp.MustCompile(`(?i)(` + numberPattern + `)(\s*)(` +
		`大さじ|小さじ|おおさじ|こさじ|大匙|小匙|キログラム|グラム|リットル|カップ|パック|切れ|個|本|枚|片|玉|房|束|袋|缶|` +
		`(?:tablespoons?|tbsps?|teaspoons?|tsps?|cups?|pieces?|pcs|slices?|cloves?|bunch(?:es)?|cans?|packages?|packs?|sheets?|kg|g|ml|cc|l|c)\b)`)

	jaSpoonFirstRe = regexp.MustCompile(`(大さじ|小さじ|おおさじ|こさじ|大匙|小匙)\s*(` + numberPattern + `)`)
	enSpoonFirstRe = regexp.MustCompile(`(?i)\b(tablespoons?|tbsps?|teaspoons?|tsps?)\s+(` + numberPattern + `)`)

	bareNumberRe = regexp.MustCompile(`^` + numberPattern + `$`)
	percentRe    = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*%\s*(分|相当量|portion|serving|equivalent)`)

	vagueJaRe = regexp.MustCompile(`適量|少々|ひとつまみ|お好み`)
	vagueEnRe = regexp.MustCompile(`(?i)to taste|a pinch|a dash|as desired|as needed`)
)

// ScaleQuantityText 依倍率換算自由格式的分量文字，例如「大さじ2」「200g」「適量」。
// 無法解析的文字原樣回傳
func ScaleQuantityText(text string, multiplier float64, ingredientName string) string {
	if strings.TrimSpace(text) == "" || multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return text
	}
	name := strings.ToLower(ingredientName)

	note := normalizeWidth(text)
	if converted, ok := percentQuantity(note, name); ok {
		note = converted
	}

	note, enUnitFirst := numberFirst(note)

	scaled := quantityRe.ReplaceAllStringFunc(note, func(match string) string {
		m := quantityRe.FindStringSubmatch(match)
		v, ok := parseNumber(m[1])
		if !ok {
			return match
		}
		kind := unitKinds[strings.ToLower(m[3])]
		return renderQuantity(scaleAmount(v, kind, multiplier), kind, m[2], m[3], enUnitFirst)
	})

	if scaled == note {
		if trimmed := strings.TrimSpace(note); bareNumberRe.MatchString(trimmed) {
			if v, ok := parseNumber(trimmed); ok {
				scaled = scaleBareNumber(v, multiplier, name)
			}
		}
	}

	scaled = annotateVague(scaled, name, multiplier)

	if scaled == normalizeWidth(text) {
		return text
	}
	return scaled
}

// ContainerMultiplier 以 800ml 為一人份計算倍率，再加上早餐人份
func ContainerMultiplier(capacitiesML []int, breakfastPortions int) float64 {
	return ContainerMultiplierBase(BaseContainerML, capacitiesML, breakfastPortions)
}

// ContainerMultiplierBase 同 ContainerMultiplier，但可指定基準容量。
// 未選擇任何便當盒時倍率為 1
func ContainerMultiplierBase(baseML float64, capacitiesML []int, breakfastPortions int) float64 {
	if baseML <= 0 {
		baseML = BaseContainerML
	}
	multiplier := 1.0
	if len(capacitiesML) > 0 {
		total := 0
		for _, c := range capacitiesML {
			if c > 0 {
				total += c
			}
		}
		multiplier = float64(total) / baseML
	}
	if breakfastPortions > 0 {
		multiplier += float64(breakfastPortions)
	}
	return multiplier
}

// ScaleCalories 換算後的卡路里（四捨五入）
func ScaleCalories(kcal int, multiplier float64) int {
	return int(math.Round(float64(kcal) * multiplier))
}

// scaleAmount 依單位套用倍率與捨入規則
func scaleAmount(v float64, kind unitKind, multiplier float64) float64 {
	switch kind {
	case unitCount:
		return math.Ceil(v * math.Ceil(multiplier))
	case unitTablespoon:
		return halfStep(v * multiplier * 0.85)
	case unitTeaspoon:
		return halfStep(v * multiplier * 0.8)
	case unitGram, unitMilliliter:
		return math.Round(v * multiplier)
	case unitKilogram, unitLiter:
		return math.Round(v*multiplier*100) / 100
	default:
		return round1(v * multiplier)
	}
}

// halfStep 取到 0.5 單位，最少 0.5
func halfStep(v float64) float64 {
	return math.Max(0.5, roundHalf(v))
}

func roundHalf(v float64) float64 {
	return math.Round(v*2) / 2
}

// renderQuantity 組回文字。日文湯匙一律「單位+數字」；英文湯匙依輸入順序
func renderQuantity(v float64, kind unitKind, sep, unit string, enUnitFirst bool) string {
	ja := !isASCII(unit)
	if kind == unitTeaspoon && v >= 3 {
		return teaspoonsToTablespoons(v, unit, ja, enUnitFirst)
	}
	amount := formatAmount(v)
	switch {
	case ja && (kind == unitTablespoon || kind == unitTeaspoon):
		return unit + amount
	case enUnitFirst && (kind == unitTablespoon || kind == unitTeaspoon):
		return unit + " " + amount
	default:
		return amount + sep + unit
	}
}

// teaspoonsToTablespoons 小さじ 3 以上換成大さじ；有餘數時以「大さじNと小さじM」表示
func teaspoonsToTablespoons(tsp float64, unit string, ja, enUnitFirst bool) string {
	tbsp := tsp / 3
	whole := math.Floor(tbsp)
	rest := roundHalf((tbsp - whole) * 3)

	tbspUnit, tspUnit := "tablespoon", "teaspoon"
	if abbr := strings.ToLower(unit); strings.HasPrefix(abbr, "tsp") {
		tbspUnit, tspUnit = "tbsp", "tsp"
	}

	if rest > 0 && rest < 3 {
		switch {
		case ja:
			return "大さじ" + formatAmount(whole) + "と小さじ" + formatAmount(rest)
		case enUnitFirst:
			return tbspUnit + " " + formatAmount(whole) + " and " + tspUnit + " " + formatAmount(rest)
		default:
			return formatAmount(whole) + " " + tbspUnit + " and " + formatAmount(rest) + " " + tspUnit
		}
	}

	rounded := formatAmount(roundHalf(tbsp))
	switch {
	case ja:
		return "大さじ" + rounded
	case enUnitFirst:
		return tbspUnit + " " + rounded
	default:
		return rounded + " " + tbspUnit
	}
}

// numberFirst 將「大さじ2」「tablespoon 2」轉為數字在前，方便統一比對。
// 回傳是否有英文單位在前的寫法
func numberFirst(note string) (string, bool) {
	note = jaSpoonFirstRe.ReplaceAllString(note, "${2}${1}")
	enUnitFirst := enSpoonFirstRe.MatchString(note)
	if enUnitFirst {
		note = enSpoonFirstRe.ReplaceAllString(note, "${2} ${1}")
	}
	return note, enUnitFirst
}

// scaleBareNumber 沒有單位的數字，由食材名稱推測單位
func scaleBareNumber(v, multiplier float64, name string) string {
	ja := !isASCII(name)
	unit := func(jaUnit, enUnit string) string {
		if ja {
			return jaUnit
		}
		return enUnit
	}

	switch {
	case bareRootVegetable.in(name):
		return formatAmount(math.Round(v*math.Ceil(multiplier))) + unit("本", " pcs")
	case bareBulbVegetable.in(name):
		return formatAmount(math.Round(v*math.Ceil(multiplier))) + unit("個", " pcs")
	case bareWeighed.in(name):
		return formatAmount(math.Round(v*multiplier)) + "g"
	case bareLiquid.in(name):
		return formatAmount(math.Round(v*multiplier*0.85)) + "ml"
	default:
		return formatAmount(math.Round(v*multiplier)) + "g"
	}
}

// percentQuantity 將「60%分」這類全量比例換成具體分量
func percentQuantity(note, name string) (string, bool) {
	m := percentRe.FindStringSubmatch(note)
	if m == nil {
		return "", false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", false
	}
	ja := !isASCII(m[2])
	ratio := pct / 100

	grams := func(base float64) string {
		return formatAmount(math.Round(base*ratio)) + "g"
	}
	spoons := func(base float64) string {
		amount := roundHalf(base * ratio)
		if amount >= 1 {
			if ja {
				return formatAmount(amount) + "大さじ"
			}
			return formatAmount(amount) + " tablespoon"
		}
		if ja {
			return formatAmount(amount*3) + "小さじ"
		}
		return formatAmount(amount*3) + " teaspoon"
	}
	pieces := func(per float64, jaUnit, size string) string {
		count := formatAmount(math.Ceil(pct / per))
		if ja {
			return size + count + jaUnit
		}
		return count + " pieces"
	}

	switch {
	case ingredientMeat.in(name):
		return grams(200), true
	case ingredientFish.in(name), ingredientStarch.in(name):
		return grams(150), true
	case ingredientLiquid.in(name):
		return spoons(2), true
	case ingredientOil.in(name):
		return spoons(1.5), true
	case ingredientButter.in(name):
		return grams(20), true
	case ingredientOnion.in(name):
		count := formatAmount(math.Ceil(pct / 50))
		jaSize, enSize := "小", "small"
		switch {
		case pct >= 70:
			jaSize, enSize = "大", "large"
		case pct >= 40:
			jaSize, enSize = "中", "medium"
		}
		if ja {
			return jaSize + "サイズ" + count + "個", true
		}
		return count + " pieces (" + enSize + ")", true
	case ingredientCarrot.in(name):
		return grams(100), true
	case ingredientPotato.in(name):
		if ja {
			return pieces(30, "個", "中サイズ"), true
		}
		return formatAmount(math.Ceil(pct/30)) + " pieces (medium)", true
	case ingredientAvocado.in(name):
		return pieces(50, "個", ""), true
	case ingredientCucumber.in(name):
		return pieces(50, "本", ""), true
	case ingredientSaltSpice.in(name):
		switch {
		case pct >= 50 && ja:
			return "小さじ1", true
		case pct >= 50:
			return "1 teaspoon", true
		case ja:
			return "少々", true
		default:
			return "a pinch", true
		}
	case ingredientPowder.in(name):
		amount := formatAmount(roundHalf(ratio))
		if ja {
			return amount + "大さじ", true
		}
		return amount + " tablespoon", true
	default:
		return grams(100), true
	}
}

// annotateVague 處理「適量」「少々」等定性表現
func annotateVague(note, name string, multiplier float64) string {
	if loc := vagueJaRe.FindStringIndex(note); loc != nil {
		return replaceAt(note, loc, vagueJa(note[loc[0]:loc[1]], name, multiplier))
	}
	if loc := vagueEnRe.FindStringIndex(note); loc != nil {
		return replaceAt(note, loc, vagueEn(note[loc[0]:loc[1]], name, multiplier))
	}
	return note
}

func vagueJa(term, name string, m float64) string {
	salt, oil, liquid := vagueSalt.in(name), vagueOil.in(name), vagueLiquidSeasons.in(name)
	switch {
	case m >= 3:
		switch {
		case salt:
			return "小さじ" + formatAmount(roundHalf(m*0.4))
		case oil:
			return "大さじ" + formatAmount(roundHalf(m*0.85))
		case liquid:
			ml := math.Round(m * 15)
			if ml >= 200 {
				return fmt.Sprintf("%sml（約%sカップ）", formatAmount(ml), formatAmount(math.Round(ml/200)))
			}
			return "大さじ" + formatAmount(roundHalf(ml/15)) + "程度"
		default:
			return fmt.Sprintf("%s（%.1f倍量）", term, m)
		}
	case m >= 2:
		switch {
		case salt:
			return term + "（小さじ1/4～1/2程度）"
		case oil:
			return term + "（大さじ1～2程度）"
		default:
			return term + "（やや多めに）"
		}
	case m < 1:
		if salt {
			return term + "（控えめに）"
		}
		return term + "（少なめに）"
	}
	return term
}

func vagueEn(term, name string, m float64) string {
	salt, oil, liquid := vagueSalt.in(name), vagueOil.in(name), vagueLiquidSeasons.in(name)
	switch {
	case m >= 3:
		switch {
		case salt:
			return formatAmount(roundHalf(m*0.4)) + " teaspoon"
		case oil:
			return formatAmount(roundHalf(m*0.85)) + " tablespoon"
		case liquid:
			ml := math.Round(m * 15)
			if ml >= 200 {
				return fmt.Sprintf("%sml (about %s cups)", formatAmount(ml), formatAmount(math.Round(ml/200)))
			}
			return "about " + formatAmount(roundHalf(ml/15)) + " tablespoon"
		default:
			return fmt.Sprintf("%s (%.1fx)", term, m)
		}
	case m >= 2:
		switch {
		case salt:
			return term + " (about 1/4-1/2 teaspoon)"
		case oil:
			return term + " (about 1-2 tablespoon)"
		default:
			return term + " (a little more)"
		}
	case m < 1:
		return term + " (reduced)"
	}
	return term
}

func replaceAt(s string, loc []int, repl string) string {
	return s[:loc[0]] + repl + s[loc[1]:]
}

// normalizeWidth 全形英數與符號轉半形（片假名維持原樣）。非法 UTF-8 原樣回傳
func normalizeWidth(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r >= '！' && r <= '～' {
			return width.LookupRune(r).Narrow()
		}
		return r
	}, s)
}

// parseNumber 解析整數、小數、簡單分數（1/2）與帶分數（1 1/2）
func parseNumber(s string) (float64, bool) {
	if fields := strings.Fields(s); len(fields) == 2 {
		whole, err := strconv.ParseFloat(fields[0], 64)
		frac, ok := parseNumber(fields[1])
		if err != nil || !ok || !strings.Contains(fields[1], "/") {
			return 0, false
		}
		return whole + frac, true
	}
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

// formatAmount 整數不顯示小數點
func formatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
