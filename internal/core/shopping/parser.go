package shopping

import (
	"regexp"
	"strconv"
	"strings"
)

// Parsed 單行文字的解析結果
type Parsed struct {
	Name     string
	Quantity *float64
	Unit     string
}

// 數量（整數、小數、a/b 分數或帶分數）+ 可選單位 + 名稱
var ingredientLinePattern = regexp.MustCompile(`(?i)^\s*` +
	`(?:(\d+(?:[.,]\d+)?)(?:\s+(\d+)\s*/\s*(\d+)|\s*/\s*(\d+))?\s*` +
	`(?:(kilograms?|kgs?|grams?|gr|g|millilit(?:re|er)s?|ml|lit(?:re|er)s?|l|teaspoons?|tsps?|tablespoons?|tbsps?|tbs|cups?|slices?|pieces?|pcs|pc|items?|tins?|cans?|jars?|bags?|packets?|packs?|tubs?|portions?|x)\b\.?)?)?` +
	`\s*(.*)$`)

var unitAliases = map[string]string{
	"g": "g", "gr": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kgs": "kg", "kilogram": "kg", "kilograms": "kg",
	"ml": "ml", "millilitre": "ml", "millilitres": "ml", "milliliter": "ml", "milliliters": "ml",
	"l": "l", "litre": "l", "litres": "l", "liter": "l", "liters": "l",
	"tsp": "tsp", "tsps": "tsp", "teaspoon": "tsp", "teaspoons": "tsp",
	"tbsp": "tbsp", "tbsps": "tbsp", "tbs": "tbsp", "tablespoon": "tbsp", "tablespoons": "tbsp",
	"cup": "cup", "cups": "cup",
	"slice": "slice", "slices": "slice",
	"pcs": "pcs", "pc": "pcs", "piece": "pcs", "pieces": "pcs",
	"item": "item", "items": "item",
	"tin": "tin", "tins": "tin", "can": "tin", "cans": "tin",
	"jar": "jar", "jars": "jar",
	"bag": "bag", "bags": "bag",
	"pack": "pack", "packs": "pack", "packet": "pack", "packets": "pack",
	"tub": "tub", "tubs": "tub",
	"portion": "portion", "portions": "portion",
}

// 常見的 Unicode 分數字元，"1½" 轉為帶分數 "1 1/2"
var vulgarFractions = strings.NewReplacer(
	"½", " 1/2", "⅓", " 1/3", "⅔", " 2/3", "¼", " 1/4", "¾", " 3/4",
	"⅛", " 1/8", "⅜", " 3/8", "⅝", " 5/8", "⅞", " 7/8",
)

// NormalizeUnit 將單位別名收斂為短代碼，未知單位只轉小寫
func NormalizeUnit(unit string) string {
	u := strings.Trim(strings.ToLower(strings.TrimSpace(unit)), ".")
	if code, ok := unitAliases[u]; ok {
		return code
	}
	return u
}

// ParseIngredientText 從一行文字取出名稱、數量與單位，永不失敗
func ParseIngredientText(raw string) Parsed {
	trimmed := strings.TrimSpace(vulgarFractions.Replace(raw))
	if trimmed == "" {
		return Parsed{}
	}

	m := ingredientLinePattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Parsed{Name: trimmed}
	}

	name := strings.TrimSpace(strings.TrimLeft(m[6], " -,.:;"))
	if name == "" {
		return Parsed{Name: trimmed}
	}

	p := Parsed{Name: name}
	if m[1] != "" {
		p.Quantity = parseQuantity(m[1], m[2], m[3], m[4])
	}
	if unit := strings.ToLower(m[5]); unit != "" && unit != "x" {
		p.Unit = NormalizeUnit(unit)
	}
	return p
}

// isCountUnit 無單位或「份」，數量可視為個數
func isCountUnit(unit string) bool {
	return unit == "" || unit == "portion"
}

// parseQuantity 處理 "2"、"1.5"、"1,5"、"1/2"、"1 1/2"
func parseQuantity(lead, mixedNum, mixedDen, den string) *float64 {
	whole, err := strconv.ParseFloat(strings.Replace(lead, ",", ".", 1), 64)
	if err != nil {
		return nil
	}

	switch {
	case mixedNum != "":
		num, _ := strconv.ParseFloat(mixedNum, 64)
		d, _ := strconv.ParseFloat(mixedDen, 64)
		if d == 0 {
			return nil
		}
		return amountOf(whole + num/d)
	case den != "":
		d, _ := strconv.ParseFloat(den, 64)
		if d == 0 {
			return nil
		}
		return amountOf(whole / d)
	}
	return amountOf(whole)
}

// SplitFreeText 以換行、分號、" + " 及非數字間的逗號切開自由文字
func SplitFreeText(text string) []string {
	var (
		parts []string
		cur   strings.Builder
	)
	flush := func() {
		part := strings.TrimSpace(cur.String())
		part = strings.TrimSpace(strings.TrimLeft(part, "-*•"))
		if part != "" {
			parts = append(parts, part)
		}
		cur.Reset()
	}

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\n' || r == '\r' || r == ';':
			flush()
		case r == ',':
			// 1,5 kg 是小數
			if i > 0 && i+1 < len(runes) && isDigit(runes[i-1]) && isDigit(runes[i+1]) {
				cur.WriteRune(r)
				continue
			}
			flush()
		case r == '+' && i > 0 && i+1 < len(runes) && runes[i-1] == ' ' && runes[i+1] == ' ':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
