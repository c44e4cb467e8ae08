package shopping

import (
	"strings"
	"unicode"

	"shopping-list-engine/internal/pkg/common"
)

// noiseWords 以整字移除
var noiseWords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "some": true,
	"portion": true, "portions": true, "serving": true, "servings": true,
	"handful": true, "pinch": true, "splash": true,
	"fresh": true, "freshly": true, "chopped": true, "diced": true, "sliced": true,
	"minced": true, "grated": true, "finely": true, "roughly": true, "peeled": true,
	"large": true, "small": true, "medium": true, "organic": true, "optional": true,
	// 品牌與通路
	"tesco": true, "sainsbury's": true, "sainsburys": true, "asda": true,
	"waitrose": true, "lidl": true, "aldi": true, "morrisons": true, "m&s": true,
	"finest": true, "essentials": true, "value": true,
}

var irregularSingulars = map[string]string{
	"tomatoes":  "tomato",
	"potatoes":  "potato",
	"mangoes":   "mango",
	"leaves":    "leaf",
	"loaves":    "loaf",
	"halves":    "half",
	"knives":    "knife",
	"cookies":   "cookie",
	"smoothies": "smoothie",
	"brownies":  "brownie",
}

// 不做單數化
var invariantWords = map[string]bool{
	"oats": true, "hummus": true, "couscous": true, "asparagus": true,
	"molasses": true, "swiss": true, "series": true, "grits": true,
	"brussels": true,
}

// NormalizeName 本地正規化：小寫、去雜詞、單數化、標題大小寫
func NormalizeName(raw string) string {
	words := nameWords(raw)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if noiseWords[w] {
			continue
		}
		kept = append(kept, Singularize(w))
	}

	// 全部是雜詞時保留原字
	if len(kept) == 0 {
		for _, w := range words {
			kept = append(kept, Singularize(w))
		}
	}
	return titleCase(kept)
}

// CanonicalKey 合併用的不分大小寫鍵
func CanonicalKey(name string) string {
	return strings.ToLower(NormalizeName(name))
}

// Singularize 單數化一個小寫單字
func Singularize(w string) string {
	if s, ok := irregularSingulars[w]; ok {
		return s
	}
	if invariantWords[w] || len(w) <= 3 {
		return w
	}

	switch {
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"), strings.HasSuffix(w, "is"):
		return w
	case strings.HasSuffix(w, "ies") && len(w) > 4:
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "xes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}

// nameWords 切出去除變音符號的小寫單字，保留 ' 與 &
func nameWords(s string) []string {
	return strings.FieldsFunc(common.FoldLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\'' && r != '&'
	})
}

func titleCase(words []string) string {
	out := make([]string, len(words))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		out[i] = string(r)
	}
	return strings.Join(out, " ")
}
