package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldAccents 去除變音符號（"crème fraîche" → "creme fraiche"）
func FoldAccents(s string) string {
	// transform.Chain 帶狀態，不可跨 goroutine 共用
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// FoldLower 小寫並去除變音符號，名稱比對與緩存鍵共用
func FoldLower(s string) string {
	return FoldAccents(strings.ToLower(s))
}
