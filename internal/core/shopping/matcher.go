package shopping

import (
	"context"
	"math"
	"regexp"
	"strings"

	"shopping-list-engine/internal/core/catalog"
	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// Matcher 以候選標題在食譜目錄中找出食譜 id
type Matcher interface {
	Match(ctx context.Context, candidate string, recipes []catalog.Recipe) (string, bool)
}

// MatcherFunc 讓一般函式實作 Matcher
type MatcherFunc func(ctx context.Context, candidate string, recipes []catalog.Recipe) (string, bool)

func (f MatcherFunc) Match(ctx context.Context, candidate string, recipes []catalog.Recipe) (string, bool) {
	return f(ctx, candidate, recipes)
}

// TitleSearcher 支援標題包含查詢的目錄
type TitleSearcher interface {
	SearchTitle(ctx context.Context, fragment string) ([]catalog.Recipe, error)
}

var multiSpace = regexp.MustCompile(`\s+`)

// NormalizeTitle 小寫去變音、& 換成 and、連字號換空白、合併空白
func NormalizeTitle(s string) string {
	s = common.FoldLower(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "-", " ")
	return strings.TrimSpace(multiSpace.ReplaceAllString(s, " "))
}

// ContainmentMatcher 第一層：目錄的不分大小寫包含查詢
type ContainmentMatcher struct {
	Searcher TitleSearcher
}

func (m ContainmentMatcher) Match(ctx context.Context, candidate string, recipes []catalog.Recipe) (string, bool) {
	search := NormalizeTitle(candidate)
	if search == "" {
		return "", false
	}

	if m.Searcher != nil {
		found, err := m.Searcher.SearchTitle(ctx, search)
		if err == nil {
			if len(found) > 0 {
				return found[0].ID, true
			}
			return "", false
		}
		common.LogWarn("標題查詢失敗，改用記憶體比對", zap.Error(err), zap.String("candidate", candidate))
	}

	for _, r := range recipes {
		if strings.Contains(strings.ToLower(r.Title), search) {
			return r.ID, true
		}
	}
	return "", false
}

// NormalizedSubstringMatcher 第二層：正規化後任一方包含另一方
type NormalizedSubstringMatcher struct{}

func (NormalizedSubstringMatcher) Match(_ context.Context, candidate string, recipes []catalog.Recipe) (string, bool) {
	norm := NormalizeTitle(candidate)
	if norm == "" {
		return "", false
	}

	for _, r := range recipes {
		title := NormalizeTitle(r.Title)
		if title == "" {
			continue
		}
		if strings.Contains(title, norm) || strings.Contains(norm, title) {
			return r.ID, true
		}
	}
	return "", false
}

// WordOverlapMatcher 第三層：字詞重疊最多者，重疊數須達候選字數一半（至少 1）
type WordOverlapMatcher struct{}

func (WordOverlapMatcher) Match(_ context.Context, candidate string, recipes []catalog.Recipe) (string, bool) {
	words := wordSet(NormalizeTitle(candidate))
	if len(words) == 0 {
		return "", false
	}
	required := int(math.Max(1, math.Ceil(float64(len(words))/2)))

	var (
		bestID    string
		bestScore int
	)
	for _, r := range recipes {
		score := 0
		for w := range wordSet(NormalizeTitle(r.Title)) {
			if words[w] {
				score++
			}
		}
		if score > bestScore {
			bestID, bestScore = r.ID, score
		}
	}

	if bestScore >= required {
		return bestID, true
	}
	return "", false
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// Cascade 依序嘗試每一層，第一個命中者勝出
type Cascade []Matcher

// DefaultCascade 包含查詢、正規化子字串、字詞重疊
func DefaultCascade(searcher TitleSearcher) Cascade {
	return Cascade{
		ContainmentMatcher{Searcher: searcher},
		NormalizedSubstringMatcher{},
		WordOverlapMatcher{},
	}
}

func (c Cascade) Match(ctx context.Context, candidate string, recipes []catalog.Recipe) (string, bool) {
	for _, m := range c {
		if id, ok := m.Match(ctx, candidate, recipes); ok {
			return id, true
		}
	}
	return "", false
}
