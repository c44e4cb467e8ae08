package shopping

import (
	"context"
	"errors"
	"testing"

	"shopping-list-engine/internal/core/catalog"

	"github.com/stretchr/testify/assert"
)

var testRecipes = []catalog.Recipe{
	{ID: "r1", Title: "Chicken & Leek Pie"},
	{ID: "r2", Title: "Mac and Cheese"},
	{ID: "r3", Title: "Spicy Bean Chilli"},
	{ID: "r4", Title: "Beef Stew"},
}

type stubSearcher struct {
	found []catalog.Recipe
	err   error
	calls []string
}

func (s *stubSearcher) SearchTitle(_ context.Context, fragment string) ([]catalog.Recipe, error) {
	s.calls = append(s.calls, fragment)
	return s.found, s.err
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "chicken and leek pie", NormalizeTitle("  Chicken &  Leek-Pie "))
	assert.Equal(t, "mac and cheese", NormalizeTitle("Mac & Cheese"))
	assert.Equal(t, "creme brulee", NormalizeTitle("Crème Brûlée"))
}

func TestContainmentMatcher(t *testing.T) {
	ctx := context.Background()

	id, ok := ContainmentMatcher{}.Match(ctx, "Leek Pie", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r1", id)

	_, ok = ContainmentMatcher{}.Match(ctx, "chicken-and-leek pie", testRecipes)
	assert.False(t, ok)

	_, ok = ContainmentMatcher{}.Match(ctx, "   ", testRecipes)
	assert.False(t, ok)

	searcher := &stubSearcher{found: []catalog.Recipe{{ID: "db-1", Title: "Beef Stew"}}}
	id, ok = ContainmentMatcher{Searcher: searcher}.Match(ctx, "Beef-Stew", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "db-1", id)
	assert.Equal(t, []string{"beef stew"}, searcher.calls)

	// 查詢成功但無結果時不再做記憶體比對
	empty := &stubSearcher{}
	_, ok = ContainmentMatcher{Searcher: empty}.Match(ctx, "beef stew", testRecipes)
	assert.False(t, ok)

	// 查詢失敗時改用記憶體比對
	broken := &stubSearcher{err: errors.New("db down")}
	id, ok = ContainmentMatcher{Searcher: broken}.Match(ctx, "beef stew", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r4", id)
}

func TestNormalizedSubstringMatcher(t *testing.T) {
	ctx := context.Background()
	m := NormalizedSubstringMatcher{}

	id, ok := m.Match(ctx, "chicken-and-leek pie", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r1", id)

	id, ok = m.Match(ctx, "Mac & Cheese", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r2", id)

	// 候選包含目錄標題
	id, ok = m.Match(ctx, "Big Beef Stew Night", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r4", id)

	_, ok = m.Match(ctx, "Aunt Carol's Stew", testRecipes)
	assert.False(t, ok)
}

func TestWordOverlapMatcher(t *testing.T) {
	ctx := context.Background()
	m := WordOverlapMatcher{}

	id, ok := m.Match(ctx, "spicy chilli beans", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r3", id)

	id, ok = m.Match(ctx, "chilli", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r3", id)

	// 3 個字只重疊 1 個，不足一半
	_, ok = m.Match(ctx, "Aunt Carol's Stew", testRecipes)
	assert.False(t, ok)

	_, ok = m.Match(ctx, "", testRecipes)
	assert.False(t, ok)
}

func TestCascadeStopsAtFirstMatch(t *testing.T) {
	var calls []string
	tier := func(name, id string) Matcher {
		return MatcherFunc(func(context.Context, string, []catalog.Recipe) (string, bool) {
			calls = append(calls, name)
			return id, id != ""
		})
	}

	c := Cascade{tier("first", ""), tier("second", "r2"), tier("third", "r3")}
	id, ok := c.Match(context.Background(), "anything", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r2", id)
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDefaultCascade(t *testing.T) {
	ctx := context.Background()
	c := DefaultCascade(nil)

	id, ok := c.Match(ctx, "Mac & Cheese", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r2", id)

	id, ok = c.Match(ctx, "spicy chilli beans", testRecipes)
	assert.True(t, ok)
	assert.Equal(t, "r3", id)

	_, ok = c.Match(ctx, "Aunt Carol's Stew", testRecipes)
	assert.False(t, ok)
}
