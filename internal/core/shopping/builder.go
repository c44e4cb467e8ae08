package shopping

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopping-list-engine/internal/core/catalog"
	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// BuildObserver 接收每次建立清單的結果，用於指標
type BuildObserver interface {
	ObserveBuild(source string, items int, duration time.Duration)
}

// Builder 購物清單建立流程：解析、展開、合併、正規化、再合併、分類
type Builder struct {
	store         catalog.Store
	canonicalizer Canonicalizer
	expander      *Expander
	categorizer   *Categorizer
	matcher       Matcher
	observer      BuildObserver
}

// Option 調整 Builder
type Option func(*Builder)

// WithExpander 替換展開規則
func WithExpander(e *Expander) Option {
	return func(b *Builder) { b.expander = e }
}

// WithCategorizer 替換分類規則
func WithCategorizer(c *Categorizer) Option {
	return func(b *Builder) { b.categorizer = c }
}

// WithMatcher 替換食譜比對策略
func WithMatcher(m Matcher) Option {
	return func(b *Builder) { b.matcher = m }
}

// WithObserver 設定指標收集
func WithObserver(o BuildObserver) Option {
	return func(b *Builder) { b.observer = o }
}

// NewBuilder 創建購物清單建立器
func NewBuilder(store catalog.Store, canonicalizer Canonicalizer, opts ...Option) *Builder {
	if canonicalizer == nil {
		canonicalizer = IdentityCanonicalizer{}
	}
	b := &Builder{
		store:         store,
		canonicalizer: canonicalizer,
		expander:      NewExpander(),
		categorizer:   NewCategorizer(),
		matcher:       DefaultCascade(store),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build 以食譜 id 與自由文字建立購物清單；只有目錄讀取失敗會回傳錯誤
func (b *Builder) Build(ctx context.Context, req Request) (*Response, error) {
	return b.build(ctx, req, "recipes")
}

func (b *Builder) build(ctx context.Context, req Request, source string) (*Response, error) {
	start := time.Now()

	agg := NewAggregator()
	if err := b.addRecipeRows(ctx, agg, req.RecipeIDs); err != nil {
		return nil, err
	}
	for _, extra := range req.ExtraItems {
		b.addExtra(agg, extra)
	}

	if agg.Len() > 0 {
		names := agg.Names()
		mapping := b.canonicalizer.Canonicalize(ctx, names)
		agg = agg.Rekey(mapping)
	}

	items := agg.Items()
	for i := range items {
		items[i].Category = b.categorizer.Categorize(items[i].Ingredient)
	}
	SortItems(items)

	duration := time.Since(start)
	common.LogInfo("購物清單已產生",
		zap.String("source", source),
		zap.Int("recipes", len(req.RecipeIDs)),
		zap.Int("extras", len(req.ExtraItems)),
		zap.Int("items", len(items)),
		zap.Duration("耗時", duration),
	)
	if b.observer != nil {
		b.observer.ObserveBuild(source, len(items), duration)
	}

	return &Response{Items: items}, nil
}

func (b *Builder) addRecipeRows(ctx context.Context, agg *Aggregator, recipeIDs []string) error {
	ids := uniqueNonEmpty(recipeIDs)
	if len(ids) == 0 || b.store == nil {
		return nil
	}

	rows, err := b.store.IngredientRows(ctx, ids)
	if err != nil {
		return common.ErrCatalogUnavailable.Wrap(fmt.Errorf("loading ingredient rows: %w", err))
	}

	for _, row := range rows {
		name := NormalizeName(row.IngredientName)
		if name == "" {
			continue
		}
		agg.Add(Item{
			Ingredient:    name,
			CanonicalKey:  strings.ToLower(name),
			Amount:        row.Amount,
			Unit:          NormalizeUnit(row.UnitCode),
			SourceRecipes: []string{row.RecipeID},
		})
	}
	return nil
}

// addExtra 自由文字先切段，再逐段展開
func (b *Builder) addExtra(agg *Aggregator, raw string) {
	for _, fragment := range SplitFreeText(raw) {
		for _, extra := range b.expander.Expand(fragment) {
			agg.Add(Item{
				Ingredient: extra.Name,
				Amount:     extra.Amount,
				Unit:       NormalizeUnit(extra.Unit),
			})
		}
	}
}

// MealPlanResult 餐點組裝結果與購物清單
type MealPlanResult struct {
	Meals        []AssembledMeal `json:"meals"`
	ShoppingList *Response       `json:"shopping_list"`
}

// BuildFromMeals 組裝餐點後建立購物清單
func (b *Builder) BuildFromMeals(ctx context.Context, meals []ParsedMeal) (*MealPlanResult, error) {
	assembler := NewAssembler(b.store, b.matcher)
	assembly, err := assembler.Assemble(ctx, meals)
	if err != nil {
		return nil, err
	}

	list, err := b.build(ctx, Request{RecipeIDs: assembly.RecipeIDs, ExtraItems: assembly.Extras}, "meals")
	if err != nil {
		return nil, err
	}

	return &MealPlanResult{Meals: assembly.Meals, ShoppingList: list}, nil
}

func uniqueNonEmpty(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
