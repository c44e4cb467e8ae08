package shopping

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shopping-list-engine/internal/core/catalog"
	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// AssembledMeal 一餐的組裝結果
type AssembledMeal struct {
	MealType      string   `json:"meal_type"`
	Title         string   `json:"title,omitempty"`
	RecipeID      string   `json:"recipe_id,omitempty"`
	FreeText      []string `json:"free_text"`
	AutoHandled   bool     `json:"auto_handled"`
	MissingRecipe bool     `json:"missing_recipe"`
}

// Assembly 所有餐點合併後要送進購物清單的輸入
type Assembly struct {
	Meals     []AssembledMeal
	RecipeIDs []string
	Extras    []string
}

// Assembler 將外部解析的餐點對應到本地食譜
type Assembler struct {
	store   catalog.Store
	matcher Matcher
}

// NewAssembler 創建餐點組裝器，matcher 為 nil 時使用預設比對層級
func NewAssembler(store catalog.Store, matcher Matcher) *Assembler {
	if matcher == nil {
		matcher = DefaultCascade(store)
	}
	return &Assembler{store: store, matcher: matcher}
}

// Assemble 依餐別排序後逐餐比對食譜；外部給的食譜標題只當作候選
func (a *Assembler) Assemble(ctx context.Context, meals []ParsedMeal) (*Assembly, error) {
	var recipes []catalog.Recipe
	if a.store != nil && len(meals) > 0 {
		var err error
		recipes, err = a.store.Recipes(ctx)
		if err != nil {
			return nil, common.ErrCatalogUnavailable.Wrap(fmt.Errorf("loading recipes: %w", err))
		}
	}

	out := &Assembly{Meals: make([]AssembledMeal, 0, len(meals))}
	seen := make(map[string]bool)

	for _, meal := range SortMeals(meals) {
		var freeText []string
		for _, raw := range meal.FreeTextItems {
			freeText = append(freeText, SplitFreeText(raw)...)
		}

		am := AssembledMeal{
			MealType: meal.MealType,
			Title:    mealTitle(meal),
			FreeText: freeText,
		}
		if am.FreeText == nil {
			am.FreeText = []string{}
		}

		if id, ok := a.matchMeal(ctx, meal, recipes); ok {
			am.RecipeID = id
			if !seen[id] {
				seen[id] = true
				out.RecipeIDs = append(out.RecipeIDs, id)
			}
			out.Extras = append(out.Extras, freeText...)
		} else {
			if am.Title != "" {
				out.Extras = append(out.Extras, am.Title)
			}
			out.Extras = append(out.Extras, freeText...)
			am.AutoHandled = ShouldAutoHandle(meal)
			am.MissingRecipe = am.Title != "" && !am.AutoHandled
		}

		out.Meals = append(out.Meals, am)
	}

	common.LogDebug("餐點組裝完成",
		zap.Int("meals", len(out.Meals)),
		zap.Int("recipes", len(out.RecipeIDs)),
		zap.Int("extras", len(out.Extras)),
	)
	return out, nil
}

// matchMeal 先試外部給的食譜標題，再試未匹配標題
func (a *Assembler) matchMeal(ctx context.Context, meal ParsedMeal, recipes []catalog.Recipe) (string, bool) {
	for _, candidate := range []string{meal.MatchedRecipeTitle, meal.UnmatchedMealTitle} {
		if strings.TrimSpace(candidate) == "" {
			continue
		}
		if id, ok := a.matcher.Match(ctx, candidate, recipes); ok {
			return id, true
		}
	}
	return "", false
}

func mealTitle(meal ParsedMeal) string {
	if t := strings.TrimSpace(meal.UnmatchedMealTitle); t != "" {
		return t
	}
	return strings.TrimSpace(meal.MatchedRecipeTitle)
}

var mealOrder = map[string]int{
	"breakfast":     0,
	"mid morning":   1,
	"morning":       2,
	"lunch":         3,
	"mid afternoon": 4,
	"afternoon":     5,
	"dinner":        6,
	"evening":       7,
}

func mealRank(mealType string) int {
	key := strings.Join(strings.Fields(strings.ReplaceAll(strings.ToLower(mealType), "-", " ")), " ")
	if rank, ok := mealOrder[key]; ok {
		return rank
	}
	return len(mealOrder)
}

// SortMeals 依一天的餐別順序穩定排序，未知餐別排最後
func SortMeals(meals []ParsedMeal) []ParsedMeal {
	out := make([]ParsedMeal, len(meals))
	copy(out, meals)
	sort.SliceStable(out, func(i, j int) bool {
		return mealRank(out[i].MealType) < mealRank(out[j].MealType)
	})
	return out
}

var (
	autoHandledMealTypes = []string{"mid morning", "mid afternoon", "snack"}
	autoHandledKeywords  = []string{
		"protein yoghurt", "protein yogurt", "protein shake", "protein bar", "whey protein",
		"portion of fruit", "fruit", "toast", "omelette", "omelet", "salad", "halloumi",
		"tuna", "chicken", "egg", "wrap",
	}
)

// ShouldAutoHandle 點心時段或常見簡單食物不需要食譜
func ShouldAutoHandle(meal ParsedMeal) bool {
	mealType := strings.ReplaceAll(strings.ToLower(meal.MealType), "-", " ")
	for _, t := range autoHandledMealTypes {
		if strings.Contains(mealType, t) {
			return true
		}
	}

	text := strings.ToLower(strings.Join(append([]string{mealTitle(meal)}, meal.FreeTextItems...), " "))
	for _, kw := range autoHandledKeywords {
		if containsWord(text, kw) {
			return true
		}
	}
	return false
}
