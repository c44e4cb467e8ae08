package shopping

import (
	"context"
)

// Category 購物分類
type Category string

const (
	CategoryProduce    Category = "Produce"
	CategoryProtein    Category = "Protein"
	CategoryDairy      Category = "Dairy & Eggs"
	CategoryBakery     Category = "Bakery & Grains"
	CategoryPantry     Category = "Pantry"
	CategorySnacks     Category = "Snacks & Supplements"
	CategoryBeverages  Category = "Beverages"
	CategoryCondiments Category = "Condiments & Sauces"
	CategoryOther      Category = "Other"
)

// CategoryOrder 顯示順序
var CategoryOrder = []Category{
	CategoryProduce,
	CategoryProtein,
	CategoryDairy,
	CategoryBakery,
	CategoryPantry,
	CategorySnacks,
	CategoryBeverages,
	CategoryCondiments,
	CategoryOther,
}

// Rank 回傳分類在顯示順序中的位置，未知分類排最後
func (c Category) Rank() int {
	for i, cat := range CategoryOrder {
		if cat == c {
			return i
		}
	}
	return len(CategoryOrder)
}

// Item 購物清單中的一項
type Item struct {
	Ingredient    string   `json:"ingredient"`
	CanonicalKey  string   `json:"canonical_key"`
	Amount        *float64 `json:"amount,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	Category      Category `json:"category"`
	SourceRecipes []string `json:"source_recipe_ids"`
}

// Response 購物清單響應
type Response struct {
	Items []Item `json:"items"`
}

// Request 建立購物清單的輸入
type Request struct {
	RecipeIDs  []string `json:"recipe_ids"`
	ExtraItems []string `json:"extra_items"`
}

// ParsedMeal 外部解析服務產生的餐點
type ParsedMeal struct {
	MealType           string   `json:"meal_type"`
	MatchedRecipeTitle string   `json:"matched_recipe_title,omitempty"`
	UnmatchedMealTitle string   `json:"unmatched_meal_title,omitempty"`
	FreeTextItems      []string `json:"free_text_items"`
}

// Canonicalizer 將一批名稱對應到合併後的正規名稱，永不失敗
type Canonicalizer interface {
	Canonicalize(ctx context.Context, names []string) map[string]string
}

// IdentityCanonicalizer 原樣回傳
type IdentityCanonicalizer struct{}

func (IdentityCanonicalizer) Canonicalize(_ context.Context, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = n
	}
	return out
}

func amountOf(v float64) *float64 {
	return &v
}
