package catalog

import (
	"context"
)

// Recipe 食譜目錄中的一筆（id + 標題）
type Recipe struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// IngredientRow 食譜食材列，唯讀
type IngredientRow struct {
	RecipeID       string   `json:"recipe_id"`
	IngredientName string   `json:"ingredient_name"`
	Amount         *float64 `json:"amount,omitempty"`
	UnitCode       string   `json:"unit_code,omitempty"`
}

// Store 食譜資料來源
type Store interface {
	// Recipes 回傳整份目錄，每次建立清單只載入一次
	Recipes(ctx context.Context) ([]Recipe, error)
	// IngredientRows 回傳指定食譜的所有食材列
	IngredientRows(ctx context.Context, recipeIDs []string) ([]IngredientRow, error)
	// SearchTitle 不分大小寫的標題包含查詢
	SearchTitle(ctx context.Context, fragment string) ([]Recipe, error)
}

// Amount 方便建立 *float64
func Amount(v float64) *float64 {
	return &v
}
