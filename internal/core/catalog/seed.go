package catalog

import (
	"context"
	"fmt"
)

// Writer 可寫入食譜的目錄
type Writer interface {
	SaveRecipe(ctx context.Context, recipe Recipe, rows []IngredientRow) error
}

type seedRecipe struct {
	Recipe
	Rows []IngredientRow
}

func seedRow(name string, amount float64, unit string) IngredientRow {
	return IngredientRow{IngredientName: name, Amount: Amount(amount), UnitCode: unit}
}

// 開發用的範例目錄，id 固定以便重複啟動時覆寫
var sampleRecipes = []seedRecipe{
	{Recipe{ID: "seed-overnight-oats", Title: "Overnight Oats"}, []IngredientRow{
		seedRow("Rolled Oats", 60, "g"),
		seedRow("Milk", 150, "ml"),
		seedRow("Greek Yoghurt", 50, "g"),
		seedRow("Honey", 1, "tsp"),
	}},
	{Recipe{ID: "seed-chicken-stir-fry", Title: "Chicken Stir-Fry"}, []IngredientRow{
		seedRow("Chicken Breasts", 2, ""),
		seedRow("Bell Peppers", 2, ""),
		seedRow("Soy Sauce", 2, "tbsp"),
		seedRow("Jasmine Rice", 150, "g"),
		{IngredientName: "Spring Onions"},
	}},
	{Recipe{ID: "seed-beef-stew", Title: "Beef Stew"}, []IngredientRow{
		seedRow("Stewing Steak", 500, "g"),
		seedRow("Carrots", 3, ""),
		seedRow("Onion", 1, ""),
		seedRow("Beef Stock", 500, "ml"),
	}},
	{Recipe{ID: "seed-tomato-pasta", Title: "Tomato Pasta"}, []IngredientRow{
		seedRow("Spaghetti", 200, "g"),
		seedRow("Chopped Tomatoes", 400, "g"),
		seedRow("Garlic", 2, "clove"),
		seedRow("Olive Oil", 1, "tbsp"),
	}},
}

// Seed 寫入範例食譜，回傳寫入數量
func Seed(ctx context.Context, w Writer) (int, error) {
	for i, r := range sampleRecipes {
		if err := w.SaveRecipe(ctx, r.Recipe, r.Rows); err != nil {
			return i, fmt.Errorf("seeding %q: %w", r.Title, err)
		}
	}
	return len(sampleRecipes), nil
}
