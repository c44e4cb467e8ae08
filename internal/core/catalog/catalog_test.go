package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	stewID := s.AddRecipe("Beef Stew",
		IngredientRow{IngredientName: "Stewing Steak", Amount: Amount(500), UnitCode: "g"},
		IngredientRow{IngredientName: "Carrots"},
	)
	s.Put("pasta-1", "Pasta Bake", IngredientRow{IngredientName: "Pasta", Amount: Amount(200), UnitCode: "g"})

	recipes, err := s.Recipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, stewID, recipes[0].ID)
	assert.Equal(t, "pasta-1", recipes[1].ID)

	rows, err := s.IngredientRows(ctx, []string{stewID, stewID, "pasta-1", "missing"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, stewID, rows[0].RecipeID)
	assert.Equal(t, "pasta-1", rows[2].RecipeID)

	found, err := s.SearchTitle(ctx, "STEW")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Beef Stew", found[0].Title)

	found, err = s.SearchTitle(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, found)

	s.Put("pasta-1", "Pasta Bake Deluxe")
	recipes, _ = s.Recipes(ctx)
	assert.Len(t, recipes, 2)
	assert.Equal(t, "Pasta Bake Deluxe", recipes[1].Title)
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLStore(DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.SaveRecipe(ctx, Recipe{ID: "r1", Title: "Chicken & Rice"}, []IngredientRow{
		{IngredientName: "Chicken Breast", Amount: Amount(300), UnitCode: "g"},
		{IngredientName: "Rice", Amount: Amount(1), UnitCode: "cup"},
		{IngredientName: "Salt"},
	}))
	require.NoError(t, s.SaveRecipe(ctx, Recipe{ID: "r2", Title: "100% Oat Porridge"}, []IngredientRow{
		{IngredientName: "Oats", Amount: Amount(50), UnitCode: "g"},
	}))

	recipes, err := s.Recipes(ctx)
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "100% Oat Porridge", recipes[0].Title)

	rows, err := s.IngredientRows(ctx, []string{"r1"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Chicken Breast", rows[0].IngredientName)
	require.NotNil(t, rows[0].Amount)
	assert.Equal(t, 300.0, *rows[0].Amount)
	assert.Equal(t, "g", rows[0].UnitCode)
	assert.Nil(t, rows[2].Amount)
	assert.Empty(t, rows[2].UnitCode)

	rows, err = s.IngredientRows(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, rows)

	found, err := s.SearchTitle(ctx, "chicken")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "r1", found[0].ID)

	// % 需按字面比對
	found, err = s.SearchTitle(ctx, "100%")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "r2", found[0].ID)

	found, err = s.SearchTitle(ctx, "0% o")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = s.SearchTitle(ctx, "_")
	require.NoError(t, err)
	assert.Empty(t, found)

	// 覆寫食譜時舊食材列會被清除
	require.NoError(t, s.SaveRecipe(ctx, Recipe{ID: "r1", Title: "Chicken & Rice"}, []IngredientRow{
		{IngredientName: "Chicken Thigh"},
	}))
	rows, err = s.IngredientRows(ctx, []string{"r1", "r2"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Chicken Thigh", rows[0].IngredientName)
	assert.Equal(t, "Oats", rows[1].IngredientName)
}

func TestOpenSQLStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenSQLStore("mysql", "whatever")
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	n, err := Seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, len(sampleRecipes), n)

	// 重複寫入會覆寫而不是新增
	_, err = Seed(ctx, s)
	require.NoError(t, err)
	recipes, err := s.Recipes(ctx)
	require.NoError(t, err)
	assert.Len(t, recipes, n)

	found, err := s.SearchTitle(ctx, "stir")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "seed-chicken-stir-fry", found[0].ID)
}
