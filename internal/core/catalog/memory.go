package catalog

import (
	"context"
	"strings"
	"sync"

	"shopping-list-engine/internal/pkg/common"
)

// MemoryStore 記憶體中的食譜目錄，用於測試與種子資料
type MemoryStore struct {
	mu      sync.RWMutex
	recipes []Recipe
	rows    map[string][]IngredientRow
}

// NewMemoryStore 創建空的記憶體目錄
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string][]IngredientRow),
	}
}

// AddRecipe 新增食譜並回傳產生的 id
func (s *MemoryStore) AddRecipe(title string, rows ...IngredientRow) string {
	id := common.GenerateUUID()
	s.Put(id, title, rows...)
	return id
}

// Put 以指定 id 寫入食譜，已存在則覆蓋
func (s *MemoryStore) Put(id, title string, rows ...IngredientRow) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]IngredientRow, 0, len(rows))
	for _, row := range rows {
		row.RecipeID = id
		stored = append(stored, row)
	}

	for i := range s.recipes {
		if s.recipes[i].ID == id {
			s.recipes[i].Title = title
			s.rows[id] = stored
			return
		}
	}
	s.recipes = append(s.recipes, Recipe{ID: id, Title: title})
	s.rows[id] = stored
}

func (s *MemoryStore) Recipes(ctx context.Context) ([]Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Recipe, len(s.recipes))
	copy(out, s.recipes)
	return out, nil
}

func (s *MemoryStore) IngredientRows(ctx context.Context, recipeIDs []string) ([]IngredientRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []IngredientRow
	seen := make(map[string]bool, len(recipeIDs))
	for _, id := range recipeIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, s.rows[id]...)
	}
	return out, nil
}

func (s *MemoryStore) SearchTitle(ctx context.Context, fragment string) ([]Recipe, error) {
	fragment = strings.ToLower(strings.TrimSpace(fragment))
	if fragment == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Recipe
	for _, r := range s.recipes {
		if strings.Contains(strings.ToLower(r.Title), fragment) {
			out = append(out, r)
		}
	}
	return out, nil
}

// SaveRecipe 與 SQLStore 相同的寫入介面
func (s *MemoryStore) SaveRecipe(_ context.Context, recipe Recipe, rows []IngredientRow) error {
	s.Put(recipe.ID, recipe.Title, rows...)
	return nil
}
