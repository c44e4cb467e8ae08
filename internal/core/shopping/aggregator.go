package shopping

import (
	"strings"
)

// Aggregator 以正規鍵合併購物項目，每次建立清單各自持有一個
type Aggregator struct {
	items map[string]*Item
	order []string
}

// NewAggregator 創建空的合併器
func NewAggregator() *Aggregator {
	return &Aggregator{items: make(map[string]*Item)}
}

// Len 目前的項目數
func (a *Aggregator) Len() int {
	return len(a.order)
}

// Add 加入一個項目；同鍵時依單位規則合併數量並聯集來源食譜
func (a *Aggregator) Add(item Item) {
	key := strings.ToLower(strings.TrimSpace(item.CanonicalKey))
	if key == "" {
		key = CanonicalKey(item.Ingredient)
	}
	if key == "" {
		return
	}
	item.CanonicalKey = key

	existing, ok := a.items[key]
	if !ok {
		stored := item
		stored.Amount = copyAmount(item.Amount)
		stored.SourceRecipes = unionSources(nil, item.SourceRecipes)
		a.items[key] = &stored
		a.order = append(a.order, key)
		return
	}

	merge(existing, item)
}

// merge 單位相同（不分大小寫）或一方無單位時才相加
func merge(existing *Item, incoming Item) {
	if unitsCompatible(existing.Unit, incoming.Unit) {
		switch {
		case existing.Amount != nil && incoming.Amount != nil:
			existing.Amount = amountOf(*existing.Amount + *incoming.Amount)
		case existing.Amount == nil:
			existing.Amount = copyAmount(incoming.Amount)
		}
	}
	if existing.Unit == "" {
		existing.Unit = incoming.Unit
	}
	existing.SourceRecipes = unionSources(existing.SourceRecipes, incoming.SourceRecipes)
}

func unitsCompatible(a, b string) bool {
	return a == "" || b == "" || strings.EqualFold(a, b)
}

// Items 依加入順序回傳複本
func (a *Aggregator) Items() []Item {
	out := make([]Item, 0, len(a.order))
	for _, key := range a.order {
		item := *a.items[key]
		item.Amount = copyAmount(item.Amount)
		item.SourceRecipes = append([]string{}, item.SourceRecipes...)
		out = append(out, item)
	}
	return out
}

// Names 依加入順序回傳不重複的顯示名稱
func (a *Aggregator) Names() []string {
	seen := make(map[string]bool, len(a.order))
	names := make([]string, 0, len(a.order))
	for _, key := range a.order {
		name := a.items[key].Ingredient
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// Rekey 以正規化對應改名後重新合併，回傳新的合併器
// 對應的名稱可能是小寫，顯示名稱一律轉為標題大小寫
func (a *Aggregator) Rekey(mapping map[string]string) *Aggregator {
	next := NewAggregator()
	for _, item := range a.Items() {
		canonical := titleCase(strings.Fields(mapping[item.Ingredient]))
		if canonical != "" && canonical != item.Ingredient {
			item.Ingredient = canonical
			item.CanonicalKey = ""
		}
		next.Add(item)
	}
	return next
}

func copyAmount(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return amountOf(*v)
}

func unionSources(dst, src []string) []string {
	if dst == nil {
		dst = []string{}
	}
	for _, id := range src {
		if id == "" {
			continue
		}
		dup := false
		for _, have := range dst {
			if have == id {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, id)
		}
	}
	return dst
}
