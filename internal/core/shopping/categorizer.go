package shopping

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"shopping-list-engine/internal/pkg/common"
)

// CategoryRule 關鍵字命中即歸入 Category
type CategoryRule struct {
	Category Category
	Keywords []string
}

// Categorizer 依規則表優先順序判斷分類，未命中為 Other
type Categorizer struct {
	rules []CategoryRule
}

// NewCategorizer 創建分類器，未傳規則時使用預設規則表
func NewCategorizer(rules ...CategoryRule) *Categorizer {
	if len(rules) == 0 {
		rules = DefaultCategoryRules()
	}
	return &Categorizer{rules: rules}
}

// Categorize 回傳名稱的分類
func (c *Categorizer) Categorize(name string) Category {
	lower := common.FoldLower(name)
	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if containsWord(lower, kw) {
				return rule.Category
			}
		}
	}
	return CategoryOther
}

// containsWord 整字比對，容許 -s、-es、-y→-ies 複數（"egg" 命中 "eggs"，不命中 "eggplant"）
func containsWord(text, kw string) bool {
	variants := []string{kw, kw + "s", kw + "es"}
	if strings.HasSuffix(kw, "y") {
		variants = append(variants, kw[:len(kw)-1]+"ies")
	}
	for _, v := range variants {
		for from := 0; from < len(text); {
			i := strings.Index(text[from:], v)
			if i < 0 {
				break
			}
			start, end := from+i, from+i+len(v)
			if isWordBoundary(text, start, end) {
				return true
			}
			from = start + 1
		}
	}
	return false
}

func isWordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if unicode.IsLetter(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// DefaultCategoryRules 規則順序即優先順序，與顯示順序無關
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		// 容易被後面規則誤判的蔬菜
		{Category: CategoryProduce, Keywords: []string{
			"green bean", "runner bean", "broad bean", "butternut squash", "sweet potato",
			"bell pepper", "red pepper", "green pepper", "yellow pepper", "spring onion",
			"salad leaves", "mixed salad", "cherry tomato",
		}},
		{Category: CategorySnacks, Keywords: []string{
			"protein", "whey", "snack", "crisps", "chocolate", "biscuit", "cookie",
			"cereal bar", "granola bar", "flapjack", "popcorn", "mixed nuts", "trail mix",
		}},
		{Category: CategoryCondiments, Keywords: []string{
			"sauce", "ketchup", "mayo", "mayonnaise", "mustard", "pesto", "vinegar", "dressing",
			"relish", "salsa", "chutney", "gravy", "passata", "hummus", "sriracha",
		}},
		{Category: CategoryBeverages, Keywords: []string{
			"juice", "coffee", "tea", "water", "soda", "cola", "lemonade", "wine",
			"beer", "smoothie", "oat milk", "almond milk", "soy milk", "kombucha",
		}},
		{Category: CategoryPantry, Keywords: []string{
			"stock", "broth", "oil", "flour", "sugar", "salt", "black pepper", "peppercorn",
			"spice", "paprika", "cumin", "cinnamon", "turmeric", "oregano", "baking",
			"honey", "jam", "peanut butter", "bean", "chickpea", "lentil", "tinned",
			"canned", "coconut milk", "yeast", "cocoa", "syrup", "stock cube", "nut",
		}},
		{Category: CategoryDairy, Keywords: []string{
			"milk", "cheese", "cheddar", "mozzarella", "parmesan", "feta", "halloumi",
			"yoghurt", "yogurt", "butter", "cream", "creme fraiche", "egg", "skyr", "quark",
		}},
		{Category: CategoryProtein, Keywords: []string{
			"chicken", "beef", "steak", "pork", "lamb", "mince", "bacon", "ham", "sausage",
			"turkey", "fish", "salmon", "tuna", "cod", "haddock", "prawn", "shrimp",
			"tofu", "tempeh", "duck", "chorizo", "falafel",
		}},
		{Category: CategoryBakery, Keywords: []string{
			"bread", "bagel", "bun", "roll", "wrap", "tortilla", "pitta", "pita", "naan",
			"croissant", "muffin", "crumpet", "rice", "pasta", "spaghetti", "penne",
			"noodle", "quinoa", "couscous", "oat", "porridge", "cereal", "granola",
			"cracker", "dumpling",
		}},
		{Category: CategoryProduce, Keywords: []string{
			"fruit", "vegetable", "tomato", "potato", "onion", "garlic", "carrot", "pepper",
			"lettuce", "salad", "spinach", "kale", "cucumber", "courgette", "zucchini",
			"broccoli", "cauliflower", "cabbage", "mushroom", "celery", "leek", "pea",
			"sweetcorn", "corn", "avocado", "banana", "apple", "pear", "orange", "lemon",
			"lime", "berry", "strawberry", "blueberry", "raspberry", "grape",
			"mango", "pineapple", "melon", "watermelon", "kiwi", "herb", "basil", "coriander", "parsley",
			"mint", "ginger", "chilli", "beetroot", "squash", "aubergine", "asparagus",
			"rocket", "leaves", "plum", "peach", "nectarine", "satsuma", "clementine",
		}},
	}
}

// SortItems 依分類順序、名稱（不分大小寫）、名稱排序
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := items[i].Category.Rank(), items[j].Category.Rank()
		if ri != rj {
			return ri < rj
		}
		li, lj := strings.ToLower(items[i].Ingredient), strings.ToLower(items[j].Ingredient)
		if li != lj {
			return li < lj
		}
		return items[i].Ingredient < items[j].Ingredient
	})
}
