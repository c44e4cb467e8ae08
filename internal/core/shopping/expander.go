package shopping

import (
	"strings"

	"shopping-list-engine/internal/pkg/common"

	"go.uber.org/zap"
)

// Extra 展開後的一個購物項目，Name 已是顯示名稱
type Extra struct {
	Name   string
	Amount *float64
	Unit   string
}

// Phrase 規則比對用的片語
type Phrase struct {
	Raw    string
	Parsed Parsed
	text   string // " w1 w2 ... "
}

// NewPhrase 解析一段自由文字
func NewPhrase(raw string) Phrase {
	return Phrase{
		Raw:    raw,
		Parsed: ParseIngredientText(raw),
		text:   " " + strings.Join(nameWords(raw), " ") + " ",
	}
}

// Has 整字比對關鍵字，容許複數
func (p Phrase) Has(keyword string) bool {
	return containsWord(p.text, strings.ToLower(keyword))
}

// HasAny 任一關鍵字出現即成立
func (p Phrase) HasAny(keywords ...string) bool {
	for _, kw := range keywords {
		if p.Has(kw) {
			return true
		}
	}
	return false
}

// ExpansionRule 展開規則；Match 成立時以 Expand 的結果取代原片語
type ExpansionRule struct {
	Name   string
	Match  func(p Phrase) bool
	Expand func(p Phrase) []Extra
}

// Expander 依序套用規則，第一條成立者勝出
type Expander struct {
	rules []ExpansionRule
}

// NewExpander 創建展開器，未傳規則時使用預設規則表
func NewExpander(rules ...ExpansionRule) *Expander {
	if len(rules) == 0 {
		rules = DefaultExpansionRules()
	}
	return &Expander{rules: rules}
}

// Expand 將一段描述展開成零或多個購物項目
func (e *Expander) Expand(raw string) []Extra {
	p := NewPhrase(raw)
	if p.Parsed.Name == "" {
		return nil
	}

	for _, rule := range e.rules {
		if rule.Match(p) {
			out := rule.Expand(p)
			common.LogDebug("自由文字已展開",
				zap.String("phrase", raw),
				zap.String("rule", rule.Name),
				zap.Int("items", len(out)),
			)
			return out
		}
	}
	return passthrough(p)
}

// passthrough 無規則命中時保留片語本身
func passthrough(p Phrase) []Extra {
	name := NormalizeName(p.Parsed.Name)
	if name == "" {
		return nil
	}
	return []Extra{{Name: name, Amount: p.Parsed.Quantity, Unit: p.Parsed.Unit}}
}

var (
	namedFruits = []string{
		"banana", "apple", "pear", "orange", "avocado", "satsuma", "clementine",
		"plum", "peach", "nectarine", "kiwi", "mango", "grape", "berry",
	}
	fruitProducts = []string{
		"juice", "smoothie", "bread", "loaf", "cake", "muffin", "jam", "marmalade",
		"yoghurt", "yogurt", "pie", "crumble", "cordial", "squash", "chutney",
	}
	proteinSnacks = []string{
		"protein bar", "protein shake", "protein yoghurt", "protein yogurt",
		"protein pudding", "protein powder", "protein snack", "whey",
	}
)

// DefaultExpansionRules 預設規則表：水果、蛋白補充品、組合料理
func DefaultExpansionRules() []ExpansionRule {
	rules := []ExpansionRule{
		{Name: "fruit", Match: matchFruit, Expand: expandFruit},
		{Name: "protein-snack", Match: func(p Phrase) bool { return p.HasAny(proteinSnacks...) }, Expand: expandProteinSnack},
	}
	for _, dish := range compositeDishes {
		rules = append(rules, dish.rule())
	}
	return rules
}

func matchFruit(p Phrase) bool {
	// 果汁、香蕉麵包之類是另一種商品
	if p.HasAny(fruitProducts...) {
		return false
	}
	if p.Has("fruit") {
		return true
	}
	// avocado toast 之類交給組合料理
	return p.HasAny(namedFruits...) && !p.HasAny(dishTriggers()...)
}

func expandFruit(p Phrase) []Extra {
	unit := p.Parsed.Unit
	amount := p.Parsed.Quantity
	switch {
	case p.Has("half"):
		amount, unit = amountOf(0.5), "pcs"
	case isCountUnit(unit) || unit == "pcs" || unit == "item":
		unit = "pcs"
		if amount == nil {
			amount = amountOf(1)
		}
	case amount == nil:
		amount = amountOf(1)
	}
	return []Extra{{Name: "Fruit", Amount: amount, Unit: unit}}
}

func expandProteinSnack(p Phrase) []Extra {
	amount := amountOf(1)
	if q := p.Parsed.Quantity; q != nil && isCountUnit(p.Parsed.Unit) && *q > 0 {
		amount = amountOf(*q)
	}
	return []Extra{{Name: "Protein Snack", Amount: amount, Unit: "portion"}}
}

// addOn 與料理同時出現時追加的食材
type addOn struct {
	Keywords []string
	Unless   []string
	Item     Extra
}

// compositeDish 組合料理：觸發詞、基本食材、追加食材
type compositeDish struct {
	Name     string
	Triggers []string
	Base     []Extra
	AddOns   []addOn
}

func item(name string, amount float64, unit string) Extra {
	return Extra{Name: name, Amount: amountOf(amount), Unit: unit}
}

var compositeDishes = []compositeDish{
	{
		Name:     "toast",
		Triggers: []string{"toast"},
		Base:     []Extra{item("Bread", 2, "slice")},
		AddOns: []addOn{
			{Keywords: []string{"egg"}, Item: item("Eggs", 2, "pcs")},
			{Keywords: []string{"avocado"}, Item: item("Avocado", 1, "pcs")},
			{Keywords: []string{"peanut butter"}, Item: Extra{Name: "Peanut Butter"}},
			{Keywords: []string{"butter"}, Unless: []string{"peanut butter"}, Item: Extra{Name: "Butter"}},
			{Keywords: []string{"bean"}, Item: item("Baked Beans", 1, "tin")},
			{Keywords: []string{"mushroom"}, Item: item("Mushrooms", 100, "g")},
		},
	},
	{
		Name:     "omelette",
		Triggers: []string{"omelette", "omelet"},
		Base:     []Extra{item("Eggs", 3, "pcs")},
		AddOns: []addOn{
			{Keywords: []string{"cheese", "cheddar"}, Item: item("Cheese", 30, "g")},
			{Keywords: []string{"ham"}, Item: item("Ham", 2, "slice")},
			{Keywords: []string{"mushroom"}, Item: item("Mushrooms", 80, "g")},
			{Keywords: []string{"spinach"}, Item: item("Spinach", 30, "g")},
			{Keywords: []string{"pepper"}, Item: item("Pepper", 1, "pcs")},
			{Keywords: []string{"onion"}, Item: item("Onion", 1, "pcs")},
			{Keywords: []string{"tomato"}, Item: item("Tomato", 1, "pcs")},
		},
	},
	{
		Name:     "salad",
		Triggers: []string{"salad"},
		Base: []Extra{
			item("Mixed Salad Leaves", 1, "bag"),
			item("Cucumber", 0.5, "pcs"),
			item("Tomato", 2, "pcs"),
		},
		AddOns: []addOn{
			{Keywords: []string{"chicken"}, Item: item("Chicken Breast", 1, "pcs")},
			{Keywords: []string{"tuna"}, Item: item("Tuna", 1, "tin")},
			{Keywords: []string{"halloumi"}, Item: item("Halloumi", 100, "g")},
			{Keywords: []string{"feta"}, Item: item("Feta", 50, "g")},
			{Keywords: []string{"egg"}, Item: item("Eggs", 2, "pcs")},
			{Keywords: []string{"avocado"}, Item: item("Avocado", 1, "pcs")},
		},
	},
	{
		Name:     "wrap",
		Triggers: []string{"wrap"},
		Base:     []Extra{item("Tortilla Wraps", 1, "pcs")},
		AddOns: []addOn{
			{Keywords: []string{"chicken"}, Item: item("Chicken Breast", 1, "pcs")},
			{Keywords: []string{"tuna"}, Item: item("Tuna", 1, "tin")},
			{Keywords: []string{"halloumi"}, Item: item("Halloumi", 100, "g")},
			{Keywords: []string{"falafel"}, Item: item("Falafel", 4, "pcs")},
			{Keywords: []string{"hummus"}, Item: item("Hummus", 1, "tub")},
			{Keywords: []string{"salad", "lettuce"}, Item: item("Mixed Salad Leaves", 1, "bag")},
			{Keywords: []string{"cheese"}, Item: item("Cheese", 30, "g")},
		},
	},
	{
		Name:     "pasta",
		Triggers: []string{"pasta", "spaghetti", "penne"},
		Base:     []Extra{item("Pasta", 100, "g")},
		AddOns: []addOn{
			{Keywords: []string{"pesto"}, Item: item("Pesto", 1, "jar")},
			{Keywords: []string{"tomato", "marinara"}, Item: item("Passata", 1, "jar")},
			{Keywords: []string{"bolognese", "mince"}, Item: item("Beef Mince", 250, "g")},
			{Keywords: []string{"chicken"}, Item: item("Chicken Breast", 1, "pcs")},
			{Keywords: []string{"cheese", "parmesan"}, Item: item("Parmesan", 30, "g")},
		},
	},
	{
		Name:     "quinoa bowl",
		Triggers: []string{"quinoa bowl", "quinoa"},
		Base: []Extra{
			item("Quinoa", 75, "g"),
			item("Mixed Vegetables", 1, "bag"),
		},
		AddOns: []addOn{
			{Keywords: []string{"chicken"}, Item: item("Chicken Breast", 1, "pcs")},
			{Keywords: []string{"halloumi"}, Item: item("Halloumi", 100, "g")},
			{Keywords: []string{"chickpea"}, Item: item("Chickpeas", 1, "tin")},
			{Keywords: []string{"avocado"}, Item: item("Avocado", 1, "pcs")},
			{Keywords: []string{"feta"}, Item: item("Feta", 50, "g")},
		},
	},
	{
		Name:     "stew",
		Triggers: []string{"stew", "casserole"},
		Base: []Extra{
			item("Stewing Steak", 500, "g"),
			item("Mixed Vegetables", 1, "bag"),
			item("Beans", 1, "tin"),
		},
		AddOns: []addOn{
			{Keywords: []string{"dumpling"}, Item: item("Dumplings", 1, "pack")},
			{Keywords: []string{"potato"}, Item: item("Potatoes", 500, "g")},
		},
	},
}

func dishTriggers() []string {
	var out []string
	for _, d := range compositeDishes {
		out = append(out, d.Triggers...)
	}
	return out
}

func (d compositeDish) rule() ExpansionRule {
	return ExpansionRule{
		Name:   d.Name,
		Match:  func(p Phrase) bool { return p.HasAny(d.Triggers...) },
		Expand: d.expand,
	}
}

// expand 數量無單位時（"2 omelettes"）按倍數放大
func (d compositeDish) expand(p Phrase) []Extra {
	factor := 1.0
	if q := p.Parsed.Quantity; q != nil && *q > 0 && isCountUnit(p.Parsed.Unit) {
		factor = *q
	}

	out := make([]Extra, 0, len(d.Base)+len(d.AddOns))
	for _, base := range d.Base {
		out = append(out, base.scaled(factor))
	}
	for _, a := range d.AddOns {
		if p.HasAny(a.Keywords...) && !p.HasAny(a.Unless...) {
			out = append(out, a.Item.scaled(factor))
		}
	}
	return out
}

func (e Extra) scaled(factor float64) Extra {
	if e.Amount == nil || factor == 1 {
		return e
	}
	return Extra{Name: e.Name, Amount: amountOf(*e.Amount * factor), Unit: e.Unit}
}
