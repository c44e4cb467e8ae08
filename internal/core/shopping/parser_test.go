package shopping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIngredientText(t *testing.T) {
	tests := []struct {
		raw      string
		name     string
		quantity *float64
		unit     string
	}{
		{"120g chicken breast", "chicken breast", amountOf(120), "g"},
		{"1/2 banana", "banana", amountOf(0.5), ""},
		{"protein bar", "protein bar", nil, ""},
		{"1 1/2 cups flour", "flour", amountOf(1.5), "cup"},
		{"2 x eggs", "eggs", amountOf(2), ""},
		{"2x eggs", "eggs", amountOf(2), ""},
		{"1,5 kg potatoes", "potatoes", amountOf(1.5), "kg"},
		{"200 grams rice", "rice", amountOf(200), "g"},
		{"2 tbsp. olive oil", "olive oil", amountOf(2), "tbsp"},
		{"2 garlic cloves", "garlic cloves", amountOf(2), ""},
		{"1 large egg", "large egg", amountOf(1), ""},
		{"3 slices bread", "bread", amountOf(3), "slice"},
		{"500 ml milk", "milk", amountOf(500), "ml"},
		{"3/0 apples", "apples", nil, ""},
		{"  Aunt Carol's Stew  ", "Aunt Carol's Stew", nil, ""},
		{"200g", "200g", nil, ""},
		{"1 tin beans", "beans", amountOf(1), "tin"},
		{"2 cans chickpeas", "chickpeas", amountOf(2), "tin"},
		{"1 jar pesto", "pesto", amountOf(1), "jar"},
		{"1 bag salad leaves", "salad leaves", amountOf(1), "bag"},
		{"2 packets dumplings", "dumplings", amountOf(2), "pack"},
		{"1 tub hummus", "hummus", amountOf(1), "tub"},
		{"2 portions fruit", "fruit", amountOf(2), "portion"},
		{"portion of fruit", "portion of fruit", nil, ""},
		{"½ banana", "banana", amountOf(0.5), ""},
		{"1½ cups flour", "flour", amountOf(1.5), "cup"},
		{"¾ cup milk", "milk", amountOf(0.75), "cup"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseIngredientText(tt.raw)
			assert.Equal(t, tt.name, got.Name)
			assert.Equal(t, tt.unit, got.Unit)
			if tt.quantity == nil {
				assert.Nil(t, got.Quantity)
				return
			}
			require.NotNil(t, got.Quantity)
			assert.InDelta(t, *tt.quantity, *got.Quantity, 1e-9)
		})
	}
}

func TestParseIngredientTextEmpty(t *testing.T) {
	assert.Equal(t, Parsed{}, ParseIngredientText("   "))
}

func TestNormalizeUnit(t *testing.T) {
	cases := map[string]string{
		"Grams":  "g",
		"CUPS":   "cup",
		"items":  "item",
		"tbsp.":  "tbsp",
		"Litres": "l",
		"cans":   "tin",
		"Packet": "pack",
		"piece":  "pcs",
		"tin":    "tin",
		"":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeUnit(in), in)
	}
}

func TestSplitFreeText(t *testing.T) {
	assert.Equal(t,
		[]string{"toast", "eggs", "banana", "protein shake", "apple"},
		SplitFreeText("toast, eggs; banana\nprotein shake + apple"))

	assert.Equal(t,
		[]string{"1,5 kg potatoes", "carrots"},
		SplitFreeText("1,5 kg potatoes, carrots"))

	assert.Equal(t, []string{"bullet item", "salt"}, SplitFreeText("- bullet item\n\n* salt"))
	assert.Equal(t, []string{"salt+pepper"}, SplitFreeText("salt+pepper"))
	assert.Empty(t, SplitFreeText("  ,; \n"))
}
