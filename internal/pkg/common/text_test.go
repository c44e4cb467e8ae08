package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldAccents(t *testing.T) {
	tests := map[string]string{
		"crème fraîche": "creme fraiche",
		"Jalapeño":      "Jalapeno",
		"purée":         "puree",
		"plain":         "plain",
		"":              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, FoldAccents(in), in)
	}
}

func TestFoldLower(t *testing.T) {
	assert.Equal(t, "creme fraiche", FoldLower("Crème Fraîche"))
	assert.Equal(t, FoldLower("CRÈME"), FoldLower("creme"))
}
