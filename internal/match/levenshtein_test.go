package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"cliente", "cliente", 0},
		{"nome", "name", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b), "Levenshtein(%q, %q)", tt.a, tt.b)
	}
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 1.0, LevenshteinRatio("", ""))
	assert.Equal(t, 1.0, LevenshteinRatio("pedido", "pedido"))
	assert.InDelta(t, 0.5, LevenshteinRatio("nome", "name"), 0.001)
	assert.Equal(t, 0.0, LevenshteinRatio("abc", "xyz"))
}
