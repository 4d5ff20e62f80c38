package executor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepsaia/tinydsl/executor"
)

func TestCharSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"identical", "hello", "hello", 1.0},
		{"identical after trim", "  42\n", "42", 1.0},
		{"both empty", "", "", 0.0},
		{"one empty", "", "42", 0.0},
		{"no overlap", "ab", "cd", 0.0},
		{"half overlap", "4", "42", 0.5},
		{"partial prefix", "424", "42", 2.0 / 3.0},
		{"longer string dominates", "42", "4200", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, executor.CharSimilarity(tt.a, tt.b),
				1e-12)
		})
	}
}

func TestCharSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"4", "42"},
		{"hello", "help"},
		{"", "x"},
	}

	for _, p := range pairs {
		assert.Equal(t, executor.CharSimilarity(p[0], p[1]),
			executor.CharSimilarity(p[1], p[0]))
	}
}
