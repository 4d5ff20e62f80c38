package matutils_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/utils/matutils"
)

func TestMaxVec(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{"single element", []float64{1}, 0},
		{"max at start", []float64{3, 1, 2}, 0},
		{"max at end", []float64{1, 2, 3}, 2},
		{"ties break to first", []float64{2, 2, 2}, 0},
		{"negative values", []float64{-3, -1, -2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mat.NewVecDense(len(tt.values), tt.values)
			assert.Equal(t, tt.want, matutils.MaxVec(v))
		})
	}
}

func TestSoftmax(t *testing.T) {
	probs := matutils.Softmax(mat.NewVecDense(3, []float64{1, 2, 3}))

	sum := 0.0
	for _, p := range probs {
		assert.Greater(t, p, 0.0)
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, probs[2], probs[1])
	assert.Greater(t, probs[1], probs[0])
}

func TestSoftmaxUniformForEqualLogits(t *testing.T) {
	probs := matutils.Softmax(mat.NewVecDense(4, []float64{5, 5, 5, 5}))
	for _, p := range probs {
		assert.InDelta(t, 0.25, p, 1e-12)
	}
}

// Large logits must not overflow to NaN or Inf
func TestSoftmaxNumericalStability(t *testing.T) {
	probs := matutils.Softmax(mat.NewVecDense(3,
		[]float64{1000, 1001, 1002}))

	sum := 0.0
	for _, p := range probs {
		assert.False(t, math.IsNaN(p))
		assert.False(t, math.IsInf(p, 0))
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}
