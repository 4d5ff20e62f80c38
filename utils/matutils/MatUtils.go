// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxVec finds and returns the index of the maximum value in a vector.
// If multiple equal max values exist, only the first one is returned.
func MaxVec(values mat.Vector) int {
	max, idx := values.AtVec(0), 0
	numActions, _ := values.Dims()

	for i := 0; i < numActions; i++ {
		if values.AtVec(i) > max {
			max = values.AtVec(i)
			idx = i
		}
	}
	return idx
}

// Softmax computes the softmax of a vector of logits, subtracting the
// maximum logit before exponentiating for numerical stability. The
// returned slice sums to 1.
func Softmax(logits mat.Vector) []float64 {
	n := logits.Len()
	probs := make([]float64, n)

	maxLogit := math.Inf(-1)
	for i := 0; i < n; i++ {
		if logits.AtVec(i) > maxLogit {
			maxLogit = logits.AtVec(i)
		}
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		probs[i] = math.Exp(logits.AtVec(i) - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
