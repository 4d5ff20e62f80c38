// Package executor defines the interface through which candidate
// programs are executed and their outputs compared. Concrete DSL
// interpreters live outside this module and are consumed only through
// this interface.
package executor

import "strings"

// Result holds the outcome of executing a candidate program
type Result struct {
	// Success indicates the program executed without error
	Success bool

	// Output is the output produced by the program. Only meaningful
	// when Success is true.
	Output string

	// Error describes the syntax or semantic error reported by the
	// interpreter. Empty when Success is true.
	Error string
}

// Executor executes candidate programs and scores output similarity
type Executor interface {
	// Execute runs the argument program. Interpreter-level failures
	// (syntax errors, semantic errors) are reported through the
	// Result, not as Go errors: a program that fails to run is
	// expected, learnable behaviour, not a fault.
	Execute(program string) Result

	// Similarity returns a score in [0, 1] measuring how close output
	// a is to output b, with 1 meaning identical
	Similarity(a, b string) float64
}

// CharSimilarity returns the fraction of positions at which the two
// strings hold the same character, relative to the longer string.
// Leading and trailing whitespace is ignored. It is the default
// similarity measure for executors that do not define their own.
func CharSimilarity(a, b string) float64 {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)

	if a == b {
		if len(a) == 0 {
			return 0.0
		}
		return 1.0
	}

	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0.0
	}
	return float64(matches) / float64(maxLen)
}
