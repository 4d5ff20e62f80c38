// Package literal implements a minimal reference executor whose
// programs are sequences of whitespace-separated tokens that are
// emitted verbatim. An end marker token stops emission. The package
// exists so that environments, trainers and tests can run without an
// external DSL interpreter; it is not itself a DSL.
package literal

import (
	"strings"

	"github.com/deepsaia/tinydsl/executor"
)

// EndToken is the token that marks the end of a literal program
const EndToken = "END"

// Literal executes programs by concatenating their tokens. Tokens
// after the end marker are a semantic error.
type Literal struct{}

// New returns a new Literal executor
func New() *Literal {
	return &Literal{}
}

// Execute emits the program's tokens verbatim, stopping at the end
// marker. A partial program with no end marker still executes; its
// output is whatever has been emitted so far.
func (l *Literal) Execute(program string) executor.Result {
	var out strings.Builder

	ended := false
	for _, token := range strings.Fields(program) {
		if ended {
			return executor.Result{
				Error: "token after end marker: " + token,
			}
		}
		if token == EndToken {
			ended = true
			continue
		}
		out.WriteString(token)
	}

	return executor.Result{Success: true, Output: out.String()}
}

// Similarity scores outputs by character overlap
func (l *Literal) Similarity(a, b string) float64 {
	return executor.CharSimilarity(a, b)
}
