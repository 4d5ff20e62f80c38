package reward

// Default correctness-shaped reward terms
const (
	DefaultStepPenalty      = -0.1
	DefaultErrorPenalty     = -1.0
	DefaultSuccessBonus     = 10.0
	DefaultSimilarityWeight = 2.0
)

// Correctness rewards exact output matches, charges a small penalty
// per step to create time pressure, penalizes syntax-error events, and
// grants partial credit proportional to output similarity when the
// program ran but produced the wrong output.
type Correctness struct {
	stepPenalty      float64
	errorPenalty     float64
	successBonus     float64
	similarityWeight float64
}

// NewCorrectness returns a Correctness reward with the default terms
func NewCorrectness() *Correctness {
	return &Correctness{
		stepPenalty:      DefaultStepPenalty,
		errorPenalty:     DefaultErrorPenalty,
		successBonus:     DefaultSuccessBonus,
		similarityWeight: DefaultSimilarityWeight,
	}
}

// Reward computes the correctness-shaped reward for one step. An exact
// match yields the success bonus outright; every other step pays the
// step penalty plus either the error penalty or similarity-scaled
// partial credit.
func (c *Correctness) Reward(program []string, action string, out Outcome,
	expected string) float64 {

	if out.Success {
		return c.successBonus
	}

	r := c.stepPenalty
	switch {
	case out.Errored():
		r += c.errorPenalty
	case out.Attempted && out.Output != "":
		r += out.Similarity * c.similarityWeight
	}
	return r
}
