// Package reward implements reward functions for token-emission
// environments. Reward functions are pure: two calls with identical
// arguments return identical values, which keeps training reproducible
// and lets the functions be unit tested in isolation from any
// environment.
package reward

// Outcome describes what happened when the environment attempted to
// execute the partial program after the latest token was emitted. It
// is assembled by the environment and handed to the reward function.
type Outcome struct {
	// Attempted indicates whether execution was attempted at all.
	// Execution is skipped for out-of-range actions.
	Attempted bool

	// Success indicates the program executed without error and its
	// output matched the expected output exactly
	Success bool

	// Output is the output the program produced, when it executed
	// without error
	Output string

	// Error is the interpreter's error message, empty if execution
	// succeeded or was not attempted
	Error string

	// Similarity is the executor's similarity score between the
	// produced output and the expected output, in [0, 1]
	Similarity float64

	// InvalidAction indicates the chosen action index was outside the
	// vocabulary bounds
	InvalidAction bool
}

// Errored returns whether the step ended in a syntax-error event,
// either an interpreter error or an out-of-range action
func (o Outcome) Errored() bool {
	return o.InvalidAction || (o.Attempted && o.Error != "")
}

// Reward computes the scalar reward for one environment step. The
// program argument is the token sequence emitted so far including the
// latest action's token; action is the token just emitted.
type Reward interface {
	Reward(program []string, action string, out Outcome, expected string) float64
}
