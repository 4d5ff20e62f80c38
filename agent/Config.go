package agent

import (
	"github.com/deepsaia/tinydsl/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error
}

// NumActions returns the size of an environment's discrete action
// space, following the convention that the action spec's upper bound
// holds the largest valid action index.
func NumActions(env environment.Environment) int {
	return int(env.ActionSpec().UpperBound.AtVec(0)) + 1
}

// NumFeatures returns the length of an environment's observation
// vectors
func NumFeatures(env environment.Environment) int {
	return env.ObservationSpec().Shape.Len()
}
