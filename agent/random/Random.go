// Package random implements a uniform-random agent. It learns nothing
// and serves as the lower-bound baseline: a correctly functioning
// learning agent must statistically outperform it on a fixed task.
package random

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/deepsaia/tinydsl/agent"
	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/timestep"
)

// Random selects actions uniformly at random over the action space
type Random struct {
	numActions int
	rng        *rand.Rand
	eval       bool
}

// New creates a new Random agent for the argument environment
func New(env environment.Environment, seed uint64) (*Random, error) {
	if env.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("random: can only be used with discrete " +
			"actions")
	}

	numActions := agent.NumActions(env)
	if numActions <= 0 {
		return nil, fmt.Errorf("random: action space cannot be empty")
	}

	return &Random{
		numActions: numActions,
		rng:        rand.New(rand.NewSource(seed)),
	}, nil
}

// SelectAction draws uniformly over the action space. The draw is
// uniform in both training and evaluation mode: a random policy has no
// exploration to disable.
func (r *Random) SelectAction(t timestep.TimeStep) int {
	return r.rng.Intn(r.numActions)
}

// Learn is a no-op
func (r *Random) Learn(t timestep.Transition) error { return nil }

// EndEpisode is a no-op
func (r *Random) EndEpisode() {}

// Eval sets the policy to evaluation mode
func (r *Random) Eval() { r.eval = true }

// Train sets the policy to training mode
func (r *Random) Train() { r.eval = false }

// IsEval indicates if the policy is in evaluation mode
func (r *Random) IsEval() bool { return r.eval }
