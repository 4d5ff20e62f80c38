// Package agent defines an agent interface
package agent

import (
	"github.com/deepsaia/tinydsl/timestep"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent is composed of a Learner, which learns weights, and a Policy
// which chooses actions in each state. The Policy chooses which actions
// are taken, and the Learner uses these actions to update the Policy.
type Agent interface {
	Learner
	Policy
}

// Learner implements a learning algorithm that defines how weights are
// updated.
type Learner interface {
	// Learn performs a learning update from a single transition.
	// Temporal-difference learners consume the transition immediately;
	// Monte-Carlo learners buffer transitions until the episode's
	// terminal transition arrives. A transition whose observation
	// dimensionality does not match the agent's feature length is a
	// configuration fault and returns an error.
	Learn(t timestep.Transition) error

	// EndEpisode performs per-episode bookkeeping (exploration decay,
	// baseline updates) after an episode finishes
	EndEpisode()
}

// Policy represents a policy that an agent can have.
//
// Policies determine how agents select actions. A policy in training
// mode may explore; in evaluation mode action selection is frozen to
// the policy's greedy or modal choice so that evaluation never mixes
// with exploration.
type Policy interface {
	// SelectAction chooses the action to take given the timestep's
	// observation. The returned value is an index into the
	// environment's discrete action space.
	SelectAction(t timestep.TimeStep) int

	Eval()        // Set policy to evaluation mode
	Train()       // Set policy to training mode
	IsEval() bool // Indicates if in evaluation mode
}
