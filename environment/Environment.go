// Package environment outlines the interfaces and structs needed to
// implement concrete environments
package environment

import (
	"gonum.org/v1/gonum/mat"

	"github.com/deepsaia/tinydsl/timestep"
)

// Cardinality indicates whether the associated type is continuous or discrete
type Cardinality int

const (
	Discrete Cardinality = iota
	Continuous
)

// SpecType determines what kind of specification a Spec is. A Spec can
// specify the layout of an action, an observation, or a reward
type SpecType int

const (
	Action SpecType = iota
	Observation
	Reward
)

// Spec implements a specification, which tells the type, shape, and bounds of
// an action, observation, or reward
type Spec struct {
	Shape      mat.Vector
	Type       SpecType
	LowerBound mat.Vector
	UpperBound mat.Vector
	Cardinality
}

// Environment implements one episode's worth of agent-environment
// interaction for a sequential decision problem with a discrete action
// space. An Environment owns its episode state exclusively: it must be
// driven by a single goroutine, and Reset discards the previous
// episode's state entirely.
type Environment interface {
	// Reset begins a new episode and returns its first timestep
	Reset() timestep.TimeStep

	// Step advances the episode by one action. The action is an index
	// into the environment's discrete action space. The returned bool
	// indicates whether the returned timestep is the episode's last.
	Step(action int) (timestep.TimeStep, bool)

	ObservationSpec() Spec
	ActionSpec() Spec
}

// Renderer is an Environment that can render its current state as a
// human-readable string
type Renderer interface {
	Environment
	Render() string
}
