// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// StepType denotes the type of step that a TimeStep can be, either a first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// TerminationReason records why an episode ended. Exactly one reason
// holds for a Last timestep; None holds for all other timesteps.
type TerminationReason int

const (
	None TerminationReason = iota

	// Success indicates the emitted program executed and its output
	// matched the task's expected output exactly
	Success

	// NaturalStop indicates the designated end-of-program token was
	// emitted before the program matched the expected output
	NaturalStop

	// MaxSteps indicates the episode step ceiling was reached
	MaxSteps
)

func (r TerminationReason) String() string {
	switch r {
	case Success:
		return "Success"
	case NaturalStop:
		return "NaturalStop"
	case MaxSteps:
		return "MaxSteps"
	default:
		return "None"
	}
}

// Info holds per-step diagnostics produced by an environment. It is
// informational only; agents learn from observations and rewards, not
// from Info.
type Info struct {
	// ExecutionAttempted indicates whether the emitted program was
	// handed to the executor on this step
	ExecutionAttempted bool

	// ExecutionSucceeded indicates whether the executor ran the
	// program without error
	ExecutionSucceeded bool

	// Similarity is the executor's similarity score between the
	// produced output and the expected output, in [0, 1]. Only
	// meaningful when ExecutionSucceeded is true.
	Similarity float64

	// Program is the program text emitted so far
	Program string

	// InvalidAction indicates the chosen action was outside the
	// vocabulary bounds
	InvalidAction bool
}

// TimeStep packages together a single timestep in an environment
type TimeStep struct {
	stepType    StepType
	Reward      float64
	Discount    float64
	Observation mat.Vector
	Number      int
	Termination TerminationReason
	Info        Info
}

func New(t StepType, r, d float64, o mat.Vector, n int) TimeStep {
	return TimeStep{stepType: t, Reward: r, Discount: d, Observation: o,
		Number: n}
}

// First returns whether a TimeStep is the first in an environment
func (t *TimeStep) First() bool {
	return t.stepType == First
}

// Mid returns whether a TimeStep is a middle step in an environment
func (t *TimeStep) Mid() bool {
	return t.stepType == Mid
}

// Last returns whether a TimeStep is the last step in an environment
func (t *TimeStep) Last() bool {
	return t.stepType == Last
}

func (t TimeStep) String() string {
	str := "TimeStep | Type: %v  |  Reward:  %.2f  |  Discount: %.2f  |  " +
		"Step Number:  %v  |  Termination: %v"

	return fmt.Sprintf(str, t.stepType, t.Reward, t.Discount, t.Number,
		t.Termination)
}

// Transition packages together a single transition of the
// agent-environment interaction: the observation the agent acted in,
// the action it chose, the reward it received, and the observation it
// arrived in. Transitions are produced once per step and consumed by
// learning updates.
type Transition struct {
	State     mat.Vector
	Action    int
	Reward    float64
	NextState mat.Vector
	Terminal  bool
}

// FromSteps constructs the Transition between two consecutive timesteps
func FromSteps(step TimeStep, action int, nextStep TimeStep) Transition {
	return Transition{
		State:     step.Observation,
		Action:    action,
		Reward:    nextStep.Reward,
		NextState: nextStep.Observation,
		Terminal:  nextStep.Last(),
	}
}
