// Package policy implements policies using linear function
// approximation
package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/deepsaia/tinydsl/environment"
	"github.com/deepsaia/tinydsl/timestep"
	"github.com/deepsaia/tinydsl/utils/matutils"
)

const (
	// Keys for weights map: map[string]*mat.Dense
	WeightsKey string = "weights"
)

// EGreedy implements an ε-greedy policy using linear function
// approximation
type EGreedy struct {
	weights *mat.Dense
	epsilon float64
	eval    bool
	seed    rand.Source // Seed for random number generation
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random action is selected. The weight
// matrix has one row per action and one column per observation
// feature.
func NewEGreedy(e float64, seed uint64,
	env environment.Environment) (*EGreedy, error) {

	source := rand.NewSource(seed)

	// Ensure actions are 1-dimensional
	if env.ActionSpec().Shape.Len() != 1 {
		return nil, fmt.Errorf("egreedy: can only be used with " +
			"1-dimensional actions")
	}

	// Ensure actions are discrete
	if env.ActionSpec().Cardinality != environment.Discrete {
		return nil, fmt.Errorf("egreedy: can only be used with discrete " +
			"actions")
	}

	// Calculate the number of actions
	actions := int(env.ActionSpec().UpperBound.AtVec(0)) + 1

	// Calculate the number of features
	features := env.ObservationSpec().Shape.Len()

	// Create the weight matrix: rows = actions, cols = features
	weights := mat.NewDense(actions, features, nil)

	return &EGreedy{weights: weights, epsilon: e, seed: source}, nil
}

// Weights gets and returns the weights of the EGreedy policy as a
// string description -> weights
func (p *EGreedy) Weights() map[string]*mat.Dense {
	weights := make(map[string]*mat.Dense)
	weights[WeightsKey] = p.weights

	return weights
}

// ActionValues returns the action values in the argument observation
func (p *EGreedy) ActionValues(obs mat.Vector) *mat.VecDense {
	numActions, _ := p.weights.Dims()
	actionValues := mat.NewVecDense(numActions, nil)
	actionValues.MulVec(p.weights, obs)
	return actionValues
}

// SelectAction selects an action from an ε-greedy policy. In
// evaluation mode the greedy action is always chosen, with ties broken
// by the lowest action index.
func (p *EGreedy) SelectAction(t timestep.TimeStep) int {
	actionValues := p.ActionValues(t.Observation)

	// Find the greedy action
	greedyAction := matutils.MaxVec(actionValues)

	if p.eval || p.epsilon == 0 {
		return greedyAction
	}

	// Calculate the ε probability of choosing any action at random
	numActions := actionValues.Len()
	prob := p.epsilon / float64(numActions)
	actionProbabilities := make([]float64, numActions)
	for i := 0; i < numActions; i++ {
		actionProbabilities[i] = prob
	}

	// Adjust the probability of choosing the greedy action
	actionProbabilities[greedyAction] += (1.0 - p.epsilon)

	// Construct a categorical distribution over actions using action
	// probabilities
	dist := distuv.NewCategorical(actionProbabilities, p.seed)

	return int(dist.Rand())
}

// Epsilon returns the policy's current exploration rate
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the policy's exploration rate
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// Eval sets the policy to evaluation mode
func (p *EGreedy) Eval() { p.eval = true }

// Train sets the policy to training mode
func (p *EGreedy) Train() { p.eval = false }

// IsEval indicates if the policy is in evaluation mode
func (p *EGreedy) IsEval() bool { return p.eval }
